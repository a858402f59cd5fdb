package feed

import "github.com/zoobzio/capitan"

// Feed lifecycle signals.
var (
	// FeedStarted is emitted when a Feed begins watching.
	FeedStarted = capitan.NewSignal(
		"delta.feed.started",
		"Feed watching started",
	)

	// FeedStopped is emitted when a Feed stops watching.
	FeedStopped = capitan.NewSignal(
		"delta.feed.stopped",
		"Feed watching stopped",
	)

	// FeedStateChanged is emitted when a Feed transitions between states.
	FeedStateChanged = capitan.NewSignal(
		"delta.feed.state.changed",
		"Feed state transition",
	)
)

// Update processing signals.
var (
	// FeedChangeReceived is emitted when raw data arrives from the watcher.
	FeedChangeReceived = capitan.NewSignal(
		"delta.feed.change.received",
		"Raw change received from watcher",
	)

	// FeedDecodeFailed is emitted when the codec rejects raw data.
	FeedDecodeFailed = capitan.NewSignal(
		"delta.feed.decode.failed",
		"Decode failed",
	)

	// FeedValidationFailed is emitted when a decoded value fails validation.
	FeedValidationFailed = capitan.NewSignal(
		"delta.feed.validation.failed",
		"Validation failed",
	)

	// FeedApplyFailed is emitted when the processing pipeline fails.
	FeedApplyFailed = capitan.NewSignal(
		"delta.feed.apply.failed",
		"Pipeline failed",
	)

	// FeedApplySucceeded is emitted when an update reaches the target.
	FeedApplySucceeded = capitan.NewSignal(
		"delta.feed.apply.succeeded",
		"Update applied",
	)
)

// Watcher signals.
var (
	// FileWatchError is emitted when fsnotify reports an error. The watcher
	// keeps running.
	FileWatchError = capitan.NewSignal(
		"delta.feed.file.error",
		"File watcher error",
	)
)
