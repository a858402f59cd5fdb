package feed

import "errors"

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("feed: already started")

	// ErrWatcherClosed is returned when the watcher closes before emitting
	// an initial value.
	ErrWatcherClosed = errors.New("feed: watcher closed before emitting initial value")

	// ErrStartupTimeout is returned when no initial value arrives within the
	// configured startup timeout.
	ErrStartupTimeout = errors.New("feed: startup timeout")

	// ErrDecode wraps codec failures.
	ErrDecode = errors.New("feed: decode failed")

	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("feed: validation failed")
)
