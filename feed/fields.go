package feed

import "github.com/zoobzio/capitan"

// Field keys for Feed events. Name, error and changed-field keys are shared
// with package delta.
var (
	// KeyState is the current state of the Feed.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyCodec is the content type of the configured codec.
	KeyCodec = capitan.NewStringKey("codec")

	// KeyPath is the path of a watched file.
	KeyPath = capitan.NewStringKey("path")
)
