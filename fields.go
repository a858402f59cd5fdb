package delta

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Field keys for delta events.
var (
	// KeyName is the configured name of the relay or container.
	KeyName = capitan.NewStringKey("name")

	// KeySubscribers is the number of active subscribers.
	KeySubscribers = capitan.NewIntKey("subscribers")

	// KeyDepth is the re-entrant send depth.
	KeyDepth = capitan.NewIntKey("depth")

	// KeyDemand is the requested demand as text.
	KeyDemand = capitan.NewStringKey("demand")

	// KeyChanged is the comma-separated list of changed selector keys.
	KeyChanged = capitan.NewStringKey("changed")

	// KeyProperty is the key of the property a hook binding projects.
	KeyProperty = capitan.NewStringKey("property")

	// KeyCompletion is the terminal signal as text.
	KeyCompletion = capitan.NewStringKey("completion")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")
)

func emit(signal capitan.Signal, fields ...capitan.Field) {
	capitan.Emit(context.Background(), signal, fields...)
}
