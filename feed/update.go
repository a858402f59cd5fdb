package feed

import (
	"strings"

	"github.com/zoobzio/delta"
)

// Update carries one decoded value through the processing pipeline.
type Update[V any] struct {
	// Previous is the target's current value when it exposes one, as
	// *delta.Container does. Otherwise it is the last value this feed
	// applied, or the zero value before the first.
	Previous V

	// Current is the decoded and validated value. Pipeline stages may
	// replace it; whatever it holds at the end is assigned to the target.
	Current V

	// Raw is the undecoded input.
	Raw []byte

	// Changes holds the watched fields that differ between Previous and
	// Current. It is empty when the target exposes no selectors.
	Changes delta.ChangeSet[V]
}

func joinKeys[V any](c delta.ChangeSet[V]) string {
	return strings.Join(c.Keys(), ",")
}
