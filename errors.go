package delta

import "errors"

var (
	// ErrReentrantOverflow is the panic value (wrapped) raised when sends nest
	// deeper than a relay's MaxDepth. It indicates a feedback loop in sink code.
	ErrReentrantOverflow = errors.New("delta: re-entrant send overflow")

	// ErrTargetReleased is returned by a hook dispatch whose weak target has
	// been collected. Bindings treat it as cancellation, not failure.
	ErrTargetReleased = errors.New("delta: hook target released")
)
