package feed

// State reports whether a Feed's target holds a value the feed assigned and
// whether the most recent update reached it.
type State int32

const (
	// StateLoading is the state before Start has processed the first
	// update.
	StateLoading State = iota

	// StateHealthy means the latest update passed StageDecode,
	// StageValidate and StagePipeline and was assigned to the target.
	StateHealthy

	// StateDegraded means the latest update failed at some stage while the
	// target still holds an earlier update from this feed.
	StateDegraded

	// StateEmpty means no update has reached the target yet and the latest
	// one failed. The feed keeps watching for a valid one.
	StateEmpty
)

// Applied reports whether the target holds a value assigned by the feed.
func (s State) Applied() bool {
	return s == StateHealthy || s == StateDegraded
}

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
