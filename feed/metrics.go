package feed

import "time"

// MetricsProvider receives feed events. pkg/prom provides a Prometheus
// implementation that also serves delta.MetricsProvider.
type MetricsProvider interface {
	// OnChangeReceived is called for each raw payload delivered by the
	// watcher, before debouncing.
	OnChangeReceived()

	// OnProcessSuccess is called once an update has been assigned to the
	// target. The duration spans decoding to assignment.
	OnProcessSuccess(duration time.Duration)

	// OnProcessFailure is called with the stage that rejected an update:
	// StageDecode, StageValidate or StagePipeline.
	OnProcessFailure(stage string, duration time.Duration)

	// OnStateChange is called on every State transition.
	OnStateChange(from, to State)
}

// NoOpMetricsProvider discards every event. Embed it to implement a subset.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnChangeReceived()                          {}
func (NoOpMetricsProvider) OnProcessSuccess(_ time.Duration)           {}
func (NoOpMetricsProvider) OnProcessFailure(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnStateChange(_, _ State)                   {}

var _ MetricsProvider = NoOpMetricsProvider{}
