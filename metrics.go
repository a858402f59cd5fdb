package delta

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on relay and container events.
// Callbacks run inline on the sending goroutine while the relay lock is held.
type MetricsProvider interface {
	// OnSubscribe is called when a subscriber attaches.
	OnSubscribe()

	// OnCancel is called when a subscriber cancels.
	OnCancel()

	// OnSend is called after a value has been fanned out.
	// Subscribers is the number of subscriptions the value was offered to.
	OnSend(subscribers int, duration time.Duration)

	// OnChange is called when a container forwards an assignment.
	// Changed is the number of watched fields that differed, or zero for
	// whole-value comparison.
	OnChange(changed int)

	// OnSuppress is called when a container suppresses an assignment.
	OnSuppress()

	// OnDetach is called when a hook binding detaches because its target was collected.
	OnDetach()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnSubscribe()                  {}
func (NoOpMetricsProvider) OnCancel()                     {}
func (NoOpMetricsProvider) OnSend(_ int, _ time.Duration) {}
func (NoOpMetricsProvider) OnChange(_ int)                {}
func (NoOpMetricsProvider) OnSuppress()                   {}
func (NoOpMetricsProvider) OnDetach()                     {}

var _ MetricsProvider = NoOpMetricsProvider{}
