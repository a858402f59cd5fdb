package delta

import (
	"testing"
	"time"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	// These should not panic
	m.OnSubscribe()
	m.OnCancel()
	m.OnSend(3, 10*time.Millisecond)
	m.OnChange(2)
	m.OnSuppress()
	m.OnDetach()
}

func TestRelay_NilMetricsFallsBackToNoOp(t *testing.T) {
	r := NewRelay(0).Metrics(nil)

	if _, ok := r.hub.metrics.(NoOpMetricsProvider); !ok {
		t.Errorf("expected NoOpMetricsProvider, got %T", r.hub.metrics)
	}
	r.Send(1)
}
