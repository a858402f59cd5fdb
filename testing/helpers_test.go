package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/delta"
	"github.com/zoobzio/delta/feed"
)

func TestTestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  TestConfig
		wantErr bool
	}{
		{"valid config", TestConfig{Port: 8080, Host: "localhost", Timeout: 30}, false},
		{"port too low", TestConfig{Port: 0, Host: "localhost"}, true},
		{"port too high", TestConfig{Port: 70000, Host: "localhost"}, true},
		{"empty host", TestConfig{Port: 8080, Host: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWaitFor(t *testing.T) {
	start := time.Now()
	calls := 0
	ok := WaitFor(t, time.Second, func() bool {
		calls++
		return calls >= 3
	})
	if !ok {
		t.Error("expected condition to be met")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("WaitFor took too long")
	}
}

func TestWaitFor_Timeout(t *testing.T) {
	if WaitFor(t, 50*time.Millisecond, func() bool { return false }) {
		t.Error("expected timeout")
	}
}

func TestRecorder_Demand(t *testing.T) {
	relay := delta.NewRelay(0)
	rec := NewRecorder[int](delta.Max(1))
	relay.Subscribe(rec)

	relay.Send(1)
	relay.Send(2)

	// Initial replay of 0 consumed the only unit of demand.
	if got := rec.Values(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected [0], got %v", got)
	}

	rec.Request(delta.Max(1))
	if last, _ := rec.Last(); last != 2 {
		t.Errorf("expected latest value 2 after request, got %d", last)
	}
}

func TestRecorder_Completions(t *testing.T) {
	relay := delta.NewRelay("a")
	rec := NewRecorder[string](delta.Unlimited)
	relay.Subscribe(rec)

	relay.Complete(delta.Failure(errors.New("boom")))

	c := rec.Completions()
	if len(c) != 1 || c[0].IsFinished() {
		t.Errorf("expected one failure completion, got %v", c)
	}
}

func TestNewTestFeed(t *testing.T) {
	f, c, ch := NewTestFeed(t)
	rec := NewRecorder[TestConfig](delta.Unlimited)
	c.Subscribe(rec)

	ch <- []byte(`{"port": 8080, "host": "localhost"}`)
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	RequireState(t, f, feed.StateHealthy)
	RequireCurrent(t, c, func(cfg TestConfig) bool { return cfg.Port == 8080 })

	// Initial value plus the applied update.
	if rec.Len() != 2 {
		t.Errorf("expected 2 values, got %d", rec.Len())
	}
}
