// Package testing provides test utilities and helpers for delta containers,
// relays and feeds.
package testing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/delta"
	"github.com/zoobzio/delta/feed"
)

// TestConfig is a standard configuration type for testing feeds and
// containers. It implements feed.Validator.
type TestConfig struct {
	Port    int    `yaml:"port" json:"port"`
	Host    string `yaml:"host" json:"host"`
	Timeout int    `yaml:"timeout" json:"timeout"`
}

// Validate implements feed.Validator.
func (c TestConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

// Selectors over TestConfig.
var (
	Port    = delta.Field("port", func(c TestConfig) int { return c.Port })
	Host    = delta.Field("host", func(c TestConfig) string { return c.Host })
	Timeout = delta.Field("timeout", func(c TestConfig) int { return c.Timeout })
)

// Recorder is a sink that records every value and completion it receives.
// It requests its initial demand on subscription and returns More from each
// Receive.
type Recorder[V any] struct {
	Initial delta.Demand
	More    delta.Demand

	mu          sync.Mutex
	sub         *delta.Subscription[V]
	values      []V
	completions []delta.Completion
}

// NewRecorder creates a recorder that requests initial on subscription and
// nothing more.
func NewRecorder[V any](initial delta.Demand) *Recorder[V] {
	return &Recorder[V]{Initial: initial}
}

// ReceiveSubscription implements delta.Sink.
func (r *Recorder[V]) ReceiveSubscription(sub *delta.Subscription[V]) {
	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
	sub.Request(r.Initial)
}

// Receive implements delta.Sink.
func (r *Recorder[V]) Receive(v V) delta.Demand {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	return r.More
}

// ReceiveCompletion implements delta.Sink.
func (r *Recorder[V]) ReceiveCompletion(c delta.Completion) {
	r.mu.Lock()
	r.completions = append(r.completions, c)
	r.mu.Unlock()
}

// Subscription returns the subscription handed to the recorder, or nil.
func (r *Recorder[V]) Subscription() *delta.Subscription[V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sub
}

// Request asks the recorder's publisher for d more values.
func (r *Recorder[V]) Request(d delta.Demand) {
	if sub := r.Subscription(); sub != nil {
		sub.Request(d)
	}
}

// Values returns a copy of the recorded values.
func (r *Recorder[V]) Values() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]V, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values.
func (r *Recorder[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recent value and true, or the zero value and false.
func (r *Recorder[V]) Last() (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		var zero V
		return zero, false
	}
	return r.values[len(r.values)-1], true
}

// Completions returns a copy of the recorded completions.
func (r *Recorder[V]) Completions() []delta.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]delta.Completion, len(r.completions))
	copy(out, r.completions)
	return out
}

var _ delta.Sink[int] = (*Recorder[int])(nil)

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForState waits until the feed reaches the expected state or timeout occurs.
func WaitForState[V any](t *testing.T, f *feed.Feed[V], expected feed.State, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return f.State() == expected
	})
}

// RequireState fails the test immediately if the feed is not in the expected state.
func RequireState[V any](t *testing.T, f *feed.Feed[V], expected feed.State) {
	t.Helper()
	if got := f.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// RequireCurrent fails the test if the container's value does not pass check.
func RequireCurrent[V any](t *testing.T, c *delta.Container[V], check func(V) bool) {
	t.Helper()
	if v := c.Current(); !check(v) {
		t.Fatalf("current value check failed: %+v", v)
	}
}

// NewTestFeed creates a sync-mode feed over a fresh container watching Port
// and Host. Returns the feed, the container and a channel for test data.
func NewTestFeed(t *testing.T, opts ...feed.Option[TestConfig]) (*feed.Feed[TestConfig], *delta.Container[TestConfig], chan<- []byte) {
	t.Helper()
	ch := make(chan []byte, 10)
	c := delta.New(TestConfig{}, Port, Host).Name(t.Name())
	t.Cleanup(c.Close)
	f := feed.New[TestConfig](feed.NewSyncChannelWatcher(ch), c, opts...).Name(t.Name()).SyncMode()
	return f, c, ch
}
