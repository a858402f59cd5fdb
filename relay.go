package delta

import (
	"fmt"

	"github.com/zoobzio/clockz"
)

// DefaultMaxDepth is the default limit on nested sends through one relay.
const DefaultMaxDepth = 64

// Relay holds a current value and fans every sent value out to its
// subscribers. A new subscriber receives the current value first, then every
// later value, as its demand allows.
//
// Send runs every subscriber inline on the calling goroutine before it
// returns. All state is guarded by one re-entrant lock per relay, so sinks may
// cancel, request or send from inside their callbacks.
type Relay[V any] struct {
	hub fanout[V]

	current  V
	seq      uint64
	depth    int
	maxDepth int
	clock    clockz.Clock
}

// NewRelay creates a relay holding initial.
func NewRelay[V any](initial V) *Relay[V] {
	r := &Relay[V]{
		current:  initial,
		maxDepth: DefaultMaxDepth,
		clock:    clockz.RealClock,
	}
	r.hub.mu = &reentrantMutex{}
	r.hub.metrics = NoOpMetricsProvider{}
	return r
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Name sets the name attached to signals emitted by this relay.
func (r *Relay[V]) Name(name string) *Relay[V] {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	r.hub.name = name
	return r
}

// Clock sets the clock used to time fan-out for metrics.
// Use this with clockz.FakeClock for deterministic tests.
func (r *Relay[V]) Clock(clock clockz.Clock) *Relay[V] {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	r.clock = clock
	return r
}

// Metrics sets a metrics provider for observability integration.
func (r *Relay[V]) Metrics(provider MetricsProvider) *Relay[V] {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	r.hub.metrics = provider
	return r
}

// MaxDepth sets how deeply sends may nest before the relay panics with
// ErrReentrantOverflow. Default: DefaultMaxDepth.
func (r *Relay[V]) MaxDepth(n int) *Relay[V] {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	if n < 1 {
		n = 1
	}
	r.maxDepth = n
	return r
}

// Current returns the most recently sent value.
func (r *Relay[V]) Current() V {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	return r.current
}

// Subscribers returns the number of active subscriptions.
func (r *Relay[V]) Subscribers() int {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	return len(r.hub.subs)
}

// Completed reports whether the relay has delivered its terminal signal.
func (r *Relay[V]) Completed() bool {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	return r.hub.completion != nil
}

// Subscribe attaches sink. The current value is buffered into the new
// subscription before the sink receives it, so the first value the sink can
// observe is the one current at attachment. A completed relay hands the
// sink its subscription and then the completion.
func (r *Relay[V]) Subscribe(sink Sink[V]) *Subscription[V] {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()

	s := newSubscription(&r.hub, sink, 1)
	if c := r.hub.completion; c != nil {
		s.start()
		s.complete(*c)
		return s
	}
	s.seed(r.current, r.seq)
	r.hub.attach(s)
	s.start()
	return s
}

// Send stores v and delivers it to every subscriber in subscription order.
// Sends after Complete are ignored.
//
// Send panics with an error wrapping ErrReentrantOverflow when sinks nest
// sends through this relay deeper than MaxDepth.
func (r *Relay[V]) Send(v V) {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()

	if r.hub.completion != nil {
		return
	}

	r.depth++
	defer func() { r.depth-- }()
	if r.depth > r.maxDepth {
		emit(RelayOverflow,
			KeyName.Field(r.hub.name),
			KeyDepth.Field(r.depth),
		)
		panic(fmt.Errorf("%w: relay %q nested %d sends", ErrReentrantOverflow, r.hub.name, r.depth))
	}

	r.seq++
	r.current = v

	start := r.clock.Now()
	n := r.hub.deliver(v, r.seq)
	r.hub.metrics.OnSend(n, r.clock.Since(start))
}

// Complete delivers c to every subscriber and ends the relay. Later calls
// are ignored.
func (r *Relay[V]) Complete(c Completion) {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()

	if r.hub.completion != nil {
		return
	}
	r.hub.finish(c, false)
}

func (r *Relay[V]) sharedLock() *reentrantMutex { return r.hub.mu }

var _ Publisher[int] = (*Relay[int])(nil)
