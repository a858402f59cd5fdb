package delta

// Replay shares one upstream subscription among many subscribers and replays
// the latest upstream value to subscribers that attach later.
//
// The upstream is connected on the first Subscribe with unlimited demand and
// stays connected. When the upstream is a Relay, Container or Replay from
// this package, the replay shares its lock, so a subscriber may send back
// upstream from inside a callback while other goroutines send or request.
// Any other upstream must not be driven from a replay subscriber's callback. Once upstream completes, late subscribers receive the
// replayed value (as their demand allows) followed by the completion.
type Replay[V any] struct {
	hub fanout[V]

	upstream   Publisher[V]
	capacity   int
	value      V
	hasValue   bool
	seq        uint64
	connecting bool
	conn       *Subscription[V]
}

// NewReplay creates a replay over upstream. Capacity is clamped to 0 or 1:
// with 0 nothing is replayed and values are delivered only to subscribers
// that have outstanding demand at the moment they arrive.
func NewReplay[V any](upstream Publisher[V], capacity int) *Replay[V] {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > 1 {
		capacity = 1
	}
	r := &Replay[V]{upstream: upstream, capacity: capacity}
	r.hub.mu = &reentrantMutex{}
	if l, ok := upstream.(lockSharer); ok {
		r.hub.mu = l.sharedLock()
	}
	r.hub.metrics = NoOpMetricsProvider{}
	return r
}

// SingleReplay creates a replay that retains the latest upstream value.
func SingleReplay[V any](upstream Publisher[V]) *Replay[V] {
	return NewReplay(upstream, 1)
}

// Name sets the name attached to signals emitted by this replay.
func (r *Replay[V]) Name(name string) *Replay[V] {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	r.hub.name = name
	return r
}

// Metrics sets a metrics provider for observability integration.
func (r *Replay[V]) Metrics(provider MetricsProvider) *Replay[V] {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	r.hub.metrics = provider
	return r
}

// Subscribers returns the number of active subscriptions.
func (r *Replay[V]) Subscribers() int {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	return len(r.hub.subs)
}

// Subscribe attaches sink and connects upstream if this is the first
// subscriber.
func (r *Replay[V]) Subscribe(sink Sink[V]) *Subscription[V] {
	r.hub.mu.Lock()
	s := newSubscription(&r.hub, sink, r.capacity)
	if r.hasValue {
		s.seed(r.value, r.seq)
	} else {
		s.seen = r.seq
	}
	if c := r.hub.completion; c != nil {
		s.start()
		s.completeAfterDrain(*c)
		r.hub.mu.Unlock()
		return s
	}
	r.hub.attach(s)
	s.start()

	connect := r.conn == nil && !r.connecting
	if connect {
		r.connecting = true
	}
	r.hub.mu.Unlock()

	// Subscribing upstream runs outside the lock: an upstream that does not
	// share it calls back into relay while holding its own.
	if connect {
		conn := r.upstream.Subscribe(SinkFuncs[V]{
			OnNext: func(v V) Demand {
				r.relay(v)
				return None
			},
			OnComplete: r.complete,
		})
		r.hub.mu.Lock()
		r.conn = conn
		r.connecting = false
		r.hub.mu.Unlock()
	}
	return s
}

func (r *Replay[V]) relay(v V) {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()

	if r.hub.completion != nil {
		return
	}
	r.seq++
	if r.capacity > 0 {
		r.value = v
		r.hasValue = true
	}
	r.hub.deliver(v, r.seq)
}

func (r *Replay[V]) complete(c Completion) {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()

	if r.hub.completion != nil {
		return
	}
	r.hub.finish(c, true)
}

func (r *Replay[V]) sharedLock() *reentrantMutex { return r.hub.mu }

var _ Publisher[int] = (*Replay[int])(nil)
