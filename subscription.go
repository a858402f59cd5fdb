package delta

// fanout is the subscriber list and lock shared by Relay and Replay. Every
// field is guarded by mu, including the state of each attached Subscription.
type fanout[V any] struct {
	mu         *reentrantMutex
	name       string
	metrics    MetricsProvider
	subs       []*Subscription[V]
	completion *Completion
}

// attach appends s. The slice is replaced, never mutated in place, so a
// delivery loop iterating an older slice is unaffected.
func (f *fanout[V]) attach(s *Subscription[V]) {
	subs := make([]*Subscription[V], len(f.subs), len(f.subs)+1)
	copy(subs, f.subs)
	f.subs = append(subs, s)
	f.metrics.OnSubscribe()
	emit(RelaySubscribed,
		KeyName.Field(f.name),
		KeySubscribers.Field(len(f.subs)),
	)
}

func (f *fanout[V]) detach(s *Subscription[V]) {
	for i, sub := range f.subs {
		if sub != s {
			continue
		}
		subs := make([]*Subscription[V], 0, len(f.subs)-1)
		subs = append(subs, f.subs[:i]...)
		f.subs = append(subs, f.subs[i+1:]...)
		return
	}
}

// deliver offers v to every subscription in insertion order and returns how
// many subscriptions it was offered to.
func (f *fanout[V]) deliver(v V, seq uint64) int {
	subs := f.subs
	for _, s := range subs {
		s.receive(v, seq)
	}
	return len(subs)
}

// finish completes every subscription. When drain is set, a subscription
// holding an undelivered value completes once that value has been emitted.
func (f *fanout[V]) finish(c Completion, drain bool) {
	f.completion = &c
	subs := f.subs
	f.subs = nil
	for _, s := range subs {
		if drain {
			s.completeAfterDrain(c)
		} else {
			s.complete(c)
		}
	}
	emit(RelayCompleted,
		KeyName.Field(f.name),
		KeyCompletion.Field(c.String()),
	)
}

// Subscription is the per-subscriber demand state machine. It holds at most
// one undelivered value: a newer value overwrites an older one, so a slow
// subscriber sees the latest value, never a backlog.
type Subscription[V any] struct {
	hub      *fanout[V]
	sink     Sink[V]
	capacity int

	state  SubscriptionState
	demand Demand

	buffer   V
	buffered bool
	seen     uint64

	pending *Completion
}

func newSubscription[V any](hub *fanout[V], sink Sink[V], capacity int) *Subscription[V] {
	return &Subscription[V]{
		hub:      hub,
		sink:     sink,
		capacity: capacity,
		state:    StateAwaitingSubscription,
	}
}

// State returns the lifecycle state.
func (s *Subscription[V]) State() SubscriptionState {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.state
}

// Demand returns the outstanding demand.
func (s *Subscription[V]) Demand() Demand {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.demand
}

// Request adds d to the outstanding demand and delivers the buffered value
// if there is one. Negative demand is clamped to None and reported through
// the DemandRejected signal.
func (s *Subscription[V]) Request(d Demand) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if d < 0 {
		emit(DemandRejected,
			KeyName.Field(s.hub.name),
			KeyDemand.Field(d.String()),
		)
		d = None
	}
	if s.state == StateTerminal {
		return
	}
	s.demand = s.demand.add(d)
	s.emit()
}

// Cancel stops delivery. The sink is not notified. Cancel is idempotent and
// safe to call from inside the sink.
func (s *Subscription[V]) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if s.state == StateTerminal {
		return
	}
	s.terminate()
	s.hub.metrics.OnCancel()
	emit(RelayCancelled,
		KeyName.Field(s.hub.name),
		KeySubscribers.Field(len(s.hub.subs)),
	)
}

// start hands the subscription to its sink.
func (s *Subscription[V]) start() {
	if s.state != StateAwaitingSubscription {
		return
	}
	s.state = StateSubscribed
	s.sink.ReceiveSubscription(s)
	s.emit()
}

// seed buffers the value current at attachment time without delivering it.
func (s *Subscription[V]) seed(v V, seq uint64) {
	s.seen = seq
	if s.capacity == 0 {
		return
	}
	s.buffer = v
	s.buffered = true
}

// receive buffers v, overwriting any undelivered value, then emits. Values
// older than one already accepted are dropped so that a re-entrant send can
// never be followed by the send it interrupted.
func (s *Subscription[V]) receive(v V, seq uint64) {
	if s.state == StateTerminal || s.pending != nil {
		return
	}
	if seq <= s.seen {
		return
	}
	s.seen = seq
	s.buffer = v
	s.buffered = true
	s.emit()
	if s.capacity == 0 && s.buffered {
		s.clear()
	}
}

func (s *Subscription[V]) emit() {
	for s.state == StateSubscribed && s.buffered && s.demand > 0 {
		s.demand = s.demand.take()
		v := s.buffer
		s.clear()

		more := s.sink.Receive(v)
		if more < 0 {
			emit(DemandRejected,
				KeyName.Field(s.hub.name),
				KeyDemand.Field(more.String()),
			)
			more = None
		}
		if s.state == StateTerminal {
			return
		}
		s.demand = s.demand.add(more)
	}
	if s.pending != nil && !s.buffered && s.state == StateSubscribed {
		c := *s.pending
		s.complete(c)
	}
}

// complete delivers c exactly once and makes the subscription terminal.
func (s *Subscription[V]) complete(c Completion) {
	if s.state == StateTerminal {
		return
	}
	s.terminate()
	s.sink.ReceiveCompletion(c)
}

// completeAfterDrain completes now if nothing is buffered, otherwise once
// the buffered value has been delivered.
func (s *Subscription[V]) completeAfterDrain(c Completion) {
	if s.state == StateTerminal {
		return
	}
	if !s.buffered {
		s.complete(c)
		return
	}
	s.pending = &c
	s.emit()
}

func (s *Subscription[V]) terminate() {
	s.state = StateTerminal
	s.demand = None
	s.pending = nil
	s.clear()
	s.hub.detach(s)
}

func (s *Subscription[V]) clear() {
	var zero V
	s.buffer = zero
	s.buffered = false
}
