package delta

// Sink consumes values from a Publisher under the demand protocol.
//
// All three methods are called while the publisher's lock is held, on the
// goroutine that triggered the delivery. A sink may call Request, Cancel or
// Send on the same publisher from inside these methods.
type Sink[V any] interface {
	// ReceiveSubscription hands the sink its subscription. The sink requests
	// demand here; nothing is delivered until it does.
	ReceiveSubscription(sub *Subscription[V])

	// Receive delivers one value and returns additional demand, usually None.
	Receive(v V) Demand

	// ReceiveCompletion delivers the terminal signal. It is called at most once.
	ReceiveCompletion(c Completion)
}

// Publisher is a source of values that subscribers attach to.
type Publisher[V any] interface {
	Subscribe(sink Sink[V]) *Subscription[V]
}

// SinkFuncs adapts plain functions to Sink. Nil fields are skipped; a nil
// OnSubscribe requests Unlimited.
type SinkFuncs[V any] struct {
	OnSubscribe func(sub *Subscription[V])
	OnNext      func(v V) Demand
	OnComplete  func(c Completion)
}

// ReceiveSubscription implements Sink.
func (s SinkFuncs[V]) ReceiveSubscription(sub *Subscription[V]) {
	if s.OnSubscribe == nil {
		sub.Request(Unlimited)
		return
	}
	s.OnSubscribe(sub)
}

// Receive implements Sink.
func (s SinkFuncs[V]) Receive(v V) Demand {
	if s.OnNext == nil {
		return None
	}
	return s.OnNext(v)
}

// ReceiveCompletion implements Sink.
func (s SinkFuncs[V]) ReceiveCompletion(c Completion) {
	if s.OnComplete != nil {
		s.OnComplete(c)
	}
}

var _ Sink[int] = SinkFuncs[int]{}

// Observe subscribes to pub with unlimited demand. onComplete may be nil.
//
// Example:
//
//	sub := delta.Observe(relay, func(cfg Config) {
//	    render(cfg)
//	}, nil)
//	defer sub.Cancel()
func Observe[V any](pub Publisher[V], onNext func(V), onComplete func(Completion)) *Subscription[V] {
	return pub.Subscribe(SinkFuncs[V]{
		OnNext: func(v V) Demand {
			if onNext != nil {
				onNext(v)
			}
			return None
		},
		OnComplete: onComplete,
	})
}
