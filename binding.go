package delta

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/zoobzio/pipz"
)

// Binding is the handle of a hook bound to a publisher.
type Binding struct {
	property string
	active   atomic.Bool
	once     sync.Once
	cancel   func()
}

// Property returns the key of the bound property.
func (b *Binding) Property() string { return b.property }

// Active reports whether the binding still dispatches.
func (b *Binding) Active() bool { return b.active.Load() }

// Cancel detaches the binding. It is idempotent.
func (b *Binding) Cancel() {
	b.active.Store(false)
	b.once.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
	})
}

// Bind subscribes to pub with unlimited demand and, for every delivered
// value, projects property out of it and invokes hook. Target is held weakly:
// once it has been collected the binding cancels itself on the next
// delivery, without invoking the hook and without reporting an error.
//
// Example:
//
//	type Toolbar struct{ title string }
//	func (t *Toolbar) SetTitle(s string) { t.title = s }
//
//	Title := delta.Field("title", func(d Doc) string { return d.Title })
//	b := delta.Bind(doc.Relay(), Title, toolbar, delta.Method((*Toolbar).SetTitle))
//	defer b.Cancel()
func Bind[R, T, P any](pub Publisher[R], property Property[R, P], target *T, hook Hook[T, P], opts ...Option[P]) *Binding {
	var ref weak.Pointer[T]
	if target != nil {
		ref = weak.Make(target)
	}
	return bind(pub, property, ref, target != nil, hook, opts)
}

// BindFunc is Bind without a target. The binding lives until cancelled or
// until pub completes.
func BindFunc[R, P any](pub Publisher[R], property Property[R, P], fn func(P), opts ...Option[P]) *Binding {
	return bind(pub, property, weak.Pointer[struct{}]{}, false, Closure[struct{}](fn), opts)
}

// ObserveField binds hook to c. Bindings created this way are cancelled when
// the container is closed.
func ObserveField[R, T, P any](c *Container[R], property Property[R, P], target *T, hook Hook[T, P], opts ...Option[P]) *Binding {
	b := Bind[R, T, P](c, property, target, hook, opts...)
	c.own(b)
	return b
}

func bind[R, T, P any](pub Publisher[R], property Property[R, P], target weak.Pointer[T], tracked bool, hook Hook[T, P], opts []Option[P]) *Binding {
	cfg := newBindConfig(opts)
	b := &Binding{property: property.Key()}
	b.active.Store(true)

	s := &hookSink[R, T, P]{
		binding:  b,
		property: property,
		target:   target,
		tracked:  tracked,
		hook:     hook,
		cfg:      cfg,
	}
	s.pipeline = cfg.buildPipeline(pipz.Effect(hookID, s.invoke))

	pub.Subscribe(s)
	return b
}

// hookSink adapts a binding to the Sink protocol.
type hookSink[R, T, P any] struct {
	binding  *Binding
	property Property[R, P]
	target   weak.Pointer[T]
	tracked  bool
	hook     Hook[T, P]
	cfg      *bindConfig[P]
	pipeline pipz.Chainable[P]
	name     string
	metrics  MetricsProvider
}

func (s *hookSink[R, T, P]) ReceiveSubscription(sub *Subscription[R]) {
	s.name = sub.hub.name
	s.metrics = sub.hub.metrics
	s.binding.cancel = sub.Cancel
	sub.Request(Unlimited)
}

func (s *hookSink[R, T, P]) Receive(v R) Demand {
	if !s.binding.Active() {
		return None
	}
	p := s.property.Get(v)
	s.cfg.executor.Execute(func() { s.dispatch(p) })
	return None
}

func (s *hookSink[R, T, P]) ReceiveCompletion(_ Completion) {
	s.binding.active.Store(false)
}

func (s *hookSink[R, T, P]) released() bool {
	return s.tracked && s.target.Value() == nil
}

func (s *hookSink[R, T, P]) dispatch(p P) {
	if !s.binding.Active() {
		return
	}
	if s.released() {
		s.detach()
		return
	}
	_, err := s.pipeline.Process(s.cfg.ctx, p)
	if err == nil {
		return
	}
	if errors.Is(err, ErrTargetReleased) || s.released() {
		s.detach()
		return
	}
	emit(HookFailed,
		KeyName.Field(s.name),
		KeyProperty.Field(s.property.Key()),
		KeyError.Field(err.Error()),
	)
	if s.cfg.onError != nil {
		s.cfg.onError(err)
	}
}

func (s *hookSink[R, T, P]) invoke(_ context.Context, p P) error {
	return s.hook.invoke(s.target.Value(), s.tracked, p)
}

func (s *hookSink[R, T, P]) detach() {
	if !s.binding.Active() {
		return
	}
	s.binding.active.Store(false)
	s.metrics.OnDetach()
	emit(BindingDetached,
		KeyName.Field(s.name),
		KeyProperty.Field(s.property.Key()),
	)
	s.binding.Cancel()
}
