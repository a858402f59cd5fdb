package delta

import (
	"strings"

	"github.com/zoobzio/clockz"
)

// Container owns a value and forwards assignments to its relay only when a
// watched field changed.
//
// With no selectors, an assignment is forwarded when the new value differs
// from the stored one as a whole. With selectors, it is forwarded when at
// least one watched field differs; forwarding is all-or-nothing per
// assignment. Either way the stored value always advances, so the next
// assignment is compared against the latest value, not the last forwarded one.
//
// A container and its relay share one lock.
type Container[V any] struct {
	relay     *Relay[V]
	value     V
	equal     func(a, b V) bool
	selectors Selectors[V]
	bindings  []*Binding
}

// New creates a container for a comparable value type.
//
// Example:
//
//	state := delta.New(State{}, Count)
//	delta.Observe(state.Relay(), render, nil)
//	state.Set(State{Label: "x"})          // suppressed: Count unchanged
//	state.Set(State{Label: "x", Count: 5}) // forwarded
func New[V comparable](initial V, selectors ...Selector[V]) *Container[V] {
	return NewFunc(initial, func(a, b V) bool { return a == b }, selectors...)
}

// NewFunc creates a container whose whole-value comparison uses equal.
// Equal is only consulted when no selectors are configured.
func NewFunc[V any](initial V, equal func(a, b V) bool, selectors ...Selector[V]) *Container[V] {
	return &Container[V]{
		relay:     NewRelay(initial),
		value:     initial,
		equal:     equal,
		selectors: NewSelectors(selectors...),
	}
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Name sets the name attached to signals emitted by the container and its relay.
func (c *Container[V]) Name(name string) *Container[V] {
	c.relay.Name(name)
	return c
}

// Clock sets the clock used to time fan-out for metrics.
func (c *Container[V]) Clock(clock clockz.Clock) *Container[V] {
	c.relay.Clock(clock)
	return c
}

// Metrics sets a metrics provider for observability integration.
func (c *Container[V]) Metrics(provider MetricsProvider) *Container[V] {
	c.relay.Metrics(provider)
	return c
}

// MaxDepth sets the re-entrant send limit of the underlying relay.
func (c *Container[V]) MaxDepth(n int) *Container[V] {
	c.relay.MaxDepth(n)
	return c
}

// Current returns the latest assigned value, forwarded or not.
func (c *Container[V]) Current() V {
	c.relay.hub.mu.Lock()
	defer c.relay.hub.mu.Unlock()
	return c.value
}

// Relay returns the relay assignments are forwarded to.
func (c *Container[V]) Relay() *Relay[V] {
	return c.relay
}

// Selectors returns the watched selectors.
func (c *Container[V]) Selectors() Selectors[V] {
	return c.selectors
}

// Subscribe attaches sink to the container's relay.
func (c *Container[V]) Subscribe(sink Sink[V]) *Subscription[V] {
	return c.relay.Subscribe(sink)
}

// Set assigns v. Subscribers see it synchronously, before Set returns, if
// the assignment counts as a change. Set never fails; sets after Close only
// update the stored value.
func (c *Container[V]) Set(v V) {
	hub := &c.relay.hub
	hub.mu.Lock()
	defer hub.mu.Unlock()

	old := c.value
	c.value = v

	if c.selectors.Len() == 0 {
		if c.equal(old, v) {
			c.suppress()
			return
		}
		hub.metrics.OnChange(0)
		emit(ContainerChanged, KeyName.Field(hub.name))
		c.relay.Send(v)
		return
	}

	changes := Diff(c.selectors, old, v)
	if changes.IsEmpty() {
		c.suppress()
		return
	}
	hub.metrics.OnChange(changes.Len())
	emit(ContainerChanged,
		KeyName.Field(hub.name),
		KeyChanged.Field(strings.Join(changes.Keys(), ",")),
	)
	c.relay.Send(v)
}

func (c *Container[V]) suppress() {
	c.relay.hub.metrics.OnSuppress()
	emit(ContainerSuppressed, KeyName.Field(c.relay.hub.name))
}

// Close cancels the bindings created through ObserveField and completes the
// relay, telling every subscriber the source is gone.
func (c *Container[V]) Close() {
	c.relay.hub.mu.Lock()
	bindings := c.bindings
	c.bindings = nil
	c.relay.hub.mu.Unlock()

	for _, b := range bindings {
		b.Cancel()
	}
	c.relay.Complete(Finished)
}

func (c *Container[V]) own(b *Binding) {
	c.relay.hub.mu.Lock()
	defer c.relay.hub.mu.Unlock()
	c.bindings = append(c.bindings, b)
}

func (c *Container[V]) sharedLock() *reentrantMutex { return c.relay.hub.mu }

var _ Publisher[int] = (*Container[int])(nil)
