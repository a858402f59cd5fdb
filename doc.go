// Package delta provides field-level change notification for plain Go values.
//
// A Container owns a value and a set of watched fields. Every assignment is
// diffed against the previous value; subscribers hear about it only when a
// watched field changed.
//
//	Set → Diff(selectors, old, new) → Relay.Send → Subscription → Sink
//
// # Selectors
//
// A Selector names a field of a value type and knows how to compare it. Field
// builds one from a projection for comparable field types; FieldFunc takes an
// explicit equality for everything else:
//
//	Title := delta.Field("title", func(d Doc) string { return d.Title })
//	Tags  := delta.FieldFunc("tags", func(d Doc) []string { return d.Tags }, slices.Equal)
//
// Selectors are identified by key. Two selectors with the same key are the
// same field as far as a Container is concerned.
//
// # Containers
//
// With no selectors, an assignment is forwarded when the new value differs
// from the stored one. With selectors, it is forwarded when at least one
// watched field differs, and the whole value is forwarded. The stored value
// always advances, so diffs are taken against the latest assignment rather
// than the last forwarded one.
//
// # Relays and Demand
//
// A Relay holds a current value and fans sends out to subscribers inline, in
// subscription order. A Sink receives a Subscription and requests Demand
// from it; nothing is delivered without demand. Each subscription holds at
// most one undelivered value, so a subscriber that falls behind receives the
// latest value, never a backlog:
//
//	sub := relay.Subscribe(delta.SinkFuncs[Doc]{
//	    OnSubscribe: func(s *delta.Subscription[Doc]) { s.Request(delta.Max(1)) },
//	    OnNext:      func(d Doc) delta.Demand { render(d); return delta.Max(1) },
//	})
//	defer sub.Cancel()
//
// Replay shares one upstream subscription and replays the latest upstream
// value to late subscribers.
//
// Sinks may send, request and cancel from inside their callbacks. Nested
// sends through one relay are bounded by MaxDepth; exceeding it panics with
// an error wrapping ErrReentrantOverflow.
//
// # Hook Bindings
//
// Bind projects one property out of every delivered value and hands it to a
// hook. The target is held weakly, and the binding detaches itself once the
// target has been collected:
//
//	b := delta.Bind(doc, Title, toolbar, delta.Method((*Toolbar).SetTitle),
//	    delta.WithExecutor[string](uiQueue),
//	)
//	defer b.Cancel()
//
// Hook dispatch runs through a pipz pipeline, so filters and middleware
// compose in front of the hook.
//
// # Observability
//
// Lifecycle events are emitted as capitan signals (see signals.go). A
// MetricsProvider receives subscribe, send, change and detach callbacks;
// pkg/prom provides a Prometheus implementation.
package delta
