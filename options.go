package delta

import (
	"context"

	"github.com/zoobzio/pipz"
)

// Pipeline identities used by binding options.
var (
	hookID       = pipz.NewIdentity("delta:hook", "Invokes the bound hook")
	middlewareID = pipz.NewIdentity("delta:middleware", "Runs middleware before the hook")
)

// Option configures a hook binding. Delivery options choose where the hook
// runs; pipeline options wrap the hook with pipz processors that see the
// projected property value first.
type Option[P any] func(*bindConfig[P])

type bindConfig[P any] struct {
	ctx      context.Context
	executor Executor
	wrappers []func(pipz.Chainable[P]) pipz.Chainable[P]
	onError  func(error)
}

func newBindConfig[P any](opts []Option[P]) *bindConfig[P] {
	cfg := &bindConfig[P]{
		ctx:      context.Background(),
		executor: Inline,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// buildPipeline wraps a terminal with the configured pipeline options.
func (c *bindConfig[P]) buildPipeline(terminal pipz.Chainable[P]) pipz.Chainable[P] {
	pipeline := terminal
	for _, wrap := range c.wrappers {
		pipeline = wrap(pipeline)
	}
	return pipeline
}

// -----------------------------------------------------------------------------
// Delivery Options
// -----------------------------------------------------------------------------

// WithExecutor runs the hook on e instead of inline. Deliveries for one
// binding reach e in send order.
//
// Example:
//
//	queue := delta.NewSerialQueue()
//	delta.Bind(relay, Title, view, delta.Method((*View).SetTitle),
//	    delta.WithExecutor[string](queue))
func WithExecutor[P any](e Executor) Option[P] {
	return func(c *bindConfig[P]) {
		if e == nil {
			e = Inline
		}
		c.executor = e
	}
}

// WithContext sets the context passed through the dispatch pipeline.
func WithContext[P any](ctx context.Context) Option[P] {
	return func(c *bindConfig[P]) {
		c.ctx = ctx
	}
}

// WithErrorHandler receives errors returned by the dispatch pipeline.
// Errors are also emitted as HookFailed signals.
func WithErrorHandler[P any](fn func(error)) Option[P] {
	return func(c *bindConfig[P]) {
		c.onError = fn
	}
}

// -----------------------------------------------------------------------------
// Pipeline Options
// -----------------------------------------------------------------------------

// WithFilter only invokes the hook for values matching predicate.
func WithFilter[P any](name string, predicate func(context.Context, P) bool) Option[P] {
	id := pipz.NewIdentity(name, "Filters hook deliveries")
	return func(c *bindConfig[P]) {
		c.wrappers = append(c.wrappers, func(p pipz.Chainable[P]) pipz.Chainable[P] {
			return pipz.NewFilter(id, predicate, p)
		})
	}
}

// WithMiddleware runs processors in order before the hook. A processor may
// transform the value the hook receives or fail the delivery.
//
// Example:
//
//	delta.Bind(relay, Title, view, delta.Method((*View).SetTitle),
//	    delta.WithMiddleware(
//	        delta.UseTransform("trim", func(_ context.Context, s string) string {
//	            return strings.TrimSpace(s)
//	        }),
//	    ))
func WithMiddleware[P any](processors ...pipz.Chainable[P]) Option[P] {
	return func(c *bindConfig[P]) {
		c.wrappers = append(c.wrappers, func(p pipz.Chainable[P]) pipz.Chainable[P] {
			all := make([]pipz.Chainable[P], 0, len(processors)+1)
			all = append(all, processors...)
			all = append(all, p)
			return pipz.NewSequence(middlewareID, all...)
		})
	}
}

// UseTransform creates a processor that rewrites the value. Cannot fail.
func UseTransform[P any](name string, fn func(context.Context, P) P) pipz.Chainable[P] {
	return pipz.Transform(pipz.NewIdentity(name, "Transforms hook value"), fn)
}

// UseApply creates a processor that rewrites the value and may fail.
func UseApply[P any](name string, fn func(context.Context, P) (P, error)) pipz.Chainable[P] {
	return pipz.Apply(pipz.NewIdentity(name, "Applies to hook value"), fn)
}

// UseEffect creates a processor that observes the value without changing it.
func UseEffect[P any](name string, fn func(context.Context, P) error) pipz.Chainable[P] {
	return pipz.Effect(pipz.NewIdentity(name, "Observes hook value"), fn)
}
