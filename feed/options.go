package feed

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Pipeline identities.
var (
	setID          = pipz.NewIdentity("feed:set", "Assigns the update to the target")
	retryID        = pipz.NewIdentity("feed:retry", "Retries the pipeline")
	backoffID      = pipz.NewIdentity("feed:backoff", "Retries the pipeline with backoff")
	timeoutID      = pipz.NewIdentity("feed:timeout", "Bounds pipeline duration")
	fallbackID     = pipz.NewIdentity("feed:fallback", "Tries fallbacks in order")
	breakerID      = pipz.NewIdentity("feed:circuit-breaker", "Stops calling a failing pipeline")
	errorHandlerID = pipz.NewIdentity("feed:error-handler", "Observes pipeline errors")
	middlewareID   = pipz.NewIdentity("feed:middleware", "Runs middleware before the assignment")
	rateLimitID    = pipz.NewIdentity("feed:rate-limit", "Limits update rate")
)

// Option wraps the processing pipeline of a Feed. The innermost stage assigns
// the update to the target; options apply in order, each wrapping the last.
//
// Instance configuration (debounce, sync mode, codec) is chainable on the
// Feed instead.
type Option[V any] func(pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]]

func buildPipeline[V any](terminal pipz.Chainable[*Update[V]], opts []Option[V]) pipz.Chainable[*Update[V]] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// -----------------------------------------------------------------------------
// Pipeline Options - Wrapping (With*)
// -----------------------------------------------------------------------------

// WithRetry retries a failed pipeline immediately, up to maxAttempts times.
func WithRetry[V any](maxAttempts int) Option[V] {
	return func(p pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
		return pipz.NewRetry(retryID, p, maxAttempts)
	}
}

// WithBackoff retries a failed pipeline with exponentially growing delays
// starting at baseDelay.
func WithBackoff[V any](maxAttempts int, baseDelay time.Duration) Option[V] {
	return func(p pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
		return pipz.NewBackoff(backoffID, p, maxAttempts, baseDelay)
	}
}

// WithTimeout fails the pipeline if it runs longer than d.
func WithTimeout[V any](d time.Duration) Option[V] {
	return func(p pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
		return pipz.NewTimeout(timeoutID, p, d)
	}
}

// WithFallback tries each fallback in order when the pipeline fails.
func WithFallback[V any](fallbacks ...pipz.Chainable[*Update[V]]) Option[V] {
	return func(p pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
		all := make([]pipz.Chainable[*Update[V]], 0, len(fallbacks)+1)
		all = append(all, p)
		all = append(all, fallbacks...)
		return pipz.NewFallback(fallbackID, all...)
	}
}

// WithCircuitBreaker rejects updates without running the pipeline once it
// has failed failures times in a row, until recovery has passed.
func WithCircuitBreaker[V any](failures int, recovery time.Duration) Option[V] {
	return func(p pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
		return pipz.NewCircuitBreaker(breakerID, p, failures, recovery)
	}
}

// WithErrorHandler passes pipeline errors to handler. The error still fails
// the update.
func WithErrorHandler[V any](handler pipz.Chainable[*pipz.Error[*Update[V]]]) Option[V] {
	return func(p pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
		return pipz.NewHandle(errorHandlerID, p, handler)
	}
}

// WithMiddleware runs processors in order before the rest of the pipeline.
//
// Example:
//
//	feed.New[Config](watcher, container,
//	    feed.WithMiddleware(
//	        feed.UseEffect[Config]("log", logUpdate),
//	        feed.UseRateLimit(10, 5, notify),
//	    ),
//	)
func WithMiddleware[V any](processors ...pipz.Chainable[*Update[V]]) Option[V] {
	return func(p pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
		all := make([]pipz.Chainable[*Update[V]], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence(middlewareID, all...)
	}
}

// -----------------------------------------------------------------------------
// Middleware Processors (Use*)
// -----------------------------------------------------------------------------

// UseTransform rewrites the update. Cannot fail.
func UseTransform[V any](name string, fn func(context.Context, *Update[V]) *Update[V]) pipz.Chainable[*Update[V]] {
	return pipz.Transform(pipz.NewIdentity(name, "Transforms the update"), fn)
}

// UseApply rewrites the update and may fail it.
func UseApply[V any](name string, fn func(context.Context, *Update[V]) (*Update[V], error)) pipz.Chainable[*Update[V]] {
	return pipz.Apply(pipz.NewIdentity(name, "Applies to the update"), fn)
}

// UseEffect observes the update. A returned error fails the update.
func UseEffect[V any](name string, fn func(context.Context, *Update[V]) error) pipz.Chainable[*Update[V]] {
	return pipz.Effect(pipz.NewIdentity(name, "Observes the update"), fn)
}

// UseMutate applies transformer only when condition holds.
func UseMutate[V any](name string, transformer func(context.Context, *Update[V]) *Update[V], condition func(context.Context, *Update[V]) bool) pipz.Chainable[*Update[V]] {
	return pipz.Mutate(pipz.NewIdentity(name, "Conditionally transforms the update"), transformer, condition)
}

// UseEnrich attempts an optional enhancement. On failure the update
// continues unchanged.
func UseEnrich[V any](name string, fn func(context.Context, *Update[V]) (*Update[V], error)) pipz.Chainable[*Update[V]] {
	return pipz.Enrich(pipz.NewIdentity(name, "Enriches the update"), fn)
}

// UseFilter runs processor only when condition holds; otherwise the update
// passes through.
func UseFilter[V any](name string, condition func(context.Context, *Update[V]) bool, processor pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
	return pipz.NewFilter(pipz.NewIdentity(name, "Filters the update"), condition, processor)
}

// UseRetry retries processor up to maxAttempts times.
func UseRetry[V any](maxAttempts int, processor pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
	return pipz.NewRetry(retryID, processor, maxAttempts)
}

// UseTimeout fails processor if it runs longer than d.
func UseTimeout[V any](d time.Duration, processor pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
	return pipz.NewTimeout(timeoutID, processor, d)
}

// UseRateLimit runs processor once a token is available from a bucket
// refilled at rate per second holding up to burst tokens.
func UseRateLimit[V any](rate float64, burst int, processor pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
	return pipz.NewRateLimiter(rateLimitID, rate, burst, processor)
}

// UseWhenChanged runs processor only for updates that change at least one
// watched field of the target.
func UseWhenChanged[V any](name string, processor pipz.Chainable[*Update[V]]) pipz.Chainable[*Update[V]] {
	return UseFilter(name, func(_ context.Context, u *Update[V]) bool {
		return !u.Changes.IsEmpty()
	}, processor)
}
