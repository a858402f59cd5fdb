// Package feed loads values from an external source into a delta container.
//
// A Feed watches a source for raw bytes, decodes them, validates the result
// and assigns it to a target, usually a *delta.Container. The container then
// decides, field by field, which subscribers hear about it:
//
//	Watcher → Codec → Validate → Pipeline → Setter
//
// If any step fails, the target keeps its previous value and the Feed enters
// a degraded state while it keeps watching for valid updates.
//
// # State Machine
//
// A Feed is in one of four states:
//
//   - Loading: no value decoded yet
//   - Healthy: the last update was applied
//   - Degraded: the last update failed, the previous value is still in place
//   - Empty: the first update failed, nothing was ever applied
//
// # Example
//
//	type Config struct {
//	    Port int    `json:"port"`
//	    Host string `json:"host"`
//	}
//
//	Port := delta.Field("port", func(c Config) int { return c.Port })
//	cfg := delta.New(Config{}, Port)
//	delta.BindFunc(cfg, Port, server.Rebind)
//
//	f := feed.New[Config](feed.NewFileWatcher("/etc/app/config.json"), cfg)
//	if err := f.Start(ctx); err != nil {
//	    log.Printf("initial config failed: %v", err)
//	}
package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/delta"
	"github.com/zoobzio/pipz"
)

// DefaultDebounce is the default debounce duration for change processing.
const DefaultDebounce = 100 * time.Millisecond

// Processing stages reported to MetricsProvider.OnProcessFailure.
const (
	StageDecode   = "decode"
	StageValidate = "validate"
	StagePipeline = "pipeline"
)

// Validator is implemented by value types that check themselves after
// decoding. Values that do not implement it are accepted as decoded.
type Validator interface {
	Validate() error
}

// Setter receives decoded values. *delta.Container satisfies it.
type Setter[V any] interface {
	Set(v V)
}

// SetterFunc adapts a function to Setter, for example a relay's Send method:
//
//	feed.New[Config](watcher, feed.SetterFunc[Config](relay.Send))
type SetterFunc[V any] func(v V)

// Set calls f(v).
func (f SetterFunc[V]) Set(v V) { f(v) }

type selectorSource[V any] interface {
	Selectors() delta.Selectors[V]
}

type currentSource[V any] interface {
	Current() V
}

// Feed watches a source, decodes each change and assigns it to a target.
type Feed[V any] struct {
	watcher        Watcher
	pipeline       pipz.Chainable[*Update[V]]
	selectors      delta.Selectors[V]
	previous       func() V
	name           string
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	clock          clockz.Clock
	codec          Codec
	tags           *validator.Validate
	metrics        MetricsProvider
	onStop         func(State)

	state        atomic.Int32
	current      atomic.Pointer[V]
	lastError    atomic.Pointer[error]
	errorHistory *errorRing

	mu      sync.Mutex
	started bool

	// sync mode reads from here in Process
	changes <-chan []byte
}

// New creates a Feed that assigns every valid update from watcher to target.
//
// When target also exposes its selectors, as *delta.Container does, each
// Update carries the set of watched fields that changed.
//
// Pipeline options run between validation and the assignment; instance
// configuration uses chainable methods before Start.
//
// Example:
//
//	f := feed.New[Config](
//	    feed.NewFileWatcher("config.yaml"),
//	    container,
//	    feed.WithRetry[Config](3),
//	).Codec(feed.YAMLCodec{}).Debounce(200 * time.Millisecond)
func New[V any](watcher Watcher, target Setter[V], opts ...Option[V]) *Feed[V] {
	terminal := pipz.Effect(setID, func(_ context.Context, u *Update[V]) error {
		target.Set(u.Current)
		return nil
	})

	f := &Feed[V]{
		watcher:      watcher,
		pipeline:     buildPipeline(terminal, opts),
		debounce:     DefaultDebounce,
		clock:        clockz.RealClock,
		codec:        JSONCodec{},
		metrics:      NoOpMetricsProvider{},
		errorHistory: newErrorRing(0),
	}
	if s, ok := target.(selectorSource[V]); ok {
		f.selectors = s.Selectors()
	}
	if s, ok := target.(currentSource[V]); ok {
		f.previous = s.Current
	}
	f.state.Store(int32(StateLoading))
	return f
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Name sets the name attached to signals emitted by this feed.
func (f *Feed[V]) Name(name string) *Feed[V] {
	f.name = name
	return f
}

// Debounce sets how long the feed waits for the source to settle. Changes
// arriving within this window are coalesced and only the last is processed.
// Default: 100ms. Must be called before Start().
func (f *Feed[V]) Debounce(d time.Duration) *Feed[V] {
	f.debounce = d
	return f
}

// SyncMode processes changes only when Process is called, with no
// goroutine and no debounce. Must be called before Start().
func (f *Feed[V]) SyncMode() *Feed[V] {
	f.syncMode = true
	return f
}

// Clock sets the clock used for debounce timers and startup timeouts.
// Must be called before Start().
func (f *Feed[V]) Clock(clock clockz.Clock) *Feed[V] {
	f.clock = clock
	return f
}

// Codec sets the decoder for raw bytes. Default: JSONCodec.
// Must be called before Start().
func (f *Feed[V]) Codec(codec Codec) *Feed[V] {
	f.codec = codec
	return f
}

// ValidateTags checks `validate` struct tags with go-playground/validator
// after decoding, before the Validator interface runs. V must be a struct.
// Must be called before Start().
//
// Example:
//
//	type Config struct {
//	    Port int `json:"port" validate:"min=1,max=65535"`
//	}
func (f *Feed[V]) ValidateTags() *Feed[V] {
	f.tags = validator.New(validator.WithRequiredStructEnabled())
	return f
}

// StartupTimeout bounds how long Start waits for the first value.
// Default: no timeout. Must be called before Start().
func (f *Feed[V]) StartupTimeout(d time.Duration) *Feed[V] {
	f.startupTimeout = d
	return f
}

// Metrics sets a metrics provider. Must be called before Start().
func (f *Feed[V]) Metrics(provider MetricsProvider) *Feed[V] {
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	f.metrics = provider
	return f
}

// OnStop sets a callback invoked with the final state once the feed stops
// watching. Must be called before Start().
func (f *Feed[V]) OnStop(fn func(State)) *Feed[V] {
	f.onStop = fn
	return f
}

// ErrorHistorySize retains the n most recent errors for ErrorHistory.
// With 0, the default, only LastError is kept. Must be called before Start().
func (f *Feed[V]) ErrorHistorySize(n int) *Feed[V] {
	f.errorHistory = newErrorRing(n)
	return f
}

// State returns the current state.
func (f *Feed[V]) State() State {
	return State(f.state.Load())
}

// Current returns the last applied value and true, or the zero value and
// false if nothing has been applied.
func (f *Feed[V]) Current() (V, bool) {
	ptr := f.current.Load()
	if ptr == nil {
		var zero V
		return zero, false
	}
	return *ptr, true
}

// LastError returns the error of the last failed update since the last
// success, or nil.
func (f *Feed[V]) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns recent errors, oldest first. It is nil unless
// ErrorHistorySize was set, and is cleared by every successful update.
func (f *Feed[V]) ErrorHistory() []error {
	return f.errorHistory.all()
}

// Start begins watching. It blocks until the first value has been processed,
// successfully or not, then keeps watching in the background until ctx is
// done or the watcher closes its channel.
//
// A failed first value is returned as an error but does not stop the feed.
// In sync mode only the first value is processed; call Process for the rest.
//
// Start can only be called once.
func (f *Feed[V]) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return ErrAlreadyStarted
	}
	f.started = true
	f.mu.Unlock()

	capitan.Emit(ctx, FeedStarted,
		delta.KeyName.Field(f.name),
		KeyDebounce.Field(f.debounce),
		KeyCodec.Field(f.codec.ContentType()),
	)

	changes, err := f.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	startupCtx := ctx
	if f.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = f.clock.WithTimeout(ctx, f.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if f.startupTimeout > 0 && startupCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: no value within %v", ErrStartupTimeout, f.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			return ErrWatcherClosed
		}
		f.received(ctx)
		initialErr = f.process(ctx, raw)
	}

	if f.syncMode {
		f.changes = changes
		return initialErr
	}

	go f.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next pending value. It only works in sync
// mode and returns false when nothing is pending or the channel is closed.
func (f *Feed[V]) Process(ctx context.Context) bool {
	if !f.syncMode {
		return false
	}

	select {
	case raw, ok := <-f.changes:
		if !ok {
			return false
		}
		f.received(ctx)
		_ = f.process(ctx, raw) //nolint:errcheck // recorded via setError
		return true
	default:
		return false
	}
}

func (f *Feed[V]) received(ctx context.Context) {
	capitan.Emit(ctx, FeedChangeReceived, delta.KeyName.Field(f.name))
	f.metrics.OnChangeReceived()
}

// process decodes, validates and applies one update.
func (f *Feed[V]) process(ctx context.Context, raw []byte) error {
	start := f.clock.Now()
	oldState := f.State()

	var next V
	if err := f.codec.Unmarshal(raw, &next); err != nil {
		f.fail(ctx, oldState, FeedDecodeFailed, StageDecode, start, err)
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if err := f.validate(&next); err != nil {
		f.fail(ctx, oldState, FeedValidationFailed, StageValidate, start, err)
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var prev V
	switch ptr := f.current.Load(); {
	case f.previous != nil:
		prev = f.previous()
	case ptr != nil:
		prev = *ptr
	}

	u := &Update[V]{
		Previous: prev,
		Current:  next,
		Raw:      raw,
		Changes:  delta.Diff(f.selectors, prev, next),
	}
	applied, err := f.pipeline.Process(ctx, u)
	if err != nil {
		f.fail(ctx, oldState, FeedApplyFailed, StagePipeline, start, err)
		return fmt.Errorf("pipeline failed: %w", err)
	}

	f.current.Store(&applied.Current)
	f.lastError.Store(nil)
	f.errorHistory.clear()
	f.transitionState(ctx, oldState, StateHealthy)
	capitan.Emit(ctx, FeedApplySucceeded,
		delta.KeyName.Field(f.name),
		delta.KeyChanged.Field(joinKeys(u.Changes)),
	)
	f.metrics.OnProcessSuccess(f.clock.Since(start))

	return nil
}

func (f *Feed[V]) fail(ctx context.Context, oldState State, signal capitan.Signal, stage string, start time.Time, err error) {
	f.setError(err)
	f.transitionState(ctx, oldState, f.failureState())
	capitan.Emit(ctx, signal,
		delta.KeyName.Field(f.name),
		delta.KeyError.Field(err.Error()),
	)
	f.metrics.OnProcessFailure(stage, f.clock.Since(start))
}

// validate runs tag validation if enabled, then the Validator interface on
// v or *v.
func (f *Feed[V]) validate(v *V) error {
	if f.tags != nil {
		if err := f.tags.Struct(v); err != nil {
			return err
		}
	}
	if val, ok := any(*v).(Validator); ok {
		return val.Validate()
	}
	if val, ok := any(v).(Validator); ok {
		return val.Validate()
	}
	return nil
}

// failureState is Empty until something has been applied, Degraded after.
func (f *Feed[V]) failureState() State {
	if f.State().Applied() {
		return StateDegraded
	}
	return StateEmpty
}

func (f *Feed[V]) transitionState(ctx context.Context, oldState, newState State) {
	if oldState == newState {
		return
	}
	f.state.Store(int32(newState))
	capitan.Emit(ctx, FeedStateChanged,
		delta.KeyName.Field(f.name),
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	f.metrics.OnStateChange(oldState, newState)
}

func (f *Feed[V]) setError(err error) {
	e := err
	f.lastError.Store(&e)
	f.errorHistory.push(err)
}

// watch processes changes with debouncing until ctx is done or changes closes.
func (f *Feed[V]) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		final := f.State()
		capitan.Emit(ctx, FeedStopped,
			delta.KeyName.Field(f.name),
			KeyState.Field(final.String()),
		)
		if f.onStop != nil {
			f.onStop(final)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = f.process(ctx, pending) //nolint:errcheck // recorded via setError
				}
				return
			}

			f.received(ctx)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = f.clock.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = f.process(ctx, pending) //nolint:errcheck // recorded via setError
				hasPending = false
			}
		}
	}
}
