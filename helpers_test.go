package delta

import (
	"sync"
	"time"
)

// recorder is a Sink that records what it receives.
type recorder[V any] struct {
	mu          sync.Mutex
	initial     Demand
	more        Demand
	sub         *Subscription[V]
	values      []V
	completions []Completion
	onNext      func(V)
}

func newRecorder[V any](initial Demand) *recorder[V] {
	return &recorder[V]{initial: initial}
}

func (r *recorder[V]) ReceiveSubscription(sub *Subscription[V]) {
	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
	if r.initial != None {
		sub.Request(r.initial)
	}
}

func (r *recorder[V]) Receive(v V) Demand {
	r.mu.Lock()
	r.values = append(r.values, v)
	onNext := r.onNext
	more := r.more
	r.mu.Unlock()
	if onNext != nil {
		onNext(v)
	}
	return more
}

func (r *recorder[V]) ReceiveCompletion(c Completion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
}

func (r *recorder[V]) Values() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]V, len(r.values))
	copy(out, r.values)
	return out
}

func (r *recorder[V]) Completions() []Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Completion, len(r.completions))
	copy(out, r.completions)
	return out
}

func equalSlices[V comparable](a, b []V) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countingMetrics records MetricsProvider callbacks.
type countingMetrics struct {
	NoOpMetricsProvider
	mu         sync.Mutex
	subscribes int
	cancels    int
	sends      int
	delivered  int
	durations  []time.Duration
	changes    []int
	suppressed int
	detached   int
}

func (m *countingMetrics) OnSubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribes++
}

func (m *countingMetrics) OnCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
}

func (m *countingMetrics) OnSend(subscribers int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
	m.delivered += subscribers
	m.durations = append(m.durations, d)
}

func (m *countingMetrics) OnChange(changed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, changed)
}

func (m *countingMetrics) OnSuppress() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressed++
}

func (m *countingMetrics) OnDetach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detached++
}
