package delta

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Executor runs hook deliveries. Implementations must run tasks in the order
// they were submitted.
type Executor interface {
	Execute(task func())
}

type inlineExecutor struct{}

func (inlineExecutor) Execute(task func()) { task() }

// Inline runs each task immediately on the submitting goroutine. It is the
// default executor of a binding.
var Inline Executor = inlineExecutor{}

// SerialQueue runs tasks one at a time, in submission order, on a dedicated
// goroutine.
type SerialQueue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
	worker atomic.Int64
}

// NewSerialQueue starts a queue. Call Close to stop it.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Execute enqueues task. Tasks submitted after Close are dropped.
func (q *SerialQueue) Execute(task func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		emit(QueueDropped)
		return
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every task submitted before the call has run. Called
// from a queued task it returns immediately, since the earlier tasks have
// already run.
func (q *SerialQueue) Flush() {
	if q.onWorker() {
		return
	}
	ran := make(chan struct{})
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.mu.Unlock()
	q.Execute(func() { close(ran) })
	select {
	case <-ran:
	case <-q.done:
	}
}

// Close runs the tasks already queued and stops the worker. It blocks until
// the worker exits, except when called from a queued task, and is safe to
// call more than once.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
	q.mu.Unlock()
	if q.onWorker() {
		return
	}
	<-q.done
}

func (q *SerialQueue) onWorker() bool {
	return q.worker.Load() == goid.Get()
}

func (q *SerialQueue) run() {
	q.worker.Store(goid.Get())
	defer close(q.done)
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		closed := q.closed
		q.mu.Unlock()

		for _, task := range tasks {
			task()
		}
		if len(tasks) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}

var _ Executor = (*SerialQueue)(nil)
