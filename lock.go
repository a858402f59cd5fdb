package delta

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// reentrantMutex is a mutex that the owning goroutine may acquire again
// without deadlocking. Sinks run while the relay lock is held, and they are
// allowed to call Cancel, Request or Send on the same relay.
type reentrantMutex struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

// lockSharer is implemented by publishers whose lock a downstream hub joins.
// Holding one lock across a chain keeps upstream sends and downstream
// requests from acquiring locks in opposite orders.
type lockSharer interface {
	sharedLock() *reentrantMutex
}

func (m *reentrantMutex) Lock() {
	g := goid.Get()
	if m.owner.Load() == g {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner.Store(g)
	m.depth = 1
}

func (m *reentrantMutex) Unlock() {
	if m.owner.Load() != goid.Get() {
		panic("delta: unlock of reentrant mutex by non-owner goroutine")
	}
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}
