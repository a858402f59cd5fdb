package feed

import "sync"

// errorRing keeps the most recent errors. A nil ring records nothing.
type errorRing struct {
	mu   sync.Mutex
	buf  []error
	next int
	full bool
}

// newErrorRing returns a ring holding up to size errors, or nil when size
// is not positive.
func newErrorRing(size int) *errorRing {
	if size <= 0 {
		return nil
	}
	return &errorRing{buf: make([]error, size)}
}

func (r *errorRing) push(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = err
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

func (r *errorRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.buf)
	r.next = 0
	r.full = false
}

// all returns the retained errors, oldest first, or nil if there are none.
func (r *errorRing) all() []error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		if r.next == 0 {
			return nil
		}
		return append([]error(nil), r.buf[:r.next]...)
	}
	out := make([]error, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}
