package forkjoin

import (
	"sync"
	"sync/atomic"
)

const initialDequeCapacity = 32

// taskDeque is the narrow contract the worker loop depends on. pushBottom
// and popBottom are owner-only; stealTop may be called concurrently by
// any other worker. size is advisory; correctness rests solely on the
// three queue operations.
type taskDeque interface {
	pushBottom(h *Handle)
	popBottom() (*Handle, bool)
	stealTop() (*Handle, bool)
	size() int
}

// deque is a double-ended work queue over a growable ring buffer. top and
// bottom are monotonically increasing logical indices; the occupied range
// is [top, bottom). The owner operates lock-free at the bottom in the
// common case; the mutex serializes stealers, the last-element race, and
// buffer growth. The CAS on top is the linearization point for removal at
// the steal end: two stealers, or a stealer and the owner contending for
// the final element, can never both win.
type deque struct {
	mu     sync.Mutex
	buf    []*Handle
	mask   int64
	top    atomic.Int64
	bottom atomic.Int64
}

func newDeque() *deque {
	return &deque{
		buf:  make([]*Handle, initialDequeCapacity),
		mask: initialDequeCapacity - 1,
	}
}

// pushBottom appends a task at the owner end. Owner-only.
func (d *deque) pushBottom(h *Handle) {
	b := d.bottom.Load()
	t := d.top.Load()
	if b-t >= int64(len(d.buf)) {
		d.grow(b)
	}
	d.buf[b&d.mask] = h
	d.bottom.Store(b + 1)
}

// popBottom removes the most recently pushed task. Owner-only. The
// decrement of bottom before the read of top is what lets a concurrent
// stealTop observe the claim; the order must not be changed.
func (d *deque) popBottom() (*Handle, bool) {
	b := d.bottom.Load() - 1
	d.bottom.Store(b)

	t := d.top.Load()
	if b < t {
		// Empty; restore bottom.
		d.bottom.Store(t)
		return nil, false
	}

	h := d.buf[b&d.mask]
	if b > t {
		return h, true
	}

	// Last element: settle the race with stealers under the lock.
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.top.CompareAndSwap(t, t+1) {
		d.bottom.Store(t + 1)
		return h, true
	}
	// A stealer won; the deque is empty.
	d.bottom.Store(d.top.Load())
	return nil, false
}

// stealTop removes the oldest task. Any worker may call this.
func (d *deque) stealTop() (*Handle, bool) {
	t := d.top.Load()
	b := d.bottom.Load()
	if t >= b {
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t = d.top.Load()
	b = d.bottom.Load()
	if t >= b {
		return nil, false
	}

	h := d.buf[t&d.mask]
	if !d.top.CompareAndSwap(t, t+1) {
		return nil, false
	}
	return h, true
}

// size returns the approximate number of queued tasks.
func (d *deque) size() int {
	n := d.bottom.Load() - d.top.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// grow doubles the ring buffer. Called by the owner from pushBottom; the
// lock keeps stealers from reading the buffer mid-copy.
func (d *deque) grow(b int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.top.Load()
	if b-t < int64(len(d.buf)) {
		return
	}
	next := make([]*Handle, len(d.buf)*2)
	nextMask := int64(len(next) - 1)
	for i := t; i < b; i++ {
		next[i&nextMask] = d.buf[i&d.mask]
	}
	d.buf = next
	d.mask = nextMask
}
