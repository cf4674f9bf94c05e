package forkjoin

import (
	"context"
	"sync/atomic"

	fjerrors "github.com/vnykmshr/forkjoin/pkg/common/errors"
)

// Handle is the join barrier for a submitted or forked task: a one-shot
// completion cell set exactly once and observable by any number of
// waiters. After the handle reaches a terminal state it is immutable and
// safe for concurrent reads.
type Handle struct {
	task  Task
	pool  *pool
	ctx   context.Context
	state atomic.Int32

	// err is written at most once, before done is closed. Readers must
	// only access it after observing done closed.
	err  error
	done chan struct{}
}

func newHandle(p *pool, ctx context.Context, task Task) *Handle {
	h := &Handle{
		task: task,
		pool: p,
		ctx:  ctx,
		done: make(chan struct{}),
	}
	p.inFlight.Add(1)
	return h
}

// State returns the task's current lifecycle state. The value is advisory
// for non-terminal states; terminal states are stable.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Done returns a channel that is closed when the task reaches a terminal
// state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the task's terminal error: nil if the task completed, the
// Compute error if it failed, or ErrTaskCancelled if it was cancelled.
// It returns nil while the task is still pending or running.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the task is terminal or ctx is cancelled. It returns
// the task's terminal error, or ctx.Err() if the wait itself was
// interrupted. Workers must not call Wait from inside Compute; use
// Context.Join, which executes other work while waiting.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryCancel cancels the task if it has not started. It returns true if
// this call performed the cancellation. A task already running is not
// preempted; cancellation is cooperative.
func (h *Handle) TryCancel() bool {
	return h.cancel(fjerrors.ErrTaskCancelled)
}

// cancel moves a pending task directly to Cancelled with the given error.
func (h *Handle) cancel(err error) bool {
	if !h.state.CompareAndSwap(int32(StatePending), int32(StateCancelled)) {
		return false
	}
	h.err = err
	h.pool.taskDone(h)
	close(h.done)
	return true
}

// start claims the handle for execution. Exactly one of start and cancel
// succeeds for any handle.
func (h *Handle) start() bool {
	return h.state.CompareAndSwap(int32(StatePending), int32(StateRunning))
}

// finish records the outcome of Compute and releases all waiters. The
// in-flight count is settled before done closes so that a caller woken by
// Wait observes the pool quiescent.
func (h *Handle) finish(err error) {
	if err != nil {
		h.err = err
		h.state.Store(int32(StateFailed))
	} else {
		h.state.Store(int32(StateCompleted))
	}
	h.pool.taskDone(h)
	close(h.done)
}
