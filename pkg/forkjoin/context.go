package forkjoin

import (
	"context"
	"time"
)

// Context is passed to every Compute invocation. It embeds the submission
// context.Context for deadline and cancellation propagation, and carries
// the executing worker, which is what makes Fork and Join possible: forked
// subtasks go onto the current worker's own deque, and a joining worker
// executes other available work instead of blocking.
//
// A Context is only valid for the duration of the Compute call it was
// passed to, on the goroutine that received it.
type Context struct {
	// Context is the context the root task was submitted with. Forked
	// subtasks inherit it.
	context.Context

	pool   *pool
	worker *worker
}

// Fork schedules t for asynchronous execution and returns its handle.
// Fork never blocks; the subtask is pushed onto the current worker's deque
// and becomes visible to stealers immediately. The caller keeps only the
// handle; ownership of the subtask transfers to the pool.
func (fc *Context) Fork(t Task) *Handle {
	h := newHandle(fc.pool, fc.Context, t)
	fc.worker.deque.pushBottom(h)
	fc.pool.totalForked.Add(1)
	if fc.pool.config.OnFork != nil {
		fc.pool.config.OnFork(fc.worker.id, h)
	}
	fc.pool.signalWork()
	return h
}

// Join waits for a previously forked task to reach a terminal state and
// returns its terminal error. While waiting, the worker executes other
// available work: its own remaining local tasks first, then steals from
// peers. It parks only when no work exists anywhere, to be woken by the
// awaited task's completion or by new work arriving. Join returns the
// submission context's error if that context is cancelled first.
func (fc *Context) Join(h *Handle) error {
	backoff := idleSleepMin
	for {
		select {
		case <-h.done:
			return h.err
		default:
		}

		if next, ok := fc.worker.findWork(); ok {
			fc.worker.runTask(next)
			backoff = idleSleepMin
			continue
		}

		select {
		case <-h.done:
			return h.err
		case <-fc.Done():
			return fc.Err()
		case <-fc.pool.wake:
		case <-time.After(backoff):
			backoff *= 2
			if backoff > idleSleepMax {
				backoff = idleSleepMax
			}
		}
	}
}

// InvokeAll forks all tasks but the last, executes the last inline (saving
// one scheduling round-trip), then joins the rest. It returns only when
// every task is terminal, and reports the first error encountered in
// argument order. Tasks after a failed sibling still run to completion;
// there is no implicit fail-fast cancellation.
func (fc *Context) InvokeAll(tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}

	handles := make([]*Handle, len(tasks)-1)
	for i, t := range tasks[:len(tasks)-1] {
		handles[i] = fc.Fork(t)
	}

	last := newHandle(fc.pool, fc.Context, tasks[len(tasks)-1])
	fc.worker.runTask(last)

	var first error
	for _, h := range handles {
		if err := fc.Join(h); err != nil && first == nil {
			first = err
		}
	}
	if err := last.Err(); err != nil && first == nil {
		first = err
	}
	return first
}

// Invoke runs t to completion from inside another task, using the same
// execute-while-waiting discipline as Join. It is the in-worker
// counterpart to Pool.Invoke.
func (fc *Context) Invoke(t Task) error {
	return fc.Join(fc.Fork(t))
}

// Worker returns the id of the worker executing the current task. Useful
// for sharding worker-local state.
func (fc *Context) Worker() int {
	return fc.worker.id
}
