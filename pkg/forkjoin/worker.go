package forkjoin

import (
	"fmt"
	"math/rand"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Worker lifecycle states, advisory values for observability.
const (
	workerIdle int32 = iota
	workerRunning
	workerStealing
	workerShutdown
)

// Backoff bounds for workers that found no work anywhere. The delay grows
// geometrically between these bounds so a globally idle pool does not
// busy-spin a CPU.
const (
	idleSleepMin = 50 * time.Microsecond
	idleSleepMax = 2 * time.Millisecond
)

// worker is one scheduling loop with its own deque. Only the owning
// goroutine pushes and pops the deque's bottom end; peers steal from the
// top end.
type worker struct {
	id    int
	pool  *pool
	deque taskDeque
	rng   *rand.Rand
	state atomic.Int32

	executed atomic.Int64
	stolen   atomic.Int64
}

func newWorker(id int, p *pool) *worker {
	return &worker{
		id:    id,
		pool:  p,
		deque: newDeque(),
		rng:   rand.New(rand.NewSource(int64(id) ^ rand.Int63())),
	}
}

// run is the main scheduling loop: execute local work, steal when the
// local deque is empty, drain the external queue, and park with bounded
// backoff when the pool is globally idle. Shutdown is observed between
// task executions, never mid-task.
func (w *worker) run() {
	defer w.pool.workerWg.Done()

	if w.pool.config.OnWorkerStart != nil {
		w.pool.config.OnWorkerStart(w.id)
	}
	defer func() {
		w.state.Store(workerShutdown)
		if w.pool.config.OnWorkerStop != nil {
			w.pool.config.OnWorkerStop(w.id)
		}
	}()

	backoff := idleSleepMin
	for {
		select {
		case <-w.pool.shutdownCh:
			w.terminate()
			return
		default:
		}

		if h, ok := w.findWork(); ok {
			w.runTask(h)
			backoff = idleSleepMin
			continue
		}

		w.state.Store(workerIdle)
		select {
		case <-w.pool.wake:
		case <-w.pool.shutdownCh:
			w.terminate()
			return
		case <-time.After(backoff):
			backoff *= 2
			if backoff > idleSleepMax {
				backoff = idleSleepMax
			}
		}
	}
}

// terminate finishes the loop according to the shutdown mode: graceful
// shutdown drains all reachable work, immediate shutdown cancels it.
func (w *worker) terminate() {
	if w.pool.abandon.Load() {
		for {
			h, ok := w.deque.popBottom()
			if !ok {
				break
			}
			h.TryCancel()
		}
		return
	}
	for {
		h, ok := w.findWork()
		if !ok {
			return
		}
		w.runTask(h)
	}
}

// findWork locates the next runnable task: the worker's own deque first
// (LIFO, cache-hot), then a steal sweep over peers, then the external
// submission queue.
func (w *worker) findWork() (*Handle, bool) {
	if h, ok := w.deque.popBottom(); ok {
		return h, true
	}
	if h, ok := w.steal(); ok {
		return h, true
	}
	if h, ok := w.pool.queue.pop(); ok {
		return h, true
	}
	return nil, false
}

// steal sweeps all peers once, starting at a random victim so stealers do
// not converge on one deque.
func (w *worker) steal() (*Handle, bool) {
	peers := w.pool.workers
	if len(peers) < 2 {
		return nil, false
	}
	w.state.Store(workerStealing)
	start := w.rng.Intn(len(peers))
	for i := 0; i < len(peers); i++ {
		victim := peers[(start+i)%len(peers)]
		if victim == w {
			continue
		}
		w.pool.stealAttempts.Add(1)
		if h, ok := victim.deque.stealTop(); ok {
			w.stolen.Add(1)
			w.pool.totalStolen.Add(1)
			if w.pool.config.OnSteal != nil {
				w.pool.config.OnSteal(w.id)
			}
			return h, true
		}
	}
	return nil, false
}

// runTask claims and executes a single task. Compute errors and panics
// become the task's Failed state; they never leave this function, so a
// failing task cannot take down its worker.
func (w *worker) runTask(h *Handle) {
	if h.ctx.Err() != nil {
		h.cancel(h.ctx.Err())
		return
	}
	if !h.start() {
		// Cancelled between queueing and execution.
		return
	}

	w.state.Store(workerRunning)
	w.executed.Add(1)
	w.pool.totalExecuted.Add(1)
	if w.pool.config.OnTaskStart != nil {
		w.pool.config.OnTaskStart(w.id, h)
	}

	start := time.Now()
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if w.pool.config.PanicHandler != nil {
					w.pool.config.PanicHandler(h.task, r)
				}
				err = fmt.Errorf("task panicked: %v\nStack trace:\n%s", r, debug.Stack())
			}
		}()
		err = h.task.Compute(&Context{Context: h.ctx, pool: w.pool, worker: w})
	}()

	h.finish(err)
	if w.pool.config.OnTaskComplete != nil {
		w.pool.config.OnTaskComplete(w.id, h, time.Since(start))
	}
}
