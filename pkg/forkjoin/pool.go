package forkjoin

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	fjerrors "github.com/vnykmshr/forkjoin/pkg/common/errors"
	"github.com/vnykmshr/forkjoin/pkg/common/validation"
)

// Pool executes fork/join tasks on a fixed set of workers. Membership is
// immutable for the pool's lifetime; lifecycle is owned by the creator and
// ends with an explicit Shutdown or ShutdownNow.
type Pool interface {
	// Submit queues a root task for execution and returns its handle.
	// Submission never blocks. Returns ErrPoolClosed after shutdown.
	Submit(task Task) (*Handle, error)

	// SubmitWithContext queues a root task with the given context. The
	// context is visible to Compute through the task's Context and is
	// inherited by forked subtasks; a task whose context is cancelled
	// before it starts is cancelled instead of run.
	SubmitWithContext(ctx context.Context, task Task) (*Handle, error)

	// Invoke submits task and blocks until it is terminal, returning its
	// terminal error, or ctx.Err() if the wait is interrupted. Inside a
	// running task use Context.Invoke instead, which executes other work
	// while waiting.
	Invoke(ctx context.Context, task Task) error

	// Shutdown requests a graceful stop: no new submissions are accepted
	// and workers finish all queued work before terminating. The returned
	// channel closes when every worker has stopped. Idempotent; repeated
	// calls return the same channel.
	Shutdown() <-chan struct{}

	// ShutdownNow requests an immediate stop: no new submissions are
	// accepted, queued tasks are marked Cancelled without running, and
	// workers terminate after their current task. Not preemptive; a task
	// mid-Compute runs to completion. Idempotent.
	ShutdownNow() <-chan struct{}

	// Quiescent reports whether no task anywhere in the pool is pending
	// or running.
	Quiescent() bool

	// Size returns the number of workers.
	Size() int

	// QueueSize returns the number of externally submitted tasks not yet
	// claimed by a worker. Advisory.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing a
	// task. Advisory.
	ActiveWorkers() int

	// Stats returns a snapshot of the pool's counters.
	Stats() Stats
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Submitted int64 // root tasks accepted by Submit
	Forked    int64 // subtasks created by Fork
	Executed  int64 // tasks whose Compute ran
	Completed int64 // tasks that finished without error
	Failed    int64 // tasks whose Compute returned an error or panicked
	Cancelled int64 // tasks cancelled before execution
	Stolen    int64 // tasks taken from another worker's deque

	// WorkerExecuted holds per-worker execution counts, indexed by worker
	// id. Useful for observing load distribution.
	WorkerExecuted []int64
}

// Config holds configuration options for creating a pool.
type Config struct {
	// WorkerCount is the number of workers. Zero selects GOMAXPROCS.
	WorkerCount int

	// DrainOnShutdown selects the behavior of Shutdown for queued work:
	// true (the default via New) finishes it, false abandons it as
	// Cancelled. ShutdownNow always abandons.
	DrainOnShutdown bool

	// PanicHandler is called when a task panics during Compute, before
	// the panic is recorded as the task's Failed state.
	PanicHandler func(task Task, recovered interface{})

	// OnWorkerStart is called when a worker starts.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker stops.
	OnWorkerStop func(workerID int)

	// OnTaskStart is called before a task begins execution.
	OnTaskStart func(workerID int, h *Handle)

	// OnTaskComplete is called after a task reaches a terminal state via
	// execution, with the time Compute took.
	OnTaskComplete func(workerID int, h *Handle, d time.Duration)

	// OnFork is called when a running task forks a subtask.
	OnFork func(workerID int, h *Handle)

	// OnSteal is called when a worker steals a task from a peer.
	OnSteal func(workerID int)
}

// pool implements the Pool interface.
type pool struct {
	config  Config
	workers []*worker
	queue   *submitQueue

	wake       chan struct{}
	shutdownCh chan struct{}
	doneCh     chan struct{}
	stopOnce   sync.Once
	abandon    atomic.Bool
	workerWg   sync.WaitGroup

	inFlight       atomic.Int64
	totalSubmitted atomic.Int64
	totalForked    atomic.Int64
	totalExecuted  atomic.Int64
	totalCompleted atomic.Int64
	totalFailed    atomic.Int64
	totalCancelled atomic.Int64
	totalStolen    atomic.Int64
	stealAttempts  atomic.Int64
}

// New creates a pool with workerCount workers and the default
// configuration (graceful shutdown drains queued work). A workerCount of
// zero or less selects GOMAXPROCS.
func New(workerCount int) Pool {
	if workerCount < 0 {
		workerCount = 0
	}
	p, err := NewWithConfig(Config{WorkerCount: workerCount, DrainOnShutdown: true})
	if err != nil {
		// Unreachable: the default configuration always validates.
		panic(err)
	}
	return p
}

// NewWithConfig creates a pool with the given configuration. A
// WorkerCount of zero selects GOMAXPROCS; a negative count is rejected.
func NewWithConfig(config Config) (Pool, error) {
	if config.WorkerCount == 0 {
		config.WorkerCount = runtime.GOMAXPROCS(0)
	}
	if err := validation.ValidatePositive("forkjoin", "workers", config.WorkerCount); err != nil {
		return nil, err
	}

	p := &pool{
		config:     config,
		queue:      newSubmitQueue(),
		wake:       make(chan struct{}, 1),
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	p.workers = make([]*worker, config.WorkerCount)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}
	for _, w := range p.workers {
		p.workerWg.Add(1)
		go w.run()
	}
	return p, nil
}

// Submit queues a root task for execution.
func (p *pool) Submit(task Task) (*Handle, error) {
	return p.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext queues a root task with the given context.
func (p *pool) SubmitWithContext(ctx context.Context, task Task) (*Handle, error) {
	if err := validation.ValidateNotNil("forkjoin", "task", task); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cannot submit task: %w", err)
	}

	h := newHandle(p, ctx, task)
	if !p.queue.push(h) {
		h.cancel(fjerrors.ErrPoolClosed)
		return nil, fmt.Errorf("cannot submit task: %w", fjerrors.ErrPoolClosed)
	}
	p.totalSubmitted.Add(1)
	p.signalWork()
	return h, nil
}

// Invoke submits task and waits for its terminal state.
func (p *pool) Invoke(ctx context.Context, task Task) error {
	if ctx == nil {
		ctx = context.Background()
	}
	h, err := p.SubmitWithContext(ctx, task)
	if err != nil {
		return err
	}
	return h.Wait(ctx)
}

// Shutdown initiates a graceful stop, honoring DrainOnShutdown.
func (p *pool) Shutdown() <-chan struct{} {
	return p.stop(!p.config.DrainOnShutdown)
}

// ShutdownNow initiates an immediate stop, abandoning queued work.
func (p *pool) ShutdownNow() <-chan struct{} {
	return p.stop(true)
}

// stop runs the shutdown sequence once; later calls observe the first
// caller's mode and share the same completion channel.
func (p *pool) stop(abandon bool) <-chan struct{} {
	p.stopOnce.Do(func() {
		p.abandon.Store(abandon)
		remaining := p.queue.close()
		if abandon {
			for _, h := range remaining {
				h.TryCancel()
			}
		} else {
			// Workers drain these through findWork before exiting.
			p.queue.restore(remaining)
		}
		close(p.shutdownCh)

		go func() {
			p.workerWg.Wait()
			close(p.doneCh)
		}()
	})
	return p.doneCh
}

// Quiescent reports whether no task in the pool is pending or running.
func (p *pool) Quiescent() bool {
	return p.inFlight.Load() == 0
}

// Size returns the number of workers.
func (p *pool) Size() int {
	return len(p.workers)
}

// QueueSize returns the number of unclaimed external submissions.
func (p *pool) QueueSize() int {
	return p.queue.len()
}

// ActiveWorkers returns the number of workers currently executing a task.
func (p *pool) ActiveWorkers() int {
	n := 0
	for _, w := range p.workers {
		if w.state.Load() == workerRunning {
			n++
		}
	}
	return n
}

// Stats returns a snapshot of the pool's counters.
func (p *pool) Stats() Stats {
	s := Stats{
		Submitted:      p.totalSubmitted.Load(),
		Forked:         p.totalForked.Load(),
		Executed:       p.totalExecuted.Load(),
		Completed:      p.totalCompleted.Load(),
		Failed:         p.totalFailed.Load(),
		Cancelled:      p.totalCancelled.Load(),
		Stolen:         p.totalStolen.Load(),
		WorkerExecuted: make([]int64, len(p.workers)),
	}
	for i, w := range p.workers {
		s.WorkerExecuted[i] = w.executed.Load()
	}
	return s
}

// taskDone records a terminal transition. Called exactly once per handle.
func (p *pool) taskDone(h *Handle) {
	switch h.State() {
	case StateCompleted:
		p.totalCompleted.Add(1)
	case StateFailed:
		p.totalFailed.Add(1)
	case StateCancelled:
		p.totalCancelled.Add(1)
	}
	p.inFlight.Add(-1)
}

// signalWork nudges one parked worker. Lost signals are tolerable; parked
// workers also wake on a bounded timer.
func (p *pool) signalWork() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// submitQueue is the external submission queue, drained opportunistically
// by workers that find no local or stealable work. A plain locked FIFO is
// enough here: it is only touched when a worker is otherwise idle, so it
// is never the contention point the deques are.
type submitQueue struct {
	mu     sync.Mutex
	items  []*Handle
	closed bool
}

func newSubmitQueue() *submitQueue {
	return &submitQueue{}
}

// push appends h. Returns false once the queue is closed.
func (q *submitQueue) push(h *Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, h)
	return true
}

// pop removes the oldest submission.
func (q *submitQueue) pop() (*Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	h := q.items[0]
	q.items = q.items[1:]
	return h, true
}

// close rejects further submissions and returns whatever was queued.
func (q *submitQueue) close() []*Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	remaining := q.items
	q.items = nil
	return remaining
}

// restore puts drained items back for workers to finish. Only used by the
// graceful shutdown path, after close.
func (q *submitQueue) restore(items []*Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(items, q.items...)
}

func (q *submitQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
