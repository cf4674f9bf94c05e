package forkjoin

// Task represents a unit of divide-and-conquer work.
//
// Compute is invoked exactly once, by exactly one worker. It may execute
// its base case directly, or fork subtasks through the Context and join
// their results. Choosing the sequential cutoff below which forking stops
// is the task author's responsibility; fork overhead outweighs parallelism
// for very small work units.
type Task interface {
	// Compute runs the task. The Context carries the executing worker and
	// the submission context, and provides Fork, Join and InvokeAll.
	Compute(fc *Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(fc *Context) error

// Compute implements the Task interface for TaskFunc.
func (f TaskFunc) Compute(fc *Context) error {
	return f(fc)
}

// State describes a task's position in its lifecycle. A task transitions
// to exactly one terminal state, exactly once; after that it is immutable.
type State int32

const (
	// StatePending means the task is queued and has not started.
	StatePending State = iota
	// StateRunning means a worker is executing the task's Compute.
	StateRunning
	// StateCompleted means Compute returned nil.
	StateCompleted
	// StateFailed means Compute returned an error or panicked.
	StateFailed
	// StateCancelled means the task was cancelled before it started.
	StateCancelled
)

// Terminal reports whether the state is one of the three final states.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
