/*
Package forkjoin implements a fork/join scheduler for CPU-bound
divide-and-conquer workloads.

A Pool owns a fixed set of workers. Each worker has its own double-ended
work queue: the worker pushes and pops forked subtasks at one end (LIFO,
keeping the recursion depth-first and cache-hot), while idle workers steal
the oldest tasks from the other end (FIFO, taking the largest available
units of work). No global scheduler lock exists; coordination is localized
to the two ends of each deque.

Tasks implement a single method:

	type Task interface {
		Compute(fc *Context) error
	}

Inside Compute, the Context provides Fork, Join and InvokeAll. A task below
its sequential cutoff computes directly; above it, it forks subtasks and
joins their results:

	type sumTask struct {
		nums []int
		sum  int
	}

	func (s *sumTask) Compute(fc *forkjoin.Context) error {
		if len(s.nums) <= 500 {
			for _, n := range s.nums {
				s.sum += n
			}
			return nil
		}
		mid := len(s.nums) / 2
		left := &sumTask{nums: s.nums[:mid]}
		right := &sumTask{nums: s.nums[mid:]}
		if err := fc.InvokeAll(left, right); err != nil {
			return err
		}
		s.sum = left.sum + right.sum
		return nil
	}

Join is cooperative: a worker waiting for a subtask executes other
available work (its own queue first, then steals) instead of blocking, so
deep join chains never starve the pool. Only when no work exists anywhere
does the worker park, to be woken by the awaited task's completion or by
new work arriving.

Task errors never crash a worker. An error (or recovered panic) from
Compute becomes the task's Failed state and is returned to any joiner;
sibling tasks are unaffected. A failed task that nobody joins is silent by
design; use Handle.Done or Handle.Err to observe fire-and-forget failures.

The typed layer in future.go (Go, Future, Invoke) wraps this machinery for
computations that produce a result.
*/
package forkjoin
