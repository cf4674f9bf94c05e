/*
Package forkjoin provides a fork/join task scheduler for CPU-bound
divide-and-conquer workloads, built on per-worker work-stealing deques.

Core (pkg/forkjoin):
  - Pool: fixed set of workers, each owning a double-ended work queue
  - Task: recursive computations that fork subtasks and join their results
  - Future: typed result handles for forked computations

Supporting packages:
  - parallel: helpers over integer ranges (For, Reduce, Map, Do)
  - scheduler: cron and interval-based submission into a pool
  - memo: Redis-backed memoization of expensive computation results
  - metrics: Prometheus instrumentation for pools

Example usage:

	import (
		"github.com/vnykmshr/forkjoin/pkg/forkjoin"
		"github.com/vnykmshr/forkjoin/pkg/parallel"
	)

	pool := forkjoin.New(0) // workers = GOMAXPROCS
	defer pool.Shutdown()

	sum, err := parallel.Reduce(pool, 0, 4000, 500,
		func(lo, hi int) int {
			s := 0
			for i := lo; i < hi; i++ {
				s += i
			}
			return s
		},
		func(a, b int) int { return a + b },
	)
*/
package forkjoin
