package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/forkjoin/pkg/forkjoin"
	"github.com/vnykmshr/forkjoin/pkg/parallel"
)

// fibTask computes fibonacci naively to exercise deep, unbalanced
// recursion through the deques.
type fibTask struct {
	n      int
	cutoff int
	result int64
}

func seqFib(n int) int64 {
	if n < 2 {
		return int64(n)
	}
	return seqFib(n-1) + seqFib(n-2)
}

func (t *fibTask) Compute(fc *forkjoin.Context) error {
	if t.n <= t.cutoff {
		t.result = seqFib(t.n)
		return nil
	}

	left := &fibTask{n: t.n - 1, cutoff: t.cutoff}
	right := &fibTask{n: t.n - 2, cutoff: t.cutoff}
	if err := fc.InvokeAll(left, right); err != nil {
		return err
	}
	t.result = left.result + right.result
	return nil
}

// TestDeepRecursionSmallPools verifies that deeply recursive unbalanced
// workloads complete correctly even with very few workers, where join
// starvation would deadlock a blocking implementation.
func TestDeepRecursionSmallPools(t *testing.T) {
	want := seqFib(24)
	for _, workers := range []int{1, 2, 3} {
		pool := forkjoin.New(workers)

		root := &fibTask{n: 24, cutoff: 8}
		if err := pool.Invoke(context.Background(), root); err != nil {
			t.Fatalf("workers=%d: invoke failed: %v", workers, err)
		}
		if root.result != want {
			t.Errorf("workers=%d: fib(24) = %d, want %d", workers, root.result, want)
		}

		<-pool.Shutdown()
	}
}

// TestShutdownUnderLoad submits work from many goroutines while shutting
// down, verifying every submission either completes or reports a closed
// pool, with nothing lost or hung.
func TestShutdownUnderLoad(t *testing.T) {
	pool := forkjoin.New(4)

	var completed, rejected int64
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				h, err := pool.Submit(forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
					time.Sleep(time.Millisecond)
					return nil
				}))
				if err != nil {
					atomic.AddInt64(&rejected, 1)
					return
				}
				if err := h.Wait(context.Background()); err == nil {
					atomic.AddInt64(&completed, 1)
				}
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	done := pool.Shutdown()
	close(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete under load")
	}
	wg.Wait()

	if atomic.LoadInt64(&completed) == 0 {
		t.Error("expected some tasks to complete before shutdown")
	}
	t.Logf("completed=%d rejected=%d", completed, rejected)
}

// TestParallelAcrossPools runs independent reductions on separate pools
// concurrently, checking results stay isolated per pool.
func TestParallelAcrossPools(t *testing.T) {
	const n = 100_000
	want := int64(n) * int64(n-1) / 2

	var wg sync.WaitGroup
	errs := make([]error, 4)
	sums := make([]int64, 4)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pool := forkjoin.New(2)
			defer func() { <-pool.Shutdown() }()

			sums[i], errs[i] = parallel.Reduce(pool, 0, n, 512,
				func(lo, hi int) int64 {
					var s int64
					for j := lo; j < hi; j++ {
						s += int64(j)
					}
					return s
				},
				func(a, b int64) int64 { return a + b },
			)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		if errs[i] != nil {
			t.Errorf("pool %d: %v", i, errs[i])
		}
		if sums[i] != want {
			t.Errorf("pool %d: sum = %d, want %d", i, sums[i], want)
		}
	}
}
