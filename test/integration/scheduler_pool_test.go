package integration

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/forkjoin/internal/testutil"
	"github.com/vnykmshr/forkjoin/pkg/forkjoin"
	"github.com/vnykmshr/forkjoin/pkg/scheduler"
)

// TestSchedulerFeedsForkJoinPool drives the scheduler against a shared
// pool and verifies scheduled tasks can themselves fork subtasks.
func TestSchedulerFeedsForkJoinPool(t *testing.T) {
	pool := forkjoin.New(4)
	defer func() { <-pool.Shutdown() }()

	sched := scheduler.NewWithConfig(scheduler.Config{
		Pool:         pool,
		TickInterval: 10 * time.Millisecond,
	})
	defer func() { <-sched.Stop() }()

	if err := sched.Start(); err != nil {
		t.Fatal(err)
	}

	var leaves int32
	forked := forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
		return fc.InvokeAll(
			forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
				atomic.AddInt32(&leaves, 1)
				return nil
			}),
			forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
				atomic.AddInt32(&leaves, 1)
				return nil
			}),
		)
	})

	if err := sched.ScheduleRepeating("fanout", forked, 25*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	testutil.Eventually(t, func() bool {
		return atomic.LoadInt32(&leaves) >= 6
	}, 2*time.Second, 20*time.Millisecond)

	sched.Cancel("fanout")
	if !pool.Quiescent() {
		// In-flight entries may still be draining right after cancel.
		testutil.Eventually(t, pool.Quiescent, time.Second, 10*time.Millisecond)
	}
}

// TestSchedulerStopLeavesSharedPoolUsable stops a scheduler built on a
// caller-owned pool and checks the pool still accepts work afterwards.
func TestSchedulerStopLeavesSharedPoolUsable(t *testing.T) {
	pool := forkjoin.New(2)
	defer func() { <-pool.Shutdown() }()

	sched := scheduler.NewWithConfig(scheduler.Config{Pool: pool})
	if err := sched.Start(); err != nil {
		t.Fatal(err)
	}
	<-sched.Stop()

	var ran int32
	h, err := pool.Submit(forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}))
	testutil.AssertNoError(t, err)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	testutil.AssertNoError(t, h.Wait(ctx))
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(1))
}
