package forkjoin_test

import (
	"context"
	"fmt"
	"log"

	"github.com/vnykmshr/forkjoin/pkg/forkjoin"
)

// Example demonstrates submitting a task and waiting for it.
func Example() {
	pool := forkjoin.New(2)
	defer func() { <-pool.Shutdown() }()

	err := pool.Invoke(context.Background(), forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
		fmt.Println("task executed")
		return nil
	}))
	if err != nil {
		log.Printf("invoke failed: %v", err)
	}

	// Output: task executed
}

// rangeSum sums [lo, hi) by splitting until the range is small.
type rangeSum struct {
	lo, hi int
	sum    int64
}

func (t *rangeSum) Compute(fc *forkjoin.Context) error {
	if t.hi-t.lo <= 1000 {
		for i := t.lo; i < t.hi; i++ {
			t.sum += int64(i)
		}
		return nil
	}
	mid := t.lo + (t.hi-t.lo)/2
	left := &rangeSum{lo: t.lo, hi: mid}
	right := &rangeSum{lo: mid, hi: t.hi}
	if err := fc.InvokeAll(left, right); err != nil {
		return err
	}
	t.sum = left.sum + right.sum
	return nil
}

// Example_forkJoin demonstrates recursive divide-and-conquer with
// InvokeAll.
func Example_forkJoin() {
	pool := forkjoin.New(4)
	defer func() { <-pool.Shutdown() }()

	root := &rangeSum{lo: 0, hi: 100_000}
	if err := pool.Invoke(context.Background(), root); err != nil {
		log.Fatalf("invoke failed: %v", err)
	}
	fmt.Println(root.sum)

	// Output: 4999950000
}

// Example_futures demonstrates typed results with the generic Future
// helpers.
func Example_futures() {
	pool := forkjoin.New(2)
	defer func() { <-pool.Shutdown() }()

	answer, err := forkjoin.InvokeFunc(context.Background(), pool,
		func(fc *forkjoin.Context) (int, error) {
			return 6 * 7, nil
		})
	if err != nil {
		log.Fatalf("invoke failed: %v", err)
	}
	fmt.Println(answer)

	// Output: 42
}
