package parallel

import (
	"context"

	"github.com/vnykmshr/forkjoin/pkg/forkjoin"
)

// Do executes the given thunks in parallel on p and returns the first
// error in argument order, after all thunks have finished. No thunk is
// cancelled because a sibling failed.
func Do(p forkjoin.Pool, thunks ...func() error) error {
	if len(thunks) == 0 {
		return nil
	}
	tasks := make([]forkjoin.Task, len(thunks))
	for i, thunk := range thunks {
		thunk := thunk
		tasks[i] = forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
			return thunk()
		})
	}
	return p.Invoke(context.Background(), forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
		return fc.InvokeAll(tasks...)
	}))
}

// For executes body(i) for every i in [lo, hi), splitting the range into
// grain-sized pieces that run in parallel. Iterations must not depend on
// each other; body runs concurrently with itself on different indices.
func For(p forkjoin.Pool, lo, hi, grain int, body func(i int)) error {
	if lo >= hi {
		return nil
	}
	grain = normalizeGrain(grain)
	return p.Invoke(context.Background(), &forTask{lo: lo, hi: hi, grain: grain, body: body})
}

type forTask struct {
	lo, hi, grain int
	body          func(i int)
}

func (t *forTask) Compute(fc *forkjoin.Context) error {
	if t.hi-t.lo <= t.grain {
		for i := t.lo; i < t.hi; i++ {
			t.body(i)
		}
		return nil
	}
	mid := t.lo + (t.hi-t.lo)/2
	return fc.InvokeAll(
		&forTask{lo: t.lo, hi: mid, grain: t.grain, body: t.body},
		&forTask{lo: mid, hi: t.hi, grain: t.grain, body: t.body},
	)
}

// Reduce computes leaf over grain-sized subranges of [lo, hi) in parallel
// and folds the partial results with combine, in range order. An empty
// range yields the zero value of R.
func Reduce[R any](p forkjoin.Pool, lo, hi, grain int, leaf func(lo, hi int) R, combine func(a, b R) R) (R, error) {
	if lo >= hi {
		var zero R
		return zero, nil
	}
	grain = normalizeGrain(grain)

	var descend func(fc *forkjoin.Context, lo, hi int) (R, error)
	descend = func(fc *forkjoin.Context, lo, hi int) (R, error) {
		if hi-lo <= grain {
			return leaf(lo, hi), nil
		}
		mid := lo + (hi-lo)/2
		left := forkjoin.Go(fc, func(fc *forkjoin.Context) (R, error) {
			return descend(fc, lo, mid)
		})
		// Compute the right half inline while the left is stealable.
		b, err := descend(fc, mid, hi)
		if err != nil {
			var zero R
			return zero, err
		}
		a, err := left.Join(fc)
		if err != nil {
			var zero R
			return zero, err
		}
		return combine(a, b), nil
	}

	return forkjoin.InvokeFunc(context.Background(), p, func(fc *forkjoin.Context) (R, error) {
		return descend(fc, lo, hi)
	})
}

// Map applies fn to every element of in and returns the transformed
// slice, processing grain-sized pieces in parallel.
func Map[T, R any](p forkjoin.Pool, in []T, grain int, fn func(T) R) ([]R, error) {
	out := make([]R, len(in))
	err := For(p, 0, len(in), grain, func(i int) {
		out[i] = fn(in[i])
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeGrain(grain int) int {
	if grain < 1 {
		return 1
	}
	return grain
}
