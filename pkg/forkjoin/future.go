package forkjoin

import (
	"context"
)

// Future is a typed handle for a forked computation that produces a
// result. The zero value is not usable; create futures with Go or
// Submit-side helpers like InvokeFunc.
type Future[R any] struct {
	handle *Handle

	// result is written by the computing worker before the handle turns
	// terminal; readers must go through Join or Wait.
	result R
}

// Go forks fn as a subtask of the current computation and returns a
// future for its result. Like Fork, it never blocks.
func Go[R any](fc *Context, fn func(fc *Context) (R, error)) *Future[R] {
	f := &Future[R]{}
	f.handle = fc.Fork(TaskFunc(func(fc *Context) error {
		r, err := fn(fc)
		if err != nil {
			return err
		}
		f.result = r
		return nil
	}))
	return f
}

// Join waits for the computation with the execute-while-waiting
// discipline and returns its result, or the error it failed with.
func (f *Future[R]) Join(fc *Context) (R, error) {
	if err := fc.Join(f.handle); err != nil {
		var zero R
		return zero, err
	}
	return f.result, nil
}

// Wait blocks until the computation is terminal and returns its result.
// For callers outside the pool; workers use Join.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	if err := f.handle.Wait(ctx); err != nil {
		var zero R
		return zero, err
	}
	return f.result, nil
}

// Done returns a channel that closes when the computation is terminal.
func (f *Future[R]) Done() <-chan struct{} {
	return f.handle.Done()
}

// Handle returns the untyped handle backing this future.
func (f *Future[R]) Handle() *Handle {
	return f.handle
}

// Submit queues fn as a root computation on p and returns its future.
func Submit[R any](p Pool, fn func(fc *Context) (R, error)) (*Future[R], error) {
	return SubmitWithContext(context.Background(), p, fn)
}

// SubmitWithContext queues fn as a root computation with the given
// context and returns its future.
func SubmitWithContext[R any](ctx context.Context, p Pool, fn func(fc *Context) (R, error)) (*Future[R], error) {
	f := &Future[R]{}
	h, err := p.SubmitWithContext(ctx, TaskFunc(func(fc *Context) error {
		r, err := fn(fc)
		if err != nil {
			return err
		}
		f.result = r
		return nil
	}))
	if err != nil {
		return nil, err
	}
	f.handle = h
	return f, nil
}

// InvokeFunc submits fn as a root computation and blocks until its result
// is available.
func InvokeFunc[R any](ctx context.Context, p Pool, fn func(fc *Context) (R, error)) (R, error) {
	f, err := SubmitWithContext(ctx, p, fn)
	if err != nil {
		var zero R
		return zero, err
	}
	return f.Wait(ctx)
}
