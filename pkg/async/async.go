package async

import (
	"context"
	"fmt"
	"time"
)

// Future is the eventual result of a function started with Go.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Go runs fn in its own goroutine. A positive timeout bounds fn's context;
// a panic in fn is recovered and reported as ErrPanic.
func Go[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		f.result, f.err = fn(ctx)
	}()
	return f
}

// Await blocks until the function returns.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// Done reports whether the function has returned without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Settled is one future's outcome.
type Settled[T any] struct {
	Value T
	Err   error
}

// Settle waits for every future. One failure never hides the others'
// results; outcomes keep the order of futures.
func Settle[T any](futures ...*Future[T]) []Settled[T] {
	out := make([]Settled[T], len(futures))
	for i, f := range futures {
		out[i].Value, out[i].Err = f.Await()
	}
	return out
}
