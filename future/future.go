// Package future provides a single-assignment asynchronous result.
//
// Every proxy operation has an asynchronous form returning a *Future and a
// blocking form that waits on it. A Future is completed exactly once, either
// with a value or with an error; later completions are ignored. Any number of
// goroutines may wait on it or chain continuations to it.
//
// # Usage
//
//	f := future.Go(func() (int32, error) {
//	    return readLevel(ctx)
//	})
//	doubled := future.Then(f, func(v int32) (int32, error) { return v * 2, nil })
//
//	v, err := future.Block(ctx, doubled) // err is a *ua.StatusError
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/smnsjas/go-uaproxy/ua"
)

// ErrPanic is wrapped by the error of a future whose producer panicked.
var ErrPanic = errors.New("future producer panicked")

// Future is the eventual result of an asynchronous operation.
type Future[T any] struct {
	once   sync.Once
	doneCh chan struct{}

	value T
	err   error
}

// New returns a pending future.
func New[T any]() *Future[T] {
	return &Future[T]{doneCh: make(chan struct{})}
}

// Completed returns a future already completed with v.
func Completed[T any](v T) *Future[T] {
	f := New[T]()
	f.Complete(v)
	return f
}

// Failed returns a future already failed with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.Fail(err)
	return f
}

// Go runs fn on a new goroutine and returns a future for its result.
// A panic in fn fails the future with an error wrapping ErrPanic.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		v, err := call(fn)
		f.settle(v, err)
	}()
	return f
}

// Complete completes f with v. It reports whether this call completed f.
func (f *Future[T]) Complete(v T) bool {
	return f.settle(v, nil)
}

// Fail completes f with err. A nil err is replaced by a generic error so that
// a failed future never reports success. It reports whether this call
// completed f.
func (f *Future[T]) Fail(err error) bool {
	if err == nil {
		err = errors.New("future failed without error")
	}
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		settled = true
		close(f.doneCh)
	})
	return settled
}

// Done returns a channel closed when f completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.doneCh
}

// IsDone reports whether f has completed.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.doneCh:
		return true
	default:
		return false
	}
}

// Wait blocks until f completes and returns its outcome.
func (f *Future[T]) Wait() (T, error) {
	<-f.doneCh
	return f.value, f.err
}

// Await blocks until f completes or ctx is done. Cancelling ctx abandons the
// wait only; the underlying operation is not cancelled.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.doneCh:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a future completed with fn applied to the value of f. If f
// fails, fn is not called and the returned future fails with the same error.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := New[U]()
	go func() {
		v, err := f.Wait()
		if err != nil {
			out.Fail(err)
			return
		}
		u, err := call(func() (U, error) { return fn(v) })
		out.settle(u, err)
	}()
	return out
}

// Compose is like Then for continuations that are themselves asynchronous.
func Compose[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := New[U]()
	go func() {
		v, err := f.Wait()
		if err != nil {
			out.Fail(err)
			return
		}
		next, err := call(func() (*Future[U], error) { return fn(v), nil })
		if err != nil {
			out.Fail(err)
			return
		}
		if next == nil {
			out.Fail(errors.New("compose: continuation returned nil future"))
			return
		}
		u, err := next.Wait()
		out.settle(u, err)
	}()
	return out
}

// Block waits for f and translates any failure into a *ua.StatusError.
// It is the single bridge from asynchronous to blocking call style: a status
// fault anywhere in the error chain surfaces unchanged, any other failure
// (including cancellation of ctx) surfaces as Bad_UnexpectedError with the
// failure as its cause.
func Block[T any](ctx context.Context, f *Future[T]) (T, error) {
	v, err := f.Await(ctx)
	if err != nil {
		var zero T
		return zero, ua.Translate(err)
	}
	return v, nil
}

func call[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}
