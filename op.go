package stowgate

import (
	"context"
	"fmt"
	"sync"
)

// Op is a storage operation running on its own goroutine. The caller waits on
// Done and must call Release exactly once; extra calls are no-ops.
type Op[T any] struct {
	done     chan struct{}
	val      T
	err      error
	cancel   context.CancelFunc
	released sync.Once
}

// Start runs fn asynchronously. The context handed to fn is cancelled on Release.
func Start[T any](ctx context.Context, fn func(context.Context) (T, error)) *Op[T] {
	ctx, cancel := context.WithCancel(ctx)
	op := &Op[T]{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(op.done)
		op.val, op.err = fn(ctx)
	}()

	return op
}

// Done is closed once the operation has completed.
func (o *Op[T]) Done() <-chan struct{} {
	return o.done
}

// Result blocks until the operation completes and returns its outcome.
func (o *Op[T]) Result() (T, error) {
	<-o.done
	return o.val, o.err
}

// Release frees the operation handle, cancelling it if it is still running.
func (o *Op[T]) Release() {
	o.released.Do(o.cancel)
}

// await waits for op or for ctx to end, whichever comes first, and releases op.
// A finished ctx is reported as ErrPeerGone.
func await[T any](ctx context.Context, op *Op[T]) (T, error) {
	defer op.Release()

	select {
	case <-op.Done():
		return op.Result()
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrPeerGone, context.Cause(ctx))
	}
}
