package async

import (
	"context"
	"sync"
)

// Promise is a write-once cell: the first Resolve wins and every later call
// is a no-op. It is safe to resolve from any number of goroutines, which makes
// it suitable for racing a callback against a timer.
type Promise[U any] struct {
	once  sync.Once
	value U
	done  chan struct{}
}

// NewPromise creates an unresolved promise.
func NewPromise[U any]() *Promise[U] {
	return &Promise[U]{done: make(chan struct{})}
}

// Resolve settles the promise with v. It reports true only for the call that
// actually settled it.
func (p *Promise[U]) Resolve(v U) bool {
	settled := false
	p.once.Do(func() {
		p.value = v
		settled = true
		close(p.done)
	})
	return settled
}

// Done returns a channel closed once the promise is settled.
func (p *Promise[U]) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise has a value.
func (p *Promise[U]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Await blocks until the promise is settled or ctx is done.
func (p *Promise[U]) Await(ctx context.Context) (U, error) {
	select {
	case <-p.done:
		return p.value, nil
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}
