package master

import (
	"context"
	"sync"
)

// signal is a future that always completes normally exactly once. It
// backs executionCompletionFuture: every execution attempt ends by
// signalling it, win or lose, so anything waiting on "this attempt is
// over" never blocks forever.
type signal struct {
	done chan struct{}
	once sync.Once
}

func newSignal() *signal {
	return &signal{done: make(chan struct{})}
}

func (s *signal) Complete() {
	s.once.Do(func() { close(s.done) })
}

func (s *signal) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// outcome is a future that completes at most once, carrying the job's
// terminal error (nil on success). It backs jobCompletionFuture, which
// completes once across a job's entire lifetime regardless of how many
// execution attempts it took.
type outcome struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newOutcome() *outcome {
	return &outcome{done: make(chan struct{})}
}

func (o *outcome) Complete(err error) {
	o.once.Do(func() {
		o.err = err
		close(o.done)
	})
}

func (o *outcome) isComplete() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the job reaches a terminal status or ctx is done.
func (o *outcome) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
