package master

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalCompletesExactlyOnceAndUnblocksWaiters(t *testing.T) {
	s := newSignal()

	done := make(chan error, 1)
	go func() { done <- s.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned before Complete was called")
	case <-time.After(20 * time.Millisecond):
	}

	s.Complete()
	s.Complete() // idempotent, must not panic

	require.NoError(t, <-done)
	require.NoError(t, s.Wait(context.Background()), "Wait after completion must return immediately")
}

func TestSignalWaitRespectsContextCancellation(t *testing.T) {
	s := newSignal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOutcomeCompletesAtMostOnce(t *testing.T) {
	o := newOutcome()
	boom := errors.New("boom")

	o.Complete(boom)
	o.Complete(nil) // later completion must not overwrite the first

	require.True(t, o.isComplete())
	require.ErrorIs(t, o.Wait(context.Background()), boom)
}

func TestOutcomeNilErrorIsSuccess(t *testing.T) {
	o := newOutcome()
	require.False(t, o.isComplete())

	o.Complete(nil)

	require.True(t, o.isComplete())
	require.NoError(t, o.Wait(context.Background()))
}
