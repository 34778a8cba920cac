package parallelisation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkuchel/codex-operations-go/commonerrors"
	"github.com/tkuchel/codex-operations-go/commonerrors/errortest"
)

func TestDetermineContextError(t *testing.T) {
	assert.NoError(t, DetermineContextError(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	errortest.AssertError(t, DetermineContextError(ctx), commonerrors.ErrCancelled)

	tctx, tcancel := context.WithTimeout(context.Background(), 0)
	defer tcancel()
	<-tctx.Done()
	errortest.AssertError(t, DetermineContextError(tctx), commonerrors.ErrTimeout)
}

func TestDetermineContextError_Cause(t *testing.T) {
	cause := commonerrors.New(commonerrors.ErrCancelled, faker.Sentence())
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(cause)
	err := DetermineContextError(ctx)
	errortest.AssertError(t, err, commonerrors.ErrCancelled)
	assert.ErrorIs(t, err, cause)
}

func TestRunActionWithTimeout(t *testing.T) {
	t.Run("completes in time", func(t *testing.T) {
		require.NoError(t, RunActionWithTimeout(context.Background(), 100*time.Millisecond, func(ctx context.Context) error {
			return nil
		}))
	})
	t.Run("action failure is surfaced", func(t *testing.T) {
		expected := errors.New(faker.Word())
		err := RunActionWithTimeout(context.Background(), 100*time.Millisecond, func(ctx context.Context) error {
			return expected
		})
		assert.ErrorIs(t, err, expected)
	})
	t.Run("times out", func(t *testing.T) {
		err := RunActionWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		errortest.AssertError(t, err, commonerrors.ErrTimeout)
	})
	t.Run("no timeout configured", func(t *testing.T) {
		require.NoError(t, RunActionWithTimeout(context.Background(), 0, func(ctx context.Context) error {
			return nil
		}))
	})
	t.Run("cancelled beforehand", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RunActionWithTimeout(ctx, time.Second, func(ctx context.Context) error {
			t.Error("action should not run")
			return nil
		})
		errortest.AssertError(t, err, commonerrors.ErrCancelled)
	})
	t.Run("undefined action", func(t *testing.T) {
		errortest.AssertError(t, RunActionWithTimeout(context.Background(), time.Second, nil), commonerrors.ErrUndefined)
	})
}

func TestGate(t *testing.T) {
	gate := NewGate()
	assert.False(t, gate.IsClosed())
	require.NoError(t, gate.Wait(context.Background()))

	gate.Close()
	assert.True(t, gate.IsClosed())
	// closing twice is harmless
	gate.Close()
	assert.True(t, gate.IsClosed())

	released := make(chan error, 1)
	go func() {
		released <- gate.Wait(context.Background())
	}()
	select {
	case <-released:
		t.Fatal("waiter passed a closed gate")
	case <-time.After(50 * time.Millisecond):
	}

	gate.Open()
	assert.False(t, gate.IsClosed())
	select {
	case err := <-released:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}
}

func TestGate_WaitCancelled(t *testing.T) {
	gate := NewGate()
	gate.Close()
	ctx, cancel := context.WithCancel(context.Background())
	released := make(chan error, 1)
	go func() {
		released <- gate.Wait(ctx)
	}()
	cancel()
	select {
	case err := <-released:
		errortest.AssertError(t, err, commonerrors.ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released on cancellation")
	}
}
