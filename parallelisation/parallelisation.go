// Package parallelisation provides context and scheduling helpers used by the
// orchestration engine: context error determination, timeout-bounded action
// execution and the cooperative gate used for pause/resume checkpoints.
package parallelisation

import (
	"context"
	"errors"
	"time"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

// ContextualFunc is a function only depending on a context.
type ContextualFunc func(ctx context.Context) error

// DetermineContextError determines what the context error is if any, translated into
// the commonerrors taxonomy. The context cause takes precedence when one was recorded.
func DetermineContextError(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
		if commonerrors.Any(cause, commonerrors.ErrCancelled, commonerrors.ErrTimeout) {
			return cause
		}
		return commonerrors.WrapError(commonerrors.ConvertContextError(err), cause, "")
	}
	return commonerrors.ConvertContextError(err)
}

// RunActionWithTimeout runs action within timeout. The timeout is enforced externally:
// when it fires, RunActionWithTimeout returns ErrTimeout without waiting for the action,
// which is expected to observe its context and return promptly.
// A timeout of zero or less means the action is only bounded by ctx.
func RunActionWithTimeout(ctx context.Context, timeout time.Duration, action ContextualFunc) error {
	if action == nil {
		return commonerrors.UndefinedVariable("action")
	}
	if err := DetermineContextError(ctx); err != nil {
		return err
	}
	actionCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		actionCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() {
		done <- action(actionCtx)
	}()
	select {
	case err := <-done:
		return commonerrors.ConvertContextError(err)
	case <-actionCtx.Done():
		// the action may have finished at the same moment; prefer its outcome
		select {
		case err := <-done:
			return commonerrors.ConvertContextError(err)
		default:
		}
		return DetermineContextError(actionCtx)
	}
}
