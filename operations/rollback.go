package operations

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

// RollbackCoordinator invokes the compensating actions of operations that ran.
// Compensations are independent of one another: every rollback is attempted even when
// earlier ones fail, either sequentially in reverse registration order or concurrently.
type RollbackCoordinator struct {
	logger         logr.Logger
	concurrent     bool
	defaultTimeout time.Duration
}

// NewRollbackCoordinator returns a coordinator rolling operations back concurrently or
// sequentially in reverse order, bounding each compensation lacking its own timeout by
// defaultTimeout.
func NewRollbackCoordinator(logger logr.Logger, concurrent bool, defaultTimeout time.Duration) *RollbackCoordinator {
	return &RollbackCoordinator{
		logger:         logger,
		concurrent:     concurrent,
		defaultTimeout: defaultTimeout,
	}
}

// Rollback invokes the rollback action of every operation provided, each with its own
// timeout and the shared cancellation signal. It never short-circuits and never panics;
// it returns nil iff every compensation succeeded, otherwise an aggregate of every
// rollback failure in the order compensations were attempted.
func (c *RollbackCoordinator) Rollback(ctx context.Context, store ISharedContext, operations []IOperation) error {
	if len(operations) == 0 {
		return nil
	}
	results := make([]error, len(operations))
	if c.concurrent {
		var g errgroup.Group
		for i, operation := range operations {
			i, operation := i, operation
			g.Go(func() error {
				results[i] = c.rollbackOne(ctx, store, operation, i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := len(operations) - 1; i >= 0; i-- {
			results[i] = c.rollbackOne(ctx, store, operations[i], i)
		}
	}

	var agg *multierror.Error
	appendResult := func(err error) {
		if err != nil {
			agg = multierror.Append(agg, err)
			agg.ErrorFormat = failureListFormat
		}
	}
	if c.concurrent {
		// completion order is non-deterministic; report in registration order
		for i := range results {
			appendResult(results[i])
		}
	} else {
		for i := len(results) - 1; i >= 0; i-- {
			appendResult(results[i])
		}
	}
	return agg.ErrorOrNil()
}

func (c *RollbackCoordinator) rollbackOne(ctx context.Context, store ISharedContext, operation IOperation, index int) error {
	if operation == nil {
		return commonerrors.WrapError(commonerrors.ErrRollback, commonerrors.UndefinedVariable("operation"), "")
	}
	name := operationDisplayName(operation, index)
	timeout := operation.Options().RollbackTimeout()
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	c.logger.V(1).Info("rolling back operation", "operation", name)
	_, err := invokeAction(ctx, store, operation.Rollback, timeout)
	if err != nil {
		err = commonerrors.WrapError(commonerrors.ErrRollback, err, fmt.Sprintf("compensation of operation %q failed", name))
		c.logger.Error(err, "rollback failed", "operation", name)
	}
	return err
}
