// Package retry performs function retries according to a validated retry policy.
package retry

import (
	"fmt"
	"time"

	"context"

	"github.com/avast/retry-go/v4"
	"github.com/go-logr/logr"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

// RetryIf will retry fn whenever the value returned from retryConditionFn is true,
// following retryPolicy for attempt count and delays. Context errors are converted to
// the commonerrors taxonomy.
func RetryIf(ctx context.Context, logger logr.Logger, retryPolicy *RetryPolicyConfiguration, fn func() error, msgOnRetry string, retryConditionFn func(err error) bool) error {
	if fn == nil {
		return commonerrors.UndefinedVariable("function to retry")
	}
	if retryPolicy == nil {
		return commonerrors.New(commonerrors.ErrUndefined, "missing retry policy configuration")
	}
	if err := retryPolicy.Validate(); err != nil {
		return commonerrors.WrapError(commonerrors.ErrInvalid, err, "invalid retry policy configuration")
	}
	if !retryPolicy.Enabled {
		return fn()
	}
	var retryType retry.DelayTypeFunc
	switch {
	case retryPolicy.LinearBackOffEnabled:
		retryType = retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)
	case retryPolicy.BackOffEnabled:
		retryType = retry.BackOffDelay
	default:
		retryType = retry.FixedDelay
	}

	return commonerrors.ConvertContextError(
		retry.Do(
			fn,
			retry.OnRetry(func(n uint, err error) {
				logger.Error(err, fmt.Sprintf("%v (attempt #%v)", msgOnRetry, n+1), "attempt", n+1)
			}),
			retry.Delay(retryPolicy.RetryWaitMin),
			retry.MaxDelay(retryPolicy.RetryWaitMax),
			retry.MaxJitter(25*time.Millisecond),
			retry.DelayType(retryType),
			retry.Attempts(retryPolicy.Attempts()),
			retry.RetryIf(retryConditionFn),
			retry.LastErrorOnly(true),
			retry.Context(ctx),
		),
	)
}

// RetryOnError retries fn when the error returned by fn corresponds to one of retriableErr.
func RetryOnError(ctx context.Context, logger logr.Logger, retryPolicy *RetryPolicyConfiguration, fn func() error, msgOnRetry string, retriableErr ...error) error {
	return RetryIf(ctx, logger, retryPolicy, fn, msgOnRetry, func(err error) bool {
		return commonerrors.Any(err, retriableErr...)
	})
}

// RetryOnAll retries fn on any failure apart from cancellation of ctx.
func RetryOnAll(ctx context.Context, logger logr.Logger, retryPolicy *RetryPolicyConfiguration, fn func() error, msgOnRetry string) error {
	return RetryIf(ctx, logger, retryPolicy, fn, msgOnRetry, func(err error) bool {
		return commonerrors.None(err, commonerrors.ErrCancelled)
	})
}
