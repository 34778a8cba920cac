package operations

import (
	"time"

	"github.com/tkuchel/codex-operations-go/commonerrors"
	"github.com/tkuchel/codex-operations-go/retry"
)

// ExecutionOptions describes how one operation is executed: timeouts, retry policy,
// failure handling and scheduling.
type ExecutionOptions struct {
	executeTimeout    time.Duration
	rollbackTimeout   time.Duration
	continueOnFailure bool
	allowParallel     bool
	retryPolicy       *retry.RetryPolicyConfiguration
}

func (o *ExecutionOptions) Default() *ExecutionOptions {
	o.executeTimeout = 0
	o.rollbackTimeout = 0
	o.continueOnFailure = false
	o.allowParallel = false
	o.retryPolicy = nil
	return o
}

// ExecuteTimeout returns the execute timeout; zero means the orchestrator default applies.
func (o *ExecutionOptions) ExecuteTimeout() time.Duration {
	return o.executeTimeout
}

// RollbackTimeout returns the rollback timeout; zero means the orchestrator default applies.
func (o *ExecutionOptions) RollbackTimeout() time.Duration {
	return o.rollbackTimeout
}

// ContinueOnFailure states whether a failure of this operation still lets the run
// proceed to subsequent operations (rollback will still happen at the end).
func (o *ExecutionOptions) ContinueOnFailure() bool {
	return o.continueOnFailure
}

// AllowParallel states whether the operation may be dispatched as part of a parallel
// group with adjacent operations carrying the same flag.
func (o *ExecutionOptions) AllowParallel() bool {
	return o.allowParallel
}

// RetryPolicy returns the retry policy; nil means the orchestrator default applies.
func (o *ExecutionOptions) RetryPolicy() *retry.RetryPolicyConfiguration {
	return o.retryPolicy
}

func (o *ExecutionOptions) Validate() error {
	if o.executeTimeout < 0 || o.rollbackTimeout < 0 {
		return commonerrors.New(commonerrors.ErrInvalid, "timeouts cannot be negative")
	}
	if o.retryPolicy != nil {
		if err := o.retryPolicy.Validate(); err != nil {
			return commonerrors.WrapError(commonerrors.ErrInvalid, err, "invalid retry policy")
		}
	}
	return nil
}

// ExecutionOption configures ExecutionOptions.
type ExecutionOption func(*ExecutionOptions) *ExecutionOptions

// ContinueOnFailure lets the run proceed past a failure of this operation.
var ContinueOnFailure ExecutionOption = func(o *ExecutionOptions) *ExecutionOptions {
	if o == nil {
		o = DefaultExecutionOptions()
	}
	o.continueOnFailure = true
	return o
}

// AllowParallel marks the operation as eligible for parallel-group dispatch.
var AllowParallel ExecutionOption = func(o *ExecutionOptions) *ExecutionOptions {
	if o == nil {
		o = DefaultExecutionOptions()
	}
	o.allowParallel = true
	return o
}

// WithExecuteTimeout bounds each execute attempt.
func WithExecuteTimeout(timeout time.Duration) ExecutionOption {
	return func(o *ExecutionOptions) *ExecutionOptions {
		if o == nil {
			o = DefaultExecutionOptions()
		}
		o.executeTimeout = timeout
		return o
	}
}

// WithRollbackTimeout bounds the rollback action.
func WithRollbackTimeout(timeout time.Duration) ExecutionOption {
	return func(o *ExecutionOptions) *ExecutionOptions {
		if o == nil {
			o = DefaultExecutionOptions()
		}
		o.rollbackTimeout = timeout
		return o
	}
}

// WithRetryPolicy sets the retry policy of the operation.
func WithRetryPolicy(policy *retry.RetryPolicyConfiguration) ExecutionOption {
	return func(o *ExecutionOptions) *ExecutionOptions {
		if o == nil {
			o = DefaultExecutionOptions()
		}
		o.retryPolicy = policy
		return o
	}
}

// WithFixedRetries retries failed attempts up to maxRetries times with a constant delay.
func WithFixedRetries(maxRetries int, delay time.Duration) ExecutionOption {
	return WithRetryPolicy(retry.FixedDelayRetryPolicyConfiguration(maxRetries, delay))
}

// WithExponentialBackoffRetries retries failed attempts up to maxRetries times, waiting
// base*2^attempt between attempts, capped at maxWait.
func WithExponentialBackoffRetries(maxRetries int, base, maxWait time.Duration) ExecutionOption {
	return WithRetryPolicy(retry.ExponentialBackoffRetryPolicyConfiguration(maxRetries, base, maxWait))
}

// WithOptions collates the given options into an ExecutionOptions.
func WithOptions(option ...ExecutionOption) (opts *ExecutionOptions) {
	for i := range option {
		opts = option[i](opts)
	}
	if opts == nil {
		opts = DefaultExecutionOptions()
	}
	return
}

// DefaultExecutionOptions returns the default execution options.
func DefaultExecutionOptions() *ExecutionOptions {
	opts := &ExecutionOptions{}
	return opts.Default()
}
