package retry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RetryPolicyConfiguration describes a retry policy: how many retries to perform and
// how to wait between attempts. When neither backoff flag is set, a fixed delay of
// RetryWaitMin applies between attempts.
type RetryPolicyConfiguration struct {
	// Enabled states whether retries are performed at all.
	Enabled bool `mapstructure:"enabled"`
	// RetryMax is the maximum number of retries (i.e. attempts beyond the first one).
	RetryMax int `mapstructure:"retry_max"`
	// RetryWaitMin is the minimum wait between attempts. It is also the fixed delay and
	// the base of the exponential backoff.
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	// RetryWaitMax is the maximum wait between attempts.
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	// BackOffEnabled enables exponential backoff (base*2^attempt).
	BackOffEnabled bool `mapstructure:"backoff_enabled"`
	// LinearBackOffEnabled enables a linearly increasing delay with jitter.
	LinearBackOffEnabled bool `mapstructure:"linear_backoff_enabled"`
}

func (cfg *RetryPolicyConfiguration) Validate() error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.RetryMax, validation.Min(0)),
		validation.Field(&cfg.RetryWaitMin, validation.Min(time.Duration(0))),
		validation.Field(&cfg.RetryWaitMax, validation.Min(cfg.RetryWaitMin)),
	)
}

// Attempts returns the total number of calls the policy allows, first call included.
func (cfg *RetryPolicyConfiguration) Attempts() uint {
	if cfg == nil || !cfg.Enabled || cfg.RetryMax < 0 {
		return 1
	}
	return uint(cfg.RetryMax) + 1
}

// DefaultNoRetryPolicyConfiguration returns a policy performing exactly one attempt.
func DefaultNoRetryPolicyConfiguration() *RetryPolicyConfiguration {
	return &RetryPolicyConfiguration{}
}

// DefaultBasicRetryPolicyConfiguration returns a fixed delay policy (4 attempts, 100ms apart).
func DefaultBasicRetryPolicyConfiguration() *RetryPolicyConfiguration {
	return &RetryPolicyConfiguration{
		Enabled:      true,
		RetryMax:     3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: time.Second,
	}
}

// FixedDelayRetryPolicyConfiguration returns a policy retrying retryMax times with a
// constant delay between attempts.
func FixedDelayRetryPolicyConfiguration(retryMax int, delay time.Duration) *RetryPolicyConfiguration {
	return &RetryPolicyConfiguration{
		Enabled:      true,
		RetryMax:     retryMax,
		RetryWaitMin: delay,
		RetryWaitMax: delay,
	}
}

// DefaultExponentialBackoffRetryPolicyConfiguration returns an exponential backoff policy.
func DefaultExponentialBackoffRetryPolicyConfiguration() *RetryPolicyConfiguration {
	return &RetryPolicyConfiguration{
		Enabled:        true,
		RetryMax:       4,
		RetryWaitMin:   100 * time.Millisecond,
		RetryWaitMax:   10 * time.Second,
		BackOffEnabled: true,
	}
}

// ExponentialBackoffRetryPolicyConfiguration returns an exponential backoff policy with
// the supplied base delay: attempt n waits base*2^n, capped at maxWait.
func ExponentialBackoffRetryPolicyConfiguration(retryMax int, base, maxWait time.Duration) *RetryPolicyConfiguration {
	return &RetryPolicyConfiguration{
		Enabled:        true,
		RetryMax:       retryMax,
		RetryWaitMin:   base,
		RetryWaitMax:   maxWait,
		BackOffEnabled: true,
	}
}

// DefaultLinearBackoffRetryPolicyConfiguration returns a linear backoff policy with jitter.
func DefaultLinearBackoffRetryPolicyConfiguration() *RetryPolicyConfiguration {
	return &RetryPolicyConfiguration{
		Enabled:              true,
		RetryMax:             4,
		RetryWaitMin:         100 * time.Millisecond,
		RetryWaitMax:         5 * time.Second,
		LinearBackOffEnabled: true,
	}
}

// DefaultRobustRetryPolicyConfiguration returns a policy suitable for flaky dependencies:
// many attempts with exponential backoff.
func DefaultRobustRetryPolicyConfiguration() *RetryPolicyConfiguration {
	return &RetryPolicyConfiguration{
		Enabled:        true,
		RetryMax:       10,
		RetryWaitMin:   250 * time.Millisecond,
		RetryWaitMax:   30 * time.Second,
		BackOffEnabled: true,
	}
}
