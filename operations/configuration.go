package operations

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tkuchel/codex-operations-go/config"
	"github.com/tkuchel/codex-operations-go/retry"
)

// Configuration holds orchestrator-wide defaults and policies. It can be loaded from
// the environment with config.Load.
type Configuration struct {
	// DefaultExecuteTimeout bounds execute attempts of operations without their own timeout.
	DefaultExecuteTimeout time.Duration `mapstructure:"default_execute_timeout"`
	// DefaultRollbackTimeout bounds rollback actions of operations without their own timeout.
	DefaultRollbackTimeout time.Duration `mapstructure:"default_rollback_timeout"`
	// ConcurrentRollback dispatches compensations concurrently instead of sequentially
	// in reverse registration order.
	ConcurrentRollback bool `mapstructure:"concurrent_rollback"`
	// HaltOnParallelFailure states whether a failure inside a parallel group prevents
	// later sequential operations from running.
	HaltOnParallelFailure bool `mapstructure:"halt_on_parallel_failure"`
	// Retry is the retry policy applied to operations without their own policy.
	Retry retry.RetryPolicyConfiguration `mapstructure:"retry"`
}

func (cfg *Configuration) Validate() error {
	err := config.ValidateEmbedded(cfg)
	if err != nil {
		return err
	}
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.DefaultExecuteTimeout, validation.Required, validation.Min(time.Duration(0))),
		validation.Field(&cfg.DefaultRollbackTimeout, validation.Required, validation.Min(time.Duration(0))),
	)
}

// DefaultConfiguration returns the default orchestrator configuration.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		DefaultExecuteTimeout:  time.Minute,
		DefaultRollbackTimeout: 30 * time.Second,
		ConcurrentRollback:     false,
		HaltOnParallelFailure:  true,
		Retry:                  *retry.DefaultNoRetryPolicyConfiguration(),
	}
}
