package config

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retrySection struct {
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
}

func (cfg *retrySection) Validate() error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.RetryMax, validation.Min(0)),
	)
}

type testConfiguration struct {
	Host  string        `mapstructure:"host"`
	Port  int           `mapstructure:"port"`
	Retry retrySection  `mapstructure:"retry"`
	Wait  time.Duration `mapstructure:"wait"`
}

func (cfg *testConfiguration) Validate() error {
	if err := ValidateEmbedded(cfg); err != nil {
		return err
	}
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Host, validation.Required),
		validation.Field(&cfg.Port, validation.Required, validation.Min(1)),
	)
}

func defaultTestConfiguration() *testConfiguration {
	return &testConfiguration{
		Host: "localhost",
		Port: 8080,
		Retry: retrySection{
			RetryMax:     3,
			RetryWaitMin: 50 * time.Millisecond,
		},
		Wait: time.Second,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := &testConfiguration{}
	require.NoError(t, Load("test", cfg, defaultTestConfiguration()))
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 3, cfg.Retry.RetryMax)
	assert.Equal(t, time.Second, cfg.Wait)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TEST_HOST", "orchestrator.example.com")
	t.Setenv("TEST_RETRY_RETRY_MAX", "7")
	cfg := &testConfiguration{}
	require.NoError(t, Load("test", cfg, defaultTestConfiguration()))
	assert.Equal(t, "orchestrator.example.com", cfg.Host)
	assert.Equal(t, 7, cfg.Retry.RetryMax)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadValidationFailure(t *testing.T) {
	defaults := defaultTestConfiguration()
	defaults.Port = 0
	cfg := &testConfiguration{}
	require.Error(t, Load("test", cfg, defaults))
}

func TestLoadUndefined(t *testing.T) {
	require.Error(t, Load("test", nil, defaultTestConfiguration()))
	require.Error(t, LoadFromViper(nil, "test", &testConfiguration{}, defaultTestConfiguration()))
}

func TestBindFlagToEnv(t *testing.T) {
	session := viper.New()
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.String("host", "", "service host")
	require.NoError(t, flagSet.Parse([]string{"--host", "flagged.example.com"}))

	require.NoError(t, BindFlagToEnv(session, "test", "TEST_HOST", flagSet.Lookup("host")))
	cfg := &testConfiguration{}
	require.NoError(t, LoadFromViper(session, "test", cfg, defaultTestConfiguration()))
	assert.Equal(t, "flagged.example.com", cfg.Host)
}
