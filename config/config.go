// Package config loads service configuration from the environment (.env file,
// environment variables) on top of defaults supplied in code, then validates it.
package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

const (
	// EnvVarSeparator separates words in environment variable names.
	EnvVarSeparator = "_"
	// DotEnvFile is the dotenv file optionally loaded into the environment.
	DotEnvFile = ".env"

	configKeySeparator = "."
)

// Load loads the configuration from the environment (i.e. .env file, environment
// variables) into configurationToSet. Values missing from the environment come from
// defaultConfiguration. envVarPrefix defines the prefix environment variables use,
// e.g. with prefix "orchestrator" the variable ORCHESTRATOR_RETRY_RETRY_MAX maps to
// the configuration key retry.retry_max.
func Load(envVarPrefix string, configurationToSet IServiceConfiguration, defaultConfiguration IServiceConfiguration) error {
	return LoadFromViper(viper.New(), envVarPrefix, configurationToSet, defaultConfiguration)
}

// LoadFromViper is the same as Load but reuses the provided viper session instead of
// creating a new one.
func LoadFromViper(viperSession *viper.Viper, envVarPrefix string, configurationToSet IServiceConfiguration, defaultConfiguration IServiceConfiguration) (err error) {
	if viperSession == nil {
		return commonerrors.UndefinedVariable("viper session")
	}
	if configurationToSet == nil {
		return commonerrors.UndefinedVariable("configuration to set")
	}

	// Load defaults
	var defaults map[string]any
	err = mapstructure.Decode(defaultConfiguration, &defaults)
	if err != nil {
		return commonerrors.WrapError(commonerrors.ErrInvalid, err, "cannot decode default configuration")
	}
	err = viperSession.MergeConfigMap(defaults)
	if err != nil {
		return commonerrors.WrapError(commonerrors.ErrInvalid, err, "cannot merge default configuration")
	}

	// Load .env file contents into environment, if it exists
	_ = godotenv.Load(DotEnvFile)

	setEnvOptions(viperSession, envVarPrefix)

	// Merge together all the sources and unmarshal into the struct
	err = viperSession.Unmarshal(configurationToSet)
	if err != nil {
		return commonerrors.WrapError(commonerrors.ErrMarshalling, err, "unable to decode config into struct")
	}
	return configurationToSet.Validate()
}

// BindFlagToEnv binds a pflag to an environment variable so that either source can set
// the corresponding configuration entry. envVar may be supplied with or without the
// envVarPrefix.
func BindFlagToEnv(viperSession *viper.Viper, envVarPrefix string, envVar string, flag *pflag.Flag) (err error) {
	if viperSession == nil {
		return commonerrors.UndefinedVariable("viper session")
	}
	if flag == nil {
		return commonerrors.UndefinedVariable("flag")
	}
	setEnvOptions(viperSession, envVarPrefix)
	shortKey, cleansedEnvVar := generateEnvVarConfigKeys(envVar, envVarPrefix)
	err = viperSession.BindPFlag(shortKey, flag)
	if err != nil {
		return
	}
	return viperSession.BindEnv(shortKey, cleansedEnvVar)
}

func generateEnvVarConfigKeys(envVar, envVarPrefix string) (shortKey string, cleansedEnvVar string) {
	short := strings.ToLower(envVar)
	prefix := strings.ToLower(envVarPrefix)
	if strings.HasPrefix(short, prefix) {
		short = strings.TrimPrefix(strings.TrimPrefix(short, prefix), EnvVarSeparator)
	}
	shortKey = strings.NewReplacer(EnvVarSeparator, configKeySeparator).Replace(short)
	cleansedEnvVar = strings.ToUpper(envVarPrefix + EnvVarSeparator + short)
	return
}

func setEnvOptions(viperSession *viper.Viper, envVarPrefix string) {
	viperSession.SetEnvPrefix(envVarPrefix)
	viperSession.AllowEmptyEnv(false)
	viperSession.SetEnvKeyReplacer(strings.NewReplacer(configKeySeparator, EnvVarSeparator))
	viperSession.AutomaticEnv()
}
