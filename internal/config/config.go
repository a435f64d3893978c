// Package config loads and validates the service configuration from YAML
// files and SENTINEL_* environment variables, with hot reload of the rule
// lists via the config file watcher.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/marketguard/listing-sentinel/internal/rules"
	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	config := GetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/listing-sentinel/")
	viper.AddConfigPath("$HOME/.listing-sentinel/")

	viper.SetEnvPrefix("SENTINEL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	// A missing config file is fine; defaults carry the full rule data.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validateConfig validates the loaded configuration. Rule data is validated
// here too so a bad phrase list fails at startup, not at first evaluation.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Engine.MaxInputBytes <= 0 {
		return fmt.Errorf("invalid engine max_input_bytes: %d", config.Engine.MaxInputBytes)
	}

	if config.Logging.Level != "debug" && config.Logging.Level != "info" && config.Logging.Level != "warn" && config.Logging.Level != "error" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	if config.Security.ClientRateLimit.Enabled {
		if config.Security.ClientRateLimit.RequestsPerMin <= 0 {
			return fmt.Errorf("invalid client rate limit: %d requests/min", config.Security.ClientRateLimit.RequestsPerMin)
		}
		if config.Security.ClientRateLimit.Burst <= 0 {
			return fmt.Errorf("invalid client rate limit burst: %d", config.Security.ClientRateLimit.Burst)
		}
	}

	if err := rules.Validate(config.Rules); err != nil {
		return err
	}

	return nil
}

// Watch starts watching the configuration file for changes. The callback
// receives a fully validated config; invalid edits are ignored so a typo in
// a phrase list cannot take the service down.
func Watch(config *Config, callback func(*Config)) error {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig := GetDefaults()
		if err := viper.Unmarshal(newConfig); err != nil {
			return
		}

		if err := validateConfig(newConfig); err != nil {
			return
		}

		callback(newConfig)
	})

	return nil
}
