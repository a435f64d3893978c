package config

import (
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := validateConfig(GetDefaults()); err != nil {
		t.Fatalf("default configuration rejected: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero input cap", func(c *Config) { c.Engine.MaxInputBytes = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero client rpm", func(c *Config) { c.Security.ClientRateLimit.RequestsPerMin = 0 }},
		{"zero client burst", func(c *Config) { c.Security.ClientRateLimit.Burst = 0 }},
		{"empty rule phrase", func(c *Config) { c.Rules.BannedPhrases = append(c.Rules.BannedPhrases, "") }},
		{"inverted rate thresholds", func(c *Config) { c.Rules.Limits.MaxPerHour = 5; c.Rules.Limits.SafePerHour = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("validateConfig accepted an invalid config")
			}
		})
	}
}

func TestValidate_ClientLimitDisabledSkipsChecks(t *testing.T) {
	cfg := GetDefaults()
	cfg.Security.ClientRateLimit.Enabled = false
	cfg.Security.ClientRateLimit.RequestsPerMin = 0
	cfg.Security.ClientRateLimit.Burst = 0

	if err := validateConfig(cfg); err != nil {
		t.Errorf("disabled client limiter should not be validated: %v", err)
	}
}
