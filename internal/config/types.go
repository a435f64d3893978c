package config

import (
	"time"

	"github.com/marketguard/listing-sentinel/internal/rules"
)

// Config represents the main configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Rules    rules.Config   `yaml:"rules" mapstructure:"rules"`
	Usage    UsageConfig    `yaml:"usage" mapstructure:"usage"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Security SecurityConfig `yaml:"security" mapstructure:"security"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// EngineConfig contains compliance engine tunables.
type EngineConfig struct {
	MaxInputBytes int `yaml:"max_input_bytes" mapstructure:"max_input_bytes"`
}

// UsageConfig contains the Redis-backed usage tracker configuration. When
// disabled the service runs engine-only and usage endpoints report that
// tracking is off.
type UsageConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	RedisURL       string `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix      string `yaml:"key_prefix" mapstructure:"key_prefix"`
	MaxConnections int    `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int    `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
}

// HistoryConfig contains the Postgres evaluation-history configuration.
type HistoryConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	DuplicateWindow time.Duration `yaml:"duplicate_window" mapstructure:"duplicate_window"`
}

// SecurityConfig contains protections for the HTTP surface itself, as
// opposed to the domain posting limits, which live under rules.limits.
type SecurityConfig struct {
	ClientRateLimit ClientRateLimitConfig `yaml:"client_rate_limit" mapstructure:"client_rate_limit"`
}

// ClientRateLimitConfig configures the per-client request limiter.
type ClientRateLimitConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
	Burst          int  `yaml:"burst" mapstructure:"burst"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
		Path     string `yaml:"path" mapstructure:"path"`
		MaxSize  int    `yaml:"max_size" mapstructure:"max_size"`
		MaxAge   int    `yaml:"max_age" mapstructure:"max_age"`
		Compress bool   `yaml:"compress" mapstructure:"compress"`
	} `yaml:"file" mapstructure:"file"`
}

// GetDefaults returns a configuration with sensible defaults. The rule data
// defaults to the stock phrase lists and limits.
func GetDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Engine: EngineConfig{
			MaxInputBytes: 64 * 1024,
		},
		Rules: rules.DefaultConfig(),
		Usage: UsageConfig{
			Enabled:        false,
			RedisURL:       "redis://localhost:6379/0",
			KeyPrefix:      "sentinel",
			MaxConnections: 10,
			MinIdleConns:   2,
		},
		History: HistoryConfig{
			Enabled:         false,
			DatabaseURL:     "postgres://localhost:5432/listing_sentinel?sslmode=disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			DuplicateWindow: 24 * time.Hour,
		},
		Security: SecurityConfig{
			ClientRateLimit: ClientRateLimitConfig{
				Enabled:        true,
				RequestsPerMin: 120,
				Burst:          20,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
