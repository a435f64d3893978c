package rules

import "regexp"

// Limits contains the numeric thresholds applied during sanitization and
// rate-limit evaluation.
type Limits struct {
	MaxEmojis       int `yaml:"max_emojis" mapstructure:"max_emojis"`
	MaxExclamations int `yaml:"max_exclamations" mapstructure:"max_exclamations"`
	MaxPerHour      int `yaml:"max_per_hour" mapstructure:"max_per_hour"`
	MaxPerDay       int `yaml:"max_per_day" mapstructure:"max_per_day"`
	SafePerHour     int `yaml:"safe_per_hour" mapstructure:"safe_per_hour"`
	SafePerDay      int `yaml:"safe_per_day" mapstructure:"safe_per_day"`
}

// Config is the raw material for a rule set, as loaded from configuration.
type Config struct {
	BannedPhrases  []string          `yaml:"banned_phrases" mapstructure:"banned_phrases"`
	WarningPhrases []string          `yaml:"warning_phrases" mapstructure:"warning_phrases"`
	Replacements   map[string]string `yaml:"replacements" mapstructure:"replacements"`
	Limits         Limits            `yaml:"limits" mapstructure:"limits"`
}

// PhraseRule is a single compiled phrase pattern with its safe replacement.
// A phrase without an entry in the replacements table is deleted on match.
type PhraseRule struct {
	Phrase      string
	Pattern     *regexp.Regexp
	Replacement string
}

// Set is an immutable, validated rule set. All phrase patterns are compiled
// once at construction and the set is safe to share across any number of
// concurrent callers.
type Set struct {
	banned  []PhraseRule
	warning []PhraseRule
	limits  Limits
}

// Banned returns the compiled banned-phrase rules in configuration order.
func (s *Set) Banned() []PhraseRule { return s.banned }

// Warning returns the compiled warning-phrase rules in configuration order.
func (s *Set) Warning() []PhraseRule { return s.warning }

// Limits returns the numeric thresholds for this set.
func (s *Set) Limits() Limits { return s.limits }

// ConfigError reports an invalid rule set at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "rules: invalid " + e.Field + ": " + e.Reason
}
