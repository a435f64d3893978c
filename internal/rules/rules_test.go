package rules

import (
	"errors"
	"testing"
)

func validLimits() Limits {
	return Limits{
		MaxEmojis:       3,
		MaxExclamations: 2,
		MaxPerHour:      50,
		MaxPerDay:       200,
		SafePerHour:     30,
		SafePerDay:      100,
	}
}

func TestNew_Valid(t *testing.T) {
	set, err := New(Config{
		BannedPhrases:  []string{"steal", "urgent sale"},
		WarningPhrases: []string{"best offer"},
		Replacements:   map[string]string{"steal": "great value"},
		Limits:         validLimits(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if len(set.Banned()) != 2 {
		t.Errorf("Banned() len = %d, want 2", len(set.Banned()))
	}
	if len(set.Warning()) != 1 {
		t.Errorf("Warning() len = %d, want 1", len(set.Warning()))
	}
	if set.Banned()[0].Replacement != "great value" {
		t.Errorf("steal replacement = %q, want %q", set.Banned()[0].Replacement, "great value")
	}
	// No replacement entry means delete on match.
	if set.Banned()[1].Replacement != "" {
		t.Errorf("urgent sale replacement = %q, want empty", set.Banned()[1].Replacement)
	}
}

func TestNew_NormalizesCase(t *testing.T) {
	set, err := New(Config{
		BannedPhrases: []string{"STEAL"},
		Replacements:  map[string]string{"steal": "great value"},
		Limits:        validLimits(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if set.Banned()[0].Phrase != "steal" {
		t.Errorf("phrase = %q, want lowercased %q", set.Banned()[0].Phrase, "steal")
	}
	if set.Banned()[0].Replacement != "great value" {
		t.Error("replacement lookup did not use the normalized phrase")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty banned phrase", func(c *Config) { c.BannedPhrases = []string{""} }},
		{"whitespace phrase", func(c *Config) { c.WarningPhrases = []string{"   "} }},
		{"regexp metacharacters", func(c *Config) { c.BannedPhrases = []string{"steal.*"} }},
		{"negative emoji cap", func(c *Config) { c.Limits.MaxEmojis = -1 }},
		{"zero exclamations", func(c *Config) { c.Limits.MaxExclamations = 0 }},
		{"negative safe hour", func(c *Config) { c.Limits.SafePerHour = -1 }},
		{"negative safe day", func(c *Config) { c.Limits.SafePerDay = -5 }},
		{"inverted hour thresholds", func(c *Config) { c.Limits.MaxPerHour = 10; c.Limits.SafePerHour = 20 }},
		{"inverted day thresholds", func(c *Config) { c.Limits.MaxPerDay = 50; c.Limits.SafePerDay = 60 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Limits: validLimits()}
			tt.mutate(&cfg)

			_, err := New(cfg)
			if err == nil {
				t.Fatal("New accepted invalid config")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("error type = %T, want *ConfigError", err)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	set := Default()

	if len(set.Banned()) == 0 || len(set.Warning()) == 0 {
		t.Fatal("Default() produced empty phrase lists")
	}

	limits := set.Limits()
	if limits.MaxPerHour != 50 || limits.MaxPerDay != 200 {
		t.Errorf("hard limits = %d/%d, want 50/200", limits.MaxPerHour, limits.MaxPerDay)
	}
	if limits.SafePerHour != 30 || limits.SafePerDay != 100 {
		t.Errorf("soft limits = %d/%d, want 30/100", limits.SafePerHour, limits.SafePerDay)
	}

	// Phrases with apostrophes and percent signs must survive validation.
	found := map[string]bool{}
	for _, rule := range set.Banned() {
		found[rule.Phrase] = true
	}
	for _, phrase := range []string{"don't miss", "100% genuine", "steal"} {
		if !found[phrase] {
			t.Errorf("default banned phrases missing %q", phrase)
		}
	}
}

func TestPhrasePatterns_WordBoundary(t *testing.T) {
	set, err := New(Config{
		BannedPhrases: []string{"steal"},
		Limits:        validLimits(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	pattern := set.Banned()[0].Pattern
	if pattern.MatchString("a stealth watch") {
		t.Error(`pattern matched inside "stealth"`)
	}
	if !pattern.MatchString("don't steal my deal") {
		t.Error(`pattern did not match standalone "steal"`)
	}
	if !pattern.MatchString("what a STEAL!") {
		t.Error("pattern is not case-insensitive")
	}
}

func TestFixedPatterns(t *testing.T) {
	t.Run("phone", func(t *testing.T) {
		for _, s := range []string{"555-123-4567", "555.123.4567", "5551234567"} {
			if !PhonePattern.MatchString(s) {
				t.Errorf("PhonePattern did not match %q", s)
			}
		}
		for _, s := range []string{"12345", "555-12-34567", "[DM for contact]"} {
			if PhonePattern.MatchString(s) {
				t.Errorf("PhonePattern matched %q", s)
			}
		}
	})

	t.Run("url", func(t *testing.T) {
		if !URLPattern.MatchString("see https://example.com/x now") {
			t.Error("URLPattern did not match https URL")
		}
		if !URLPattern.MatchString("http://example.com") {
			t.Error("URLPattern did not match http URL")
		}
		if URLPattern.MatchString("[link removed for compliance]") {
			t.Error("URLPattern matched its own replacement literal")
		}
	})

	t.Run("shout", func(t *testing.T) {
		if !ShoutPattern.MatchString("AMAZING deal") {
			t.Error("ShoutPattern did not match 4+ letter run")
		}
		if ShoutPattern.MatchString("NEW car") {
			t.Error("ShoutPattern matched a 3-letter word")
		}
	})
}
