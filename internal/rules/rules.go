// Package rules holds the static compliance rule data: banned and warning
// phrase lists, the safe-replacement table, and numeric thresholds. A Set is
// built once, validated, and never mutated afterwards; all behavior lives in
// the compliance package, which takes a Set as a plain parameter so that
// independently configured sets (per market, per locale) can coexist.
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Fixed structural patterns. These are not configurable: they describe wire
// formats of the platform being posted to, not policy.
var (
	// NANP 3-3-4 with optional dash or dot separators. International
	// formats are intentionally out of scope; this mirrors what the
	// target platform's spam heuristics key on.
	PhonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)

	// URLPattern matches http/https URLs up to the next whitespace.
	URLPattern = regexp.MustCompile(`https?://[^\s]+`)

	// EmojiPattern covers the pictographic blocks listings actually use.
	EmojiPattern = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}]`)

	// ShoutPattern matches a run of 4+ uppercase letters ("AMAZING").
	ShoutPattern = regexp.MustCompile(`\b[A-Z]{4,}\b`)

	ExclamationRunPattern = regexp.MustCompile(`!{3,}`)
	QuestionRunPattern    = regexp.MustCompile(`\?{3,}`)
	NewlineRunPattern     = regexp.MustCompile(`\n{4,}`)
)

// New validates cfg and compiles it into an immutable Set. Every phrase
// gets one case-insensitive, word-boundary-anchored pattern, compiled here
// and reused for the lifetime of the set.
func New(cfg Config) (*Set, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	set := &Set{
		banned:  make([]PhraseRule, 0, len(cfg.BannedPhrases)),
		warning: make([]PhraseRule, 0, len(cfg.WarningPhrases)),
		limits:  cfg.Limits,
	}

	for _, phrase := range cfg.BannedPhrases {
		p := strings.ToLower(phrase)
		set.banned = append(set.banned, PhraseRule{
			Phrase:      p,
			Pattern:     compilePhrase(p),
			Replacement: cfg.Replacements[p],
		})
	}

	for _, phrase := range cfg.WarningPhrases {
		p := strings.ToLower(phrase)
		set.warning = append(set.warning, PhraseRule{
			Phrase:  p,
			Pattern: compilePhrase(p),
		})
	}

	return set, nil
}

// Validate checks cfg without compiling it. Returned errors are *ConfigError.
func Validate(cfg Config) error {
	for _, phrase := range cfg.BannedPhrases {
		if err := validatePhrase("banned_phrases", phrase); err != nil {
			return err
		}
	}
	for _, phrase := range cfg.WarningPhrases {
		if err := validatePhrase("warning_phrases", phrase); err != nil {
			return err
		}
	}

	l := cfg.Limits
	switch {
	case l.MaxEmojis < 0:
		return &ConfigError{Field: "limits.max_emojis", Reason: "must not be negative"}
	case l.MaxExclamations < 1:
		return &ConfigError{Field: "limits.max_exclamations", Reason: "must be at least 1"}
	case l.SafePerHour < 0:
		return &ConfigError{Field: "limits.safe_per_hour", Reason: "must not be negative"}
	case l.SafePerDay < 0:
		return &ConfigError{Field: "limits.safe_per_day", Reason: "must not be negative"}
	case l.MaxPerHour < l.SafePerHour:
		return &ConfigError{Field: "limits.max_per_hour", Reason: fmt.Sprintf("%d is below safe_per_hour %d", l.MaxPerHour, l.SafePerHour)}
	case l.MaxPerDay < l.SafePerDay:
		return &ConfigError{Field: "limits.max_per_day", Reason: fmt.Sprintf("%d is below safe_per_day %d", l.MaxPerDay, l.SafePerDay)}
	}

	return nil
}

func validatePhrase(field, phrase string) error {
	if strings.TrimSpace(phrase) == "" {
		return &ConfigError{Field: field, Reason: "empty phrase"}
	}
	// Phrases are matched literally. A phrase containing regexp
	// metacharacters almost always means a config mistake, so reject it
	// instead of silently quoting it.
	if regexp.QuoteMeta(phrase) != phrase {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("phrase %q contains regexp metacharacters", phrase)}
	}
	return nil
}

func compilePhrase(phrase string) *regexp.Regexp {
	// Validated phrases contain no metacharacters, so the phrase text can
	// be embedded directly between word boundaries.
	return regexp.MustCompile(`(?i)\b` + phrase + `\b`)
}
