package compliance

import (
	"strings"

	"github.com/marketguard/listing-sentinel/internal/rules"
)

// Replacement literals. None of them re-match any fixed pattern or stock
// phrase, which is what keeps Sanitize idempotent.
const (
	warningReplacement = "DM for details"
	phoneReplacement   = "[DM for contact]"
	urlReplacement     = "[link removed for compliance]"
)

// Sanitize rewrites text into a platform-safe form. It is total and
// deterministic: it never fails, and sanitizing already-sanitized text is a
// no-op. The passes run in a fixed order; punctuation softening, for
// example, relies on the phrase passes having already removed phrase text
// that may itself carry punctuation.
func Sanitize(text string, rs *rules.Set) string {
	out := text

	// Banned phrases are applied once each, in rule order, over the
	// current intermediate string. No re-scanning after replacements.
	for _, rule := range rs.Banned() {
		out = rule.Pattern.ReplaceAllLiteralString(out, rule.Replacement)
	}

	for _, rule := range rs.Warning() {
		out = rule.Pattern.ReplaceAllLiteralString(out, warningReplacement)
	}

	out = rules.PhonePattern.ReplaceAllLiteralString(out, phoneReplacement)
	out = rules.URLPattern.ReplaceAllLiteralString(out, urlReplacement)

	out = capEmojis(out, rs.Limits().MaxEmojis)

	// Shouting words keep their leading capital: "AMAZING" -> "Amazing".
	out = rules.ShoutPattern.ReplaceAllStringFunc(out, func(m string) string {
		return m[:1] + strings.ToLower(m[1:])
	})

	out = rules.ExclamationRunPattern.ReplaceAllLiteralString(out, strings.Repeat("!", rs.Limits().MaxExclamations))
	out = rules.QuestionRunPattern.ReplaceAllLiteralString(out, "??")
	out = rules.NewlineRunPattern.ReplaceAllLiteralString(out, "\n\n")

	return strings.TrimSpace(out)
}

// capEmojis enforces the emoji ceiling: if the message carries more than max
// emoji, all of them are stripped and the first max re-appended as a single
// trailing group, preserving their original relative order. The cap is
// global to the message, not per sentence.
func capEmojis(text string, max int) string {
	found := rules.EmojiPattern.FindAllString(text, -1)
	if len(found) <= max {
		return text
	}

	stripped := strings.TrimSpace(rules.EmojiPattern.ReplaceAllLiteralString(text, ""))
	return stripped + " " + strings.Join(found[:max], "")
}
