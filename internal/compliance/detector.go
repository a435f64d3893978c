package compliance

import (
	"fmt"

	"github.com/marketguard/listing-sentinel/internal/rules"
)

// Detect scans text against the rule set and returns typed findings without
// touching the text. The purpose is classification, not occurrence counting:
// a phrase appearing several times yields a single finding for its first
// occurrence. Ordering is fixed for a given input: banned phrases in rule
// order, then warning phrases in rule order, then phone numbers, then at
// most one URL finding.
func Detect(text string, rs *rules.Set) []Finding {
	findings := make([]Finding, 0)
	if text == "" {
		return findings
	}

	for _, rule := range rs.Banned() {
		match := rule.Pattern.FindString(text)
		if match == "" {
			continue
		}
		findings = append(findings, Finding{
			Kind:        KindBannedPhrase,
			MatchedText: match,
			Severity:    SeverityHigh,
			Message:     fmt.Sprintf("%q may trigger spam filters", rule.Phrase),
		})
	}

	for _, rule := range rs.Warning() {
		match := rule.Pattern.FindString(text)
		if match == "" {
			continue
		}
		findings = append(findings, Finding{
			Kind:        KindWarningPhrase,
			MatchedText: match,
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("%q may be flagged by the platform", rule.Phrase),
		})
	}

	for _, match := range rules.PhonePattern.FindAllString(text, -1) {
		findings = append(findings, Finding{
			Kind:        KindPhoneNumber,
			MatchedText: match,
			Severity:    SeverityHigh,
			Message:     "phone numbers should be shared via DM only",
		})
	}

	// One summary finding regardless of how many URLs are present.
	if match := rules.URLPattern.FindString(text); match != "" {
		findings = append(findings, Finding{
			Kind:        KindURL,
			MatchedText: match,
			Severity:    SeverityMedium,
			Message:     "external links may be flagged as spam",
		})
	}

	return findings
}
