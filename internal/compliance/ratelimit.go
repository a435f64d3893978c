package compliance

import (
	"fmt"

	"github.com/marketguard/listing-sentinel/internal/rules"
)

// CheckRateLimit evaluates a usage snapshot against the rule set's posting
// ceilings. It is a pure policy function: no clocks, no state, no mutation
// of the snapshot. Advisory warnings fire at the soft thresholds and are
// independent of the hard Allowed decision, so a caller can be allowed yet
// still nudged to slow down before a hard block.
func CheckRateLimit(usage UsageCounts, rs *rules.Set) RateLimitDecision {
	limits := rs.Limits()
	warnings := make([]Finding, 0, 2)

	if usage.CopiesLastHour > limits.SafePerHour {
		warnings = append(warnings, Finding{
			Kind:     KindRateWarning,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("you've copied %d times in the last hour; slow down to avoid detection", usage.CopiesLastHour),
		})
	}

	if usage.CopiesToday > limits.SafePerDay {
		warnings = append(warnings, Finding{
			Kind:     KindRateWarning,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("you've copied %d times today; consider taking a break", usage.CopiesToday),
		})
	}

	return RateLimitDecision{
		Allowed:       usage.CopiesLastHour < limits.MaxPerHour && usage.CopiesToday < limits.MaxPerDay,
		Warnings:      warnings,
		RemainingHour: maxInt(0, limits.MaxPerHour-usage.CopiesLastHour),
		RemainingDay:  maxInt(0, limits.MaxPerDay-usage.CopiesToday),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
