package compliance

import "time"

// FindingKind classifies a detected risk signal.
type FindingKind string

const (
	KindBannedPhrase  FindingKind = "banned_phrase"
	KindWarningPhrase FindingKind = "warning_phrase"
	KindPhoneNumber   FindingKind = "phone_number"
	KindURL           FindingKind = "url_detected"
	KindRateWarning   FindingKind = "rate_limit_warning"
)

// Severity grades how likely a finding is to trip the platform's filters.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Finding is one detected risk signal. Findings describe the original text
// as written, not the sanitized output.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	MatchedText string      `json:"matched_text,omitempty"`
	Severity    Severity    `json:"severity"`
	Message     string      `json:"message"`
}

// UsageCounts is a read-only snapshot of how often the caller has copied
// listings recently. The engine never mutates or stores it; incrementing
// and persisting counters is the caller's job.
type UsageCounts struct {
	CopiesLastHour int `json:"copies_last_hour"`
	CopiesToday    int `json:"copies_today"`
}

// RateLimitDecision is the outcome of evaluating a usage snapshot against
// the rule set's ceilings. Warnings are advisory and independent of the
// hard Allowed decision.
type RateLimitDecision struct {
	Allowed       bool      `json:"allowed"`
	Warnings      []Finding `json:"warnings"`
	RemainingHour int       `json:"remaining_hour"`
	RemainingDay  int       `json:"remaining_day"`
}

// Result is the full outcome of one Evaluate call. RateLimit is nil when no
// usage snapshot was supplied.
type Result struct {
	Original    string             `json:"-"`
	Sanitized   string             `json:"sanitized"`
	Findings    []Finding          `json:"findings"`
	RiskScore   int                `json:"risk_score"`
	Fingerprint string             `json:"fingerprint"`
	RateLimit   *RateLimitDecision `json:"rate_limit,omitempty"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}
