// Package compliance implements the listing compliance engine: detection of
// risky phrasing, the sanitization rewrite pipeline, the posting rate
// policy, and the orchestrating Engine that external collaborators call.
// Everything here is a pure function of its inputs plus the immutable rule
// set, so an Engine is safe for unlimited concurrent use.
package compliance

import (
	"fmt"
	"time"

	"github.com/marketguard/listing-sentinel/internal/rules"
	"go.uber.org/zap"
)

// DefaultMaxInputBytes bounds per-call latency; several passes are
// O(n x phrases), so unbounded input is rejected rather than scanned.
const DefaultMaxInputBytes = 64 * 1024

const riskPerFinding = 20

// InputError reports input rejected at the Evaluate boundary. No partial
// result accompanies it.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "compliance: invalid input: " + e.Reason
}

// Engine ties the detector, sanitizer, and rate policy into a single
// request/response call.
type Engine struct {
	rules    *rules.Set
	maxInput int
	logger   *zap.Logger
}

// New creates an engine bound to an immutable rule set. maxInputBytes <= 0
// selects DefaultMaxInputBytes.
func New(rs *rules.Set, maxInputBytes int, log *zap.Logger) *Engine {
	if maxInputBytes <= 0 {
		maxInputBytes = DefaultMaxInputBytes
	}
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("Compliance engine initialized",
		zap.Int("banned_phrases", len(rs.Banned())),
		zap.Int("warning_phrases", len(rs.Warning())),
		zap.Int("max_input_bytes", maxInputBytes),
	)

	return &Engine{rules: rs, maxInput: maxInputBytes, logger: log}
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() *rules.Set { return e.rules }

// Evaluate runs the full pipeline over text. Detection runs on the original,
// unmodified text, so findings describe what the user wrote, not what will be
// sent. A nil usage snapshot simply leaves the rate-limit decision out of
// the result. The only failure mode is oversized input, reported as
// *InputError.
func (e *Engine) Evaluate(text string, usage *UsageCounts) (*Result, error) {
	if len(text) > e.maxInput {
		return nil, &InputError{Reason: fmt.Sprintf("text is %d bytes, limit is %d", len(text), e.maxInput)}
	}

	findings := Detect(text, e.rules)
	sanitized := Sanitize(text, e.rules)

	score := len(findings) * riskPerFinding
	if score > 100 {
		score = 100
	}

	result := &Result{
		Original:    text,
		Sanitized:   sanitized,
		Findings:    findings,
		RiskScore:   score,
		Fingerprint: Fingerprint(text),
		EvaluatedAt: time.Now(),
	}

	if usage != nil {
		decision := CheckRateLimit(*usage, e.rules)
		result.RateLimit = &decision
	}

	e.logger.Debug("Listing evaluated",
		zap.Int("findings", len(findings)),
		zap.Int("risk_score", score),
		zap.String("fingerprint", result.Fingerprint),
		zap.Bool("rate_checked", usage != nil),
	)

	return result, nil
}
