package compliance

import (
	"errors"
	"strings"
	"testing"

	"github.com/marketguard/listing-sentinel/internal/rules"
	"go.uber.org/zap"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return New(rules.Default(), 0, zap.NewNop())
}

func TestEvaluate_EndToEnd(t *testing.T) {
	engine := testEngine(t)

	input := "URGENT SALE!!! Rolex Submariner, call 555-123-4567, https://example.com, don't miss this steal!!!"
	result, err := engine.Evaluate(input, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if strings.Contains(result.Sanitized, "555-123-4567") {
		t.Errorf("raw phone survived: %q", result.Sanitized)
	}
	if !strings.Contains(result.Sanitized, "[DM for contact]") {
		t.Errorf("phone replacement missing: %q", result.Sanitized)
	}
	if strings.Contains(result.Sanitized, "https://") {
		t.Errorf("raw URL survived: %q", result.Sanitized)
	}
	if !strings.Contains(result.Sanitized, "[link removed for compliance]") {
		t.Errorf("URL replacement missing: %q", result.Sanitized)
	}
	if strings.Contains(strings.ToLower(result.Sanitized), "urgent sale") {
		t.Errorf("banned phrase survived: %q", result.Sanitized)
	}
	if !strings.Contains(result.Sanitized, "great value") {
		t.Errorf(`"steal" not replaced per the table: %q`, result.Sanitized)
	}
	if strings.Contains(result.Sanitized, "!!!") {
		t.Errorf("exclamations not collapsed: %q", result.Sanitized)
	}

	if len(result.Findings) == 0 {
		t.Fatal("findings empty for a flagrantly risky listing")
	}
	high := false
	for _, f := range result.Findings {
		if f.Severity == SeverityHigh {
			high = true
		}
	}
	if !high {
		t.Error("no high-severity finding reported")
	}
	if result.RiskScore <= 0 || result.RiskScore > 100 {
		t.Errorf("risk score %d out of range", result.RiskScore)
	}
	if result.RateLimit != nil {
		t.Error("RateLimit should be nil without a usage snapshot")
	}
	if result.Original != input {
		t.Error("original text not preserved on the result")
	}
}

func TestEvaluate_RiskScore(t *testing.T) {
	engine := testEngine(t)

	t.Run("clean text scores zero", func(t *testing.T) {
		result, err := engine.Evaluate("2019 Omega Seamaster, excellent condition, box and papers", nil)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if result.RiskScore != 0 {
			t.Errorf("RiskScore = %d, want 0 (findings: %v)", result.RiskScore, result.Findings)
		}
	})

	t.Run("twenty points per finding", func(t *testing.T) {
		result, err := engine.Evaluate("what a steal, best offer wins", nil)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if want := len(result.Findings) * 20; result.RiskScore != want {
			t.Errorf("RiskScore = %d, want %d", result.RiskScore, want)
		}
	})

	t.Run("monotonic and clamped", func(t *testing.T) {
		base := "steal"
		prev := 0
		// Stack more banned phrases onto the text; the score never drops
		// and never escapes [0,100].
		for _, extra := range []string{" hurry", " blowout", " clearance", " fire sale", " act now", " get rich"} {
			base += extra
			result, err := engine.Evaluate(base, nil)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", base, err)
			}
			if result.RiskScore < prev {
				t.Errorf("score dropped from %d to %d at %q", prev, result.RiskScore, base)
			}
			if result.RiskScore > 100 {
				t.Errorf("score %d exceeds 100", result.RiskScore)
			}
			prev = result.RiskScore
		}
		if prev != 100 {
			t.Errorf("final stacked score = %d, want clamped 100", prev)
		}
	})
}

func TestEvaluate_WithUsage(t *testing.T) {
	engine := testEngine(t)

	result, err := engine.Evaluate("clean listing", &UsageCounts{CopiesLastHour: 50, CopiesToday: 10})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.RateLimit == nil {
		t.Fatal("RateLimit missing despite usage snapshot")
	}
	if result.RateLimit.Allowed {
		t.Error("50 copies in the last hour must be denied at max 50")
	}
}

func TestEvaluate_OversizeInput(t *testing.T) {
	engine := New(rules.Default(), 128, zap.NewNop())

	_, err := engine.Evaluate(strings.Repeat("x", 129), nil)
	if err == nil {
		t.Fatal("oversize input accepted")
	}
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Errorf("error type = %T, want *InputError", err)
	}

	if _, err := engine.Evaluate(strings.Repeat("x", 128), nil); err != nil {
		t.Errorf("input at the limit rejected: %v", err)
	}
}

func TestEvaluate_EmptyText(t *testing.T) {
	result, err := testEngine(t).Evaluate("", nil)
	if err != nil {
		t.Fatalf("Evaluate(\"\"): %v", err)
	}
	if result.Sanitized != "" || len(result.Findings) != 0 || result.RiskScore != 0 {
		t.Errorf("unexpected result for empty text: %+v", result)
	}
}

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		s := "1985 Rolex GMT, unpolished"
		if Fingerprint(s) != Fingerprint(s) {
			t.Error("same input produced different fingerprints")
		}
	})

	t.Run("distinct inputs diverge", func(t *testing.T) {
		if Fingerprint("listing one") == Fingerprint("listing two") {
			t.Error("distinct inputs collided")
		}
	})

	t.Run("reference values", func(t *testing.T) {
		// Values produced by the 31-base signed-32-bit rolling hash,
		// base-36 encoded.
		tests := []struct {
			input string
			want  string
		}{
			{"", "0"},
			{"a", "2p"},
			{"ab", "2e9"},
		}
		for _, tt := range tests {
			if got := Fingerprint(tt.input); got != tt.want {
				t.Errorf("Fingerprint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		}
	})

	t.Run("order sensitive", func(t *testing.T) {
		if Fingerprint("ab") == Fingerprint("ba") {
			t.Error("fingerprint ignores character order")
		}
	})
}

func TestEngine_ConcurrentEvaluate(t *testing.T) {
	engine := testEngine(t)
	text := "URGENT SALE!!! best offer, call 555-123-4567"

	baseline, err := engine.Evaluate(text, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				result, err := engine.Evaluate(text, nil)
				if err != nil {
					done <- err
					return
				}
				if result.Sanitized != baseline.Sanitized || result.Fingerprint != baseline.Fingerprint {
					done <- errors.New("concurrent evaluation diverged from baseline")
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
