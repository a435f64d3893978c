package compliance

import (
	"strings"
	"testing"

	"github.com/marketguard/listing-sentinel/internal/rules"
)

func TestSanitize_BannedReplacement(t *testing.T) {
	set := rules.Default()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"replacement from table", "what a steal", "what a great value"},
		{"case insensitive", "what a STEAL", "what a great value"},
		{"no replacement means delete", "total blowout sale", "total  sale"},
		{"boundary respected", "a stealth watch", "a stealth watch"},
		{"multi-word phrase", "URGENT SALE today", "available today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input, set)
			if got != strings.TrimSpace(tt.want) {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, strings.TrimSpace(tt.want))
			}
		})
	}
}

func TestSanitize_WarningReplacement(t *testing.T) {
	got := Sanitize("send offer if interested", rules.Default())
	want := "DM for details if interested"
	if got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitize_PhoneAndURL(t *testing.T) {
	set := rules.Default()

	got := Sanitize("call 555-123-4567 or visit https://example.com/listing", set)
	if strings.Contains(got, "555") {
		t.Errorf("raw phone digits survived: %q", got)
	}
	if !strings.Contains(got, "[DM for contact]") {
		t.Errorf("phone replacement missing: %q", got)
	}
	if strings.Contains(got, "example.com") {
		t.Errorf("raw URL survived: %q", got)
	}
	if !strings.Contains(got, "[link removed for compliance]") {
		t.Errorf("URL replacement missing: %q", got)
	}
}

func TestSanitize_EmojiCap(t *testing.T) {
	set := rules.Default() // MaxEmojis: 3

	input := "Nice \U0001F525 watch \U0001F48E for \U0001F3AF sale \U0001F680 today \U0001F389"
	got := Sanitize(input, set)

	found := rules.EmojiPattern.FindAllString(got, -1)
	if len(found) != 3 {
		t.Fatalf("output has %d emoji, want 3: %q", len(found), got)
	}

	// First three in original relative order, as one trailing cluster.
	wantCluster := "\U0001F525\U0001F48E\U0001F3AF"
	if !strings.HasSuffix(got, " "+wantCluster) {
		t.Errorf("output does not end with trailing cluster %q: %q", wantCluster, got)
	}

	// At or under the cap, the text is left alone.
	under := "Nice \U0001F525 watch \U0001F48E"
	if got := Sanitize(under, set); got != under {
		t.Errorf("under-cap input was rewritten: %q", got)
	}
}

func TestSanitize_CapsSoftening(t *testing.T) {
	set := rules.Default()

	tests := []struct {
		input string
		want  string
	}{
		{"AMAZING deal", "Amazing deal"},
		{"this is HUGE NEWS", "this is Huge News"},
		{"NEW car", "NEW car"}, // 3 letters, not shouting
		{"iPhone 15 PRO MAX", "iPhone 15 PRO MAX"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Sanitize(tt.input, set); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_Punctuation(t *testing.T) {
	set := rules.Default() // MaxExclamations: 2

	tests := []struct {
		input string
		want  string
	}{
		{"Wow!!!!!", "Wow!!"},
		{"Wow!!", "Wow!!"},
		{"Really?????", "Really??"},
		{"Mixed!!! and ???", "Mixed!! and ??"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Sanitize(tt.input, set); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_NewlineCollapse(t *testing.T) {
	got := Sanitize("line one\n\n\n\n\nline two", rules.Default())
	want := "line one\n\nline two"
	if got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}

	// Three newlines are under the threshold and pass through.
	got = Sanitize("a\n\n\nb", rules.Default())
	if got != "a\n\n\nb" {
		t.Errorf("Sanitize = %q, want %q", got, "a\n\n\nb")
	}
}

func TestSanitize_Trim(t *testing.T) {
	if got := Sanitize("  spaced out \n", rules.Default()); got != "spaced out" {
		t.Errorf("Sanitize = %q, want %q", got, "spaced out")
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	set := rules.Default()

	inputs := []string{
		"",
		"plain listing text, nothing risky",
		"URGENT SALE!!! Rolex Submariner, call 555-123-4567, https://example.com, don't miss this steal!!!",
		"send offer \U0001F525\U0001F48E\U0001F3AF\U0001F680\U0001F389 HURRY!!!!",
		"DM for details and [DM for contact] and [link removed for compliance]",
		"line\n\n\n\n\n\nbreaks????? everywhere",
	}

	for _, input := range inputs {
		once := Sanitize(input, set)
		twice := Sanitize(once, set)
		if once != twice {
			t.Errorf("not idempotent for %q:\n once: %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestSanitize_ZeroEmojiCap(t *testing.T) {
	cfg := rules.DefaultConfig()
	cfg.Limits.MaxEmojis = 0
	set, err := rules.New(cfg)
	if err != nil {
		t.Fatalf("rules.New: %v", err)
	}

	got := Sanitize("deal \U0001F525\U0001F48E", set)
	if rules.EmojiPattern.MatchString(got) {
		t.Errorf("emoji survived a zero cap: %q", got)
	}
	if got != "deal" {
		t.Errorf("Sanitize = %q, want %q", got, "deal")
	}
}
