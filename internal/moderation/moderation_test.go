package moderation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holiday-service/internal/models"
)

func TestClassify(t *testing.T) {
	rules := []models.BannedWord{
		{Pattern: "Wire Transfer", Category: "scam"},
		{Pattern: `\b\d{3}-\d{4}\b`, Category: "contact_info", IsRegex: true},
		{Pattern: "transfer", Category: "money"},
		{Pattern: `pay\s*pal`, Category: "payment", IsRegex: true},
	}

	tests := []struct {
		name    string
		content string
		want    Verdict
	}{
		{name: "clean", content: "Looking forward to the roast!", want: Verdict{}},
		{name: "literal is case insensitive", content: "please send a WIRE transfer", want: Verdict{Flagged: true, Category: "scam"}},
		{name: "regex", content: "call me 555-1234", want: Verdict{Flagged: true, Category: "contact_info"}},
		{name: "first match wins", content: "wire transfer or transfer", want: Verdict{Flagged: true, Category: "scam"}},
		{name: "later literal", content: "bank transfer", want: Verdict{Flagged: true, Category: "money"}},
		{name: "regex is case insensitive", content: "send it via PayPal", want: Verdict{Flagged: true, Category: "payment"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.content, rules)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Classify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifySkipsMalformedRegex(t *testing.T) {
	rules := []models.BannedWord{
		{Pattern: "([unclosed", Category: "broken", IsRegex: true},
		{Pattern: "spam", Category: "spam"},
	}

	got := Classify("this is spam", rules)
	assert.Equal(t, Verdict{Flagged: true, Category: "spam"}, got)
	assert.Equal(t, models.ModerationFlagged, got.Status())
	require.NotNil(t, got.CategoryPtr())
	assert.Equal(t, "spam", *got.CategoryPtr())

	clean := Classify("fine", rules)
	assert.Equal(t, models.ModerationClean, clean.Status())
	assert.Nil(t, clean.CategoryPtr())
}

type stubRules struct {
	rules []models.BannedWord
	err   error
}

func (s stubRules) Rules(context.Context) ([]models.BannedWord, error) {
	return s.rules, s.err
}

func TestGateCheck(t *testing.T) {
	gate := NewGate(stubRules{rules: []models.BannedWord{{Pattern: "cash only", Category: "scam"}}})
	assert.True(t, gate.Check(context.Background(), "Cash only please").Flagged)

	failing := NewGate(stubRules{err: assert.AnError})
	assert.False(t, failing.Check(context.Background(), "cash only").Flagged)

	var nilGate *Gate
	assert.False(t, nilGate.Check(context.Background(), "cash only").Flagged)
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(strings.NewReader(`
rules:
  - pattern: " venmo me "
    category: scam
  - pattern: '\d{3}-\d{4}'
    category: contact_info
    regex: true
  - pattern: crypto
`))
	require.NoError(t, err)

	want := []models.BannedWord{
		{Pattern: "venmo me", Category: "scam"},
		{Pattern: `\d{3}-\d{4}`, Category: "contact_info", IsRegex: true},
		{Pattern: "crypto", Category: "other"},
	}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Fatalf("ParseRules() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRulesRejectsBadRegex(t *testing.T) {
	_, err := ParseRules(strings.NewReader(`
rules:
  - pattern: "(["
    regex: true
`))
	require.Error(t, err)
}
