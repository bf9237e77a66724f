// Package moderation classifies message content against banned-word rules.
package moderation

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"holiday-service/internal/models"
)

// Verdict is the outcome of classifying one piece of content.
type Verdict struct {
	Flagged  bool
	Category string
}

// Status maps the verdict onto the stored moderation tag.
func (v Verdict) Status() models.ModerationStatus {
	if v.Flagged {
		return models.ModerationFlagged
	}
	return models.ModerationClean
}

// CategoryPtr returns the category for storage, nil when clean.
func (v Verdict) CategoryPtr() *string {
	if !v.Flagged || v.Category == "" {
		return nil
	}
	c := v.Category
	return &c
}

// RulesProvider supplies the current rule set. Rules are owned by an admin
// surface and may change between calls.
type RulesProvider interface {
	Rules(ctx context.Context) ([]models.BannedWord, error)
}

// Classify runs content through the rules in order; the first match wins.
// Literal and regex rules both ignore case. Regex rules that fail to compile
// are skipped.
func Classify(content string, rules []models.BannedWord) Verdict {
	lowered := strings.ToLower(content)
	for _, rule := range rules {
		if rule.Pattern == "" {
			continue
		}
		if rule.IsRegex {
			re, err := compileRule(rule.Pattern)
			if err != nil {
				log.Warn().Err(err).Str("pattern", rule.Pattern).Msg("moderation: skipping malformed rule")
				continue
			}
			if re.MatchString(content) {
				return Verdict{Flagged: true, Category: rule.Category}
			}
			continue
		}
		if strings.Contains(lowered, strings.ToLower(rule.Pattern)) {
			return Verdict{Flagged: true, Category: rule.Category}
		}
	}
	return Verdict{}
}

// compileRule compiles a regex rule case-insensitively. A pattern may still
// opt back into case sensitivity with its own (?-i) flag.
func compileRule(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// Gate loads rules from a provider and classifies content. A provider failure
// degrades to a clean verdict so that moderation never blocks messaging.
type Gate struct {
	rules RulesProvider
}

// NewGate constructs a Gate. A nil provider classifies everything clean.
func NewGate(rules RulesProvider) *Gate {
	return &Gate{rules: rules}
}

// Check classifies content with the current rule set.
func (g *Gate) Check(ctx context.Context, content string) Verdict {
	if g == nil || g.rules == nil {
		return Verdict{}
	}
	rules, err := g.rules.Rules(ctx)
	if err != nil {
		log.Error().Err(err).Msg("moderation: load rules failed")
		return Verdict{}
	}
	return Classify(content, rules)
}
