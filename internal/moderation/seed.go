package moderation

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"holiday-service/internal/models"
)

type ruleFile struct {
	Rules []models.BannedWord `yaml:"rules"`
}

// LoadRulesFile reads a YAML rule seed file:
//
//	rules:
//	  - pattern: "venmo me"
//	    category: scam
//	  - pattern: "\\b\\d{3}-\\d{3}-\\d{4}\\b"
//	    category: contact_info
//	    regex: true
func LoadRulesFile(path string) ([]models.BannedWord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()
	return ParseRules(f)
}

// ParseRules decodes a YAML rule set and rejects blank patterns and regexes
// that do not compile, so bad rules never reach the store.
func ParseRules(r io.Reader) ([]models.BannedWord, error) {
	var file ruleFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return []models.BannedWord{}, nil
		}
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	out := make([]models.BannedWord, 0, len(file.Rules))
	for i, rule := range file.Rules {
		rule.Pattern = strings.TrimSpace(rule.Pattern)
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %d: pattern is required", i)
		}
		if rule.Category == "" {
			rule.Category = "other"
		}
		if rule.IsRegex {
			if _, err := compileRule(rule.Pattern); err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
		}
		out = append(out, rule)
	}
	return out, nil
}
