package models

// BannedWord is a moderation rule: a literal case-insensitive substring or a regular expression.
type BannedWord struct {
	ID       int    `db:"id" json:"id" yaml:"-"`
	Pattern  string `db:"pattern" json:"pattern" yaml:"pattern"`
	Category string `db:"category" json:"category" yaml:"category"`
	IsRegex  bool   `db:"is_regex" json:"is_regex" yaml:"regex"`
}
