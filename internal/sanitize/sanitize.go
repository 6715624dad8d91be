package sanitize

import (
	"database/sql"
	"fmt"
	"regexp"
)

// Rule masks cell text matching Pattern with Replacement. When Column is set,
// the rule only applies to result columns whose name matches it.
type Rule struct {
	Column      string
	Pattern     string
	Replacement string
}

type compiledRule struct {
	column      *regexp.Regexp
	pattern     *regexp.Regexp
	replacement string
}

// Sanitizer applies regex-based masking to rendered result cells.
type Sanitizer struct {
	rules []compiledRule
}

// NewSanitizer creates a new Sanitizer. Returns an error on invalid regex patterns.
func NewSanitizer(rules []Rule) (*Sanitizer, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sanitize: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, replacement: r.Replacement}
		if r.Column != "" {
			col, err := regexp.Compile(r.Column)
			if err != nil {
				return nil, fmt.Errorf("sanitize: invalid column pattern %q: %v", r.Column, err)
			}
			compiled[i].column = col
		}
	}
	return &Sanitizer{rules: compiled}, nil
}

// HasRules returns true if the sanitizer has any rules configured.
func (s *Sanitizer) HasRules() bool {
	return len(s.rules) > 0
}

// SanitizeRows rewrites every non-NULL cell in place. Cells are matched to
// column names positionally. NULL cells are left untouched.
func (s *Sanitizer) SanitizeRows(columns []string, rows [][]sql.NullString) {
	if !s.HasRules() {
		return
	}
	for _, row := range rows {
		for i := range row {
			if !row[i].Valid || i >= len(columns) {
				continue
			}
			row[i].String = s.sanitizeValue(columns[i], row[i].String)
		}
	}
}

func (s *Sanitizer) sanitizeValue(column, value string) string {
	for _, rule := range s.rules {
		if rule.column != nil && !rule.column.MatchString(column) {
			continue
		}
		value = rule.pattern.ReplaceAllString(value, rule.replacement)
	}
	return value
}
