// Package errprompt appends guidance to tool error messages so an agent can
// recover without asking the user.
package errprompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule maps an error message pattern to a guidance message.
type Rule struct {
	Pattern string
	Message string
}

// Defaults are the SQL Server hints every matcher starts with. Configured
// rules are evaluated after them.
func Defaults() []Rule {
	return []Rule{
		{Pattern: `(?i)invalid object name`, Message: "The object does not exist in the current database. Use list_tables with the right database, and qualify names as [database].[schema].[table]."},
		{Pattern: `(?i)database '.*' does not exist|cannot open database`, Message: "Use list_databases to see which databases exist and are accessible."},
		{Pattern: `(?i)invalid column name`, Message: "Use describe_table to see the columns of the table."},
		{Pattern: `(?i)login failed`, Message: "The server rejected the credentials. Ask the user to check TDSUSER and TDSPASSWORD."},
		{Pattern: `(?i)write operations are not allowed`, Message: "Only read-only statements can be run. Rewrite the query as a SELECT."},
	}
}

type compiledRule struct {
	pattern *regexp.Regexp
	message string
}

// Matcher checks error messages against patterns.
type Matcher struct {
	rules []compiledRule
}

// NewMatcher compiles rules in order. Returns an error on invalid regex patterns.
func NewMatcher(rules []Rule) (*Matcher, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("errprompt: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, message: r.Message}
	}
	return &Matcher{rules: compiled}, nil
}

// Match evaluates every rule top to bottom. It returns the messages of the
// matching rules joined with newlines, and the patterns that matched.
func (m *Matcher) Match(errMsg string) (string, []string) {
	var messages, patterns []string
	for _, rule := range m.rules {
		if rule.pattern.MatchString(errMsg) {
			messages = append(messages, rule.message)
			patterns = append(patterns, rule.pattern.String())
		}
	}
	return strings.Join(messages, "\n"), patterns
}

// Annotate returns errMsg followed by a blank line and the matching guidance,
// or errMsg unchanged when nothing matches.
func (m *Matcher) Annotate(errMsg string) string {
	prompt, _ := m.Match(errMsg)
	if prompt == "" {
		return errMsg
	}
	return errMsg + "\n\n" + prompt
}
