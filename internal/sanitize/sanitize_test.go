package sanitize

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

var phoneRule = Rule{
	Pattern:     `(\+\d{2})\d+(\d{3})`,
	Replacement: "${1}xxx${2}",
}

var nationalIDRule = Rule{
	Column:      `(?i)^(ssn|national_id)$`,
	Pattern:     `\d{5}(\d{4})`,
	Replacement: "*****${1}",
}

func cell(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestSanitizePhoneNumber(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer([]Rule{phoneRule})
	require.NoError(t, err)
	require.Equal(t, "+62xxx447", s.sanitizeValue("phone", "+62821233447"))
}

func TestNoMatch(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer([]Rule{phoneRule})
	require.NoError(t, err)
	require.Equal(t, "hello world", s.sanitizeValue("greeting", "hello world"))
}

func TestMultipleRulesOrdering(t *testing.T) {
	t.Parallel()
	// Second rule sees the output of the first.
	s, err := NewSanitizer([]Rule{
		phoneRule,
		{Pattern: `xxx`, Replacement: "***"},
	})
	require.NoError(t, err)
	require.Equal(t, "+62***447", s.sanitizeValue("phone", "+62821233447"))
}

func TestColumnScopedRule(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer([]Rule{nationalIDRule})
	require.NoError(t, err)
	require.Equal(t, "*****6789", s.sanitizeValue("SSN", "123456789"))
	require.Equal(t, "123456789", s.sanitizeValue("order_number", "123456789"))
}

func TestSanitizeRows(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer([]Rule{phoneRule, nationalIDRule})
	require.NoError(t, err)

	columns := []string{"name", "phone", "ssn"}
	rows := [][]sql.NullString{
		{cell("Ann"), cell("+62821233447"), cell("123456789")},
		{cell("Bob"), {}, cell("987654321")},
	}
	s.SanitizeRows(columns, rows)

	require.Equal(t, "Ann", rows[0][0].String)
	require.Equal(t, "+62xxx447", rows[0][1].String)
	require.Equal(t, "*****6789", rows[0][2].String)
	require.False(t, rows[1][1].Valid, "NULL cells stay NULL")
	require.Equal(t, "", rows[1][1].String)
	require.Equal(t, "*****4321", rows[1][2].String)
}

func TestSanitizeRowsWithoutRules(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer(nil)
	require.NoError(t, err)
	require.False(t, s.HasRules())

	rows := [][]sql.NullString{{cell("+62821233447")}}
	s.SanitizeRows([]string{"phone"}, rows)
	require.Equal(t, "+62821233447", rows[0][0].String)
}

func TestNewSanitizerErrorsOnInvalidRegex(t *testing.T) {
	t.Parallel()
	_, err := NewSanitizer([]Rule{{Pattern: `[invalid`, Replacement: "x"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid regex pattern")
	require.Contains(t, err.Error(), "[invalid")

	_, err = NewSanitizer([]Rule{{Column: `(`, Pattern: `x`}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid column pattern")
}
