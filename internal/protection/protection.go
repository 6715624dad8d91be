// Package protection implements the read-only gate applied to caller-supplied
// SQL before it reaches SQL Server.
//
// The gate is a whole-word keyword scan, not a parser. It does not understand
// string literals, comments or quoted identifiers, so:
//
//   - a literal equal to a blocked keyword is rejected (SELECT 'DELETE')
//   - a keyword glued to another word is not caught (DROPTABLE, DROP;TABLE)
//   - a keyword glued to the previous statement is not caught (SELECT 1;DROP TABLE x)
//
// It is a best-effort deterrent against accidental writes, not a security
// boundary. Run the server with a login that only has read permissions.
package protection

import (
	"errors"
	"strings"
	"unicode"
)

// ErrWriteOperation is returned by Check when a blocked keyword is found.
var ErrWriteOperation = errors.New("write operations are not allowed, only SELECT and read-only queries are permitted")

// BlockedKeywords are the statement keywords that make a query non-read-only.
var BlockedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "TRUNCATE", "EXEC", "EXECUTE",
}

var blocked = func() map[string]struct{} {
	m := make(map[string]struct{}, len(BlockedKeywords))
	for _, k := range BlockedKeywords {
		m[k] = struct{}{}
	}
	return m
}()

// IsReadOnly reports whether sql contains none of the blocked keywords as a
// whitespace-separated token. Leading and trailing punctuation is trimmed
// from each token before comparison.
func IsReadOnly(sql string) bool {
	_, found := FirstBlocked(sql)
	return !found
}

// FirstBlocked returns the first blocked keyword found in sql.
func FirstBlocked(sql string) (string, bool) {
	for _, token := range strings.Fields(strings.ToUpper(sql)) {
		word := strings.TrimFunc(token, isNotAlphanumeric)
		if _, ok := blocked[word]; ok {
			return word, true
		}
	}
	return "", false
}

// Check returns ErrWriteOperation if sql is not read-only.
func Check(sql string) error {
	if !IsReadOnly(sql) {
		return ErrWriteOperation
	}
	return nil
}

func isNotAlphanumeric(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
