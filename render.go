package mssqlmcp

import (
	"fmt"
	"strings"
)

// Fixed outputs for result sets that cannot be drawn as a table.
const (
	noResults = "(no results)"
	noColumns = "(no columns returned)"
)

// renderMarkdown draws table as a pipe table. At most maxRows rows are drawn
// unless maxRows is negative; a truncated table ends with a note giving the
// shown and total row counts.
func renderMarkdown(table *ResultTable, maxRows int) string {
	if len(table.Rows) == 0 {
		return noResults
	}
	if len(table.Columns) == 0 {
		return noColumns
	}

	shown := len(table.Rows)
	if maxRows >= 0 && maxRows < shown {
		shown = maxRows
	}

	var b strings.Builder
	b.WriteByte('|')
	for _, col := range table.Columns {
		b.WriteString(" " + col + " |")
	}
	b.WriteByte('\n')

	b.WriteByte('|')
	for range table.Columns {
		b.WriteString(" --- |")
	}
	b.WriteByte('\n')

	for _, row := range table.Rows[:shown] {
		b.WriteByte('|')
		for i := range table.Columns {
			cell := "NULL"
			if i < len(row) && row[i].Valid {
				cell = row[i].String
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteByte('\n')
	}

	if shown < len(table.Rows) {
		fmt.Fprintf(&b, "\n_Showing %d of %d rows_\n", shown, len(table.Rows))
	}
	return b.String()
}
