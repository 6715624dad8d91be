package mssqlmcp

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// render executes sql on the managed session and draws its first result set.
// A failed acquire gets exactly one forced reconnect; execute and read
// failures are not retried.
func (p *MssqlMcp) render(ctx context.Context, tool, sql string, maxRows int) (string, error) {
	start := time.Now()

	session, err := p.sessions.Acquire(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Str("tool", tool).Msg("acquire failed, forcing reconnect")
		session, err = p.sessions.ForceReconnect(ctx)
		if err != nil {
			return "", err
		}
	}

	stream, err := session.Execute(ctx, sql)
	if err != nil {
		p.invalidateIfLost(err)
		return "", fmt.Errorf("%w: %w", ErrQuery, err)
	}

	table, err := stream.FirstResultSet()
	if err != nil {
		p.invalidateIfLost(err)
		return "", fmt.Errorf("%w: %w", ErrResult, err)
	}

	p.sanitizer.SanitizeRows(table.Columns, table.Rows)

	p.logger.Debug().
		Str("tool", tool).
		Str("sql", truncateForLog(sql, 200)).
		Int("row_count", len(table.Rows)).
		Dur("duration", time.Since(start)).
		Msg("query executed")

	return renderMarkdown(table, maxRows), nil
}

func (p *MssqlMcp) invalidateIfLost(err error) {
	if errors.Is(err, ErrSessionLost) {
		p.sessions.Invalidate()
	}
}

// truncateForLog cuts s to at most maxLen bytes on a rune boundary.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...[truncated]"
}
