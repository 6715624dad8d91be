package mssqlmcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderReconnectsOnceAfterFailedAcquire(t *testing.T) {
	t.Parallel()
	conn := &fakeConnector{
		failures: []error{errFakeDial},
		exec:     alwaysTable(numberedTable(2)),
	}
	m := newTestEngine(t, conn, Config{})

	out, err := m.render(context.Background(), "test", "SELECT n", allRows)
	require.NoError(t, err)
	require.Equal(t, "| n |\n| --- |\n| 1 |\n| 2 |\n", out)
	require.Equal(t, 2, conn.connectCount())
	require.Equal(t, []string{"SELECT n"}, conn.executed())
}

func TestRenderFailsWhenReconnectFails(t *testing.T) {
	t.Parallel()
	conn := &fakeConnector{failures: []error{errFakeDial, errFakeDial, nil}}
	m := newTestEngine(t, conn, Config{})

	_, err := m.render(context.Background(), "test", "SELECT 1", allRows)
	require.ErrorIs(t, err, ErrConnection)
	require.Equal(t, 2, conn.connectCount())
	require.False(t, m.sessions.Connected())
	require.Empty(t, conn.executed())
}

func TestRenderQueryErrorNotRetried(t *testing.T) {
	t.Parallel()
	cause := errors.New("Invalid object name 'nope'.")
	conn := &fakeConnector{exec: func(string) (ResultStream, error) { return nil, cause }}
	m := newTestEngine(t, conn, Config{})

	_, err := m.render(context.Background(), "test", "SELECT * FROM nope", allRows)
	require.ErrorIs(t, err, ErrQuery)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "query error: Invalid object name 'nope'.", err.Error())
	require.Equal(t, 1, conn.connectCount())
	require.Len(t, conn.executed(), 1)
	require.True(t, m.sessions.Connected())
}

func TestRenderLostSessionIsDroppedNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	conn := &fakeConnector{exec: func(string) (ResultStream, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("%w: read tcp: EOF", ErrSessionLost)
		}
		return tableStream{table: numberedTable(1)}, nil
	}}
	m := newTestEngine(t, conn, Config{})

	_, err := m.render(context.Background(), "test", "SELECT 1", allRows)
	require.ErrorIs(t, err, ErrQuery)
	require.False(t, m.sessions.Connected())
	require.Equal(t, 1, conn.connectCount())

	_, err = m.render(context.Background(), "test", "SELECT 1", allRows)
	require.NoError(t, err)
	require.Equal(t, 2, conn.connectCount())
}

func TestRenderResultError(t *testing.T) {
	t.Parallel()
	cause := errors.New("unexpected token")
	conn := &fakeConnector{exec: func(string) (ResultStream, error) { return errStream{err: cause}, nil }}
	m := newTestEngine(t, conn, Config{})

	_, err := m.render(context.Background(), "test", "SELECT 1", allRows)
	require.ErrorIs(t, err, ErrResult)
	require.NotErrorIs(t, err, ErrQuery)
	require.Equal(t, "result error: unexpected token", err.Error())
}

func TestRenderAppliesSanitization(t *testing.T) {
	t.Parallel()
	table := &ResultTable{
		Columns: []string{"email", "note"},
		Rows: [][]sql.NullString{
			{valid("alice@example.com"), valid("bob@example.com")},
		},
	}

	conn := &fakeConnector{exec: alwaysTable(table)}
	m := newTestEngine(t, conn, Config{
		Sanitization: []SanitizationRule{
			{Column: "^email$", Pattern: `[^@]+@`, Replacement: "***@"},
		},
	})

	out, err := m.render(context.Background(), "test", "SELECT email, note", allRows)
	require.NoError(t, err)
	require.Contains(t, out, "| ***@example.com | bob@example.com |")
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()
	require.Equal(t, "short", truncateForLog("short", 10))
	require.Equal(t, "abc...[truncated]", truncateForLog("abcdef", 3))
	// "é" is two bytes; the cut moves back to the rune start.
	require.Equal(t, "a...[truncated]", truncateForLog("aéb", 2))
}
