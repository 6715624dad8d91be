package mssqlmcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var errFakeDial = errors.New("dial tcp fake:1433: connection refused")

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

// execFunc decides what a fake session returns for a statement.
type execFunc func(sql string) (ResultStream, error)

type tableStream struct {
	table *ResultTable
}

func (s tableStream) FirstResultSet() (*ResultTable, error) {
	return s.table, nil
}

type errStream struct {
	err error
}

func (s errStream) FirstResultSet() (*ResultTable, error) {
	return nil, s.err
}

// fakeConnector hands out fakeSessions. Each entry of failures is returned by
// one Connect call, in order, before connects start succeeding; a nil entry
// succeeds.
type fakeConnector struct {
	mu       sync.Mutex
	failures []error
	exec     execFunc
	connects int
	sessions []*fakeSession
}

func (c *fakeConnector) Connect(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if len(c.failures) > 0 {
		err := c.failures[0]
		c.failures = c.failures[1:]
		if err != nil {
			return nil, err
		}
	}
	s := &fakeSession{exec: c.exec}
	c.sessions = append(c.sessions, s)
	return s, nil
}

func (c *fakeConnector) Address() string {
	return "fake:1433"
}

func (c *fakeConnector) connectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

// executed returns every statement run on any session, in order.
func (c *fakeConnector) executed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var all []string
	for _, s := range c.sessions {
		all = append(all, s.statements()...)
	}
	return all
}

type fakeSession struct {
	mu       sync.Mutex
	exec     execFunc
	executed []string
	closed   bool
}

func (s *fakeSession) Execute(ctx context.Context, sql string) (ResultStream, error) {
	s.mu.Lock()
	s.executed = append(s.executed, sql)
	s.mu.Unlock()
	if s.exec == nil {
		return tableStream{table: &ResultTable{}}, nil
	}
	return s.exec(sql)
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executed...)
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// numberedTable returns a one-column table with rows "1".."n".
func numberedTable(n int) *ResultTable {
	t := &ResultTable{Columns: []string{"n"}}
	for i := 1; i <= n; i++ {
		t.Rows = append(t.Rows, []sql.NullString{valid(fmt.Sprint(i))})
	}
	return t
}

// alwaysTable answers every statement with table.
func alwaysTable(table *ResultTable) execFunc {
	return func(string) (ResultStream, error) {
		return tableStream{table: table}, nil
	}
}

func newTestEngine(t *testing.T, connector *fakeConnector, config Config, opts ...Option) *MssqlMcp {
	t.Helper()
	m, err := New(config, connector, testLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

// dataLines counts rendered table rows, excluding header and separator.
func dataLines(rendered string) int {
	n := 0
	for i, line := range strings.Split(rendered, "\n") {
		if i < 2 || !strings.HasPrefix(line, "|") {
			continue
		}
		n++
	}
	return n
}
