//go:build integration

package mssqlmcp

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// These tests run against a real SQL Server configured through the TDS*
// environment variables:
//
//	TDSSERVER=localhost TDSPORT=1433 TDSUSER=sa TDSPASSWORD=... go test -tags integration ./...
func newIntegrationEngine(t *testing.T) *MssqlMcp {
	t.Helper()
	host := os.Getenv("TDSSERVER")
	if host == "" {
		t.Skip("TDSSERVER not set")
	}
	port := 1433
	if p := os.Getenv("TDSPORT"); p != "" {
		n, err := strconv.Atoi(p)
		require.NoError(t, err)
		port = n
	}
	connector := NewMssqlConnector(ConnectionConfig{
		Host:                   host,
		Port:                   port,
		User:                   os.Getenv("TDSUSER"),
		Password:               os.Getenv("TDSPASSWORD"),
		Database:               os.Getenv("TDSDATABASE"),
		TrustServerCertificate: true,
	}, testLogger())

	m, err := New(Config{}, connector, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestIntegration_ServerInfo(t *testing.T) {
	m := newIntegrationEngine(t)
	out, err := m.ServerInfo(context.Background())
	require.NoError(t, err)
	require.Contains(t, out, "| version | server_name | edition |")
	require.Contains(t, out, "Microsoft SQL Server")
}

func TestIntegration_ListDatabases(t *testing.T) {
	m := newIntegrationEngine(t)
	out, err := m.ListDatabases(context.Background())
	require.NoError(t, err)
	require.Contains(t, out, "| master |")
	require.Contains(t, out, "| tempdb |")
}

func TestIntegration_QueryTypes(t *testing.T) {
	m := newIntegrationEngine(t)
	out, err := m.Dispatch(context.Background(), "query", map[string]any{
		"sql": `SELECT CAST(42 AS int) AS i, CAST(1.50 AS decimal(5,2)) AS d,
    CAST('2024-03-09' AS date) AS dt, CAST(NULL AS nvarchar(10)) AS n,
    CAST(0xDEAD AS varbinary(2)) AS b,
    CAST('00112233-4455-6677-8899-AABBCCDDEEFF' AS uniqueidentifier) AS g`,
	})
	require.NoError(t, err)
	require.Contains(t, out, "| 42 | 1.50 | 2024-03-09 | NULL | 0xDEAD | 00112233-4455-6677-8899-AABBCCDDEEFF |")
}

func TestIntegration_QueryTruncates(t *testing.T) {
	m := newIntegrationEngine(t)
	out, err := m.Dispatch(context.Background(), "query", map[string]any{
		"sql":      "SELECT TOP 150 ROW_NUMBER() OVER (ORDER BY (SELECT NULL)) AS n FROM sys.all_objects",
		"max_rows": 100,
	})
	require.NoError(t, err)
	require.Equal(t, 100, dataLines(out))
	require.True(t, strings.HasSuffix(out, "_Showing 100 of 150 rows_\n"))
}

func TestIntegration_QueryPlan(t *testing.T) {
	m := newIntegrationEngine(t)
	out, err := m.Dispatch(context.Background(), "query_plan", map[string]any{"sql": "SELECT name FROM sys.databases"})
	require.NoError(t, err)
	require.Contains(t, out, "StmtText")
}

func TestIntegration_QueryError(t *testing.T) {
	m := newIntegrationEngine(t)
	_, err := m.Dispatch(context.Background(), "query", map[string]any{"sql": "SELECT * FROM no_such_table_xyz"})
	require.ErrorIs(t, err, ErrQuery)
	require.Contains(t, m.ErrorText(err), "list_tables")

	// The session survives a server-side error.
	require.True(t, m.sessions.Connected())
	_, err = m.ServerInfo(context.Background())
	require.NoError(t, err)
}

func TestIntegration_DescribeTable(t *testing.T) {
	m := newIntegrationEngine(t)
	out, err := m.Dispatch(context.Background(), "describe_table", map[string]any{
		"database": "master",
		"table":    "spt_monitor",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "## Columns\n\n| COLUMN_NAME |"))
	require.Contains(t, out, "## Foreign Keys")
}

func TestIntegration_BadLogin(t *testing.T) {
	if os.Getenv("TDSSERVER") == "" {
		t.Skip("TDSSERVER not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TDSPORT"))
	if port == 0 {
		port = 1433
	}
	connector := NewMssqlConnector(ConnectionConfig{
		Host:                   os.Getenv("TDSSERVER"),
		Port:                   port,
		User:                   "no_such_login",
		Password:               "wrong",
		TrustServerCertificate: true,
	}, testLogger())
	m, err := New(Config{}, connector, testLogger())
	require.NoError(t, err)

	_, err = m.ServerInfo(context.Background())
	require.ErrorIs(t, err, ErrConnection)
	require.Contains(t, m.ErrorText(err), "TDSUSER")
}
