package tsql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeLiteral(t *testing.T) {
	t.Parallel()
	require.Equal(t, "O''Brien", EscapeLiteral("O'Brien"))
	require.Equal(t, "''''", EscapeLiteral("''"))
	require.Equal(t, "plain", EscapeLiteral("plain"))
	require.Equal(t, "a]b", EscapeLiteral("a]b"))
}

func TestQuoteLiteral(t *testing.T) {
	t.Parallel()
	require.Equal(t, "'O''Brien'", QuoteLiteral("O'Brien"))
	require.Equal(t, "''", QuoteLiteral(""))
}

func TestQuoteIdentifier(t *testing.T) {
	t.Parallel()
	require.Equal(t, "[my]]db]", QuoteIdentifier("my]db"))
	require.Equal(t, "[O''Brien]", QuoteIdentifier("O'Brien"))
	require.Equal(t, "[a]]]]b'']", QuoteIdentifier("a]]b'"))
	require.Equal(t, "[[x]", QuoteIdentifier("[x"))
}

func TestUseDatabase(t *testing.T) {
	t.Parallel()
	require.Equal(t, "USE [sales];", UseDatabase("sales"))
	require.Equal(t, "USE [x]];DROP TABLE t;--];", UseDatabase("x];DROP TABLE t;--"))
}

func TestTableSizes_EscapesDatabase(t *testing.T) {
	t.Parallel()
	sql := TableSizes("my]db")
	require.True(t, strings.HasPrefix(sql, "USE [my]]db];"), sql)
	require.Contains(t, sql, "sys.allocation_units")

	sql = TableSizes("O'Brien")
	require.True(t, strings.HasPrefix(sql, "USE [O''Brien];"), sql)
}

func TestListTables(t *testing.T) {
	t.Parallel()
	sql := ListTables("my]db")
	require.True(t, strings.HasPrefix(sql, "USE [my]]db]; SELECT TABLE_SCHEMA"), sql)
	require.Contains(t, sql, "INFORMATION_SCHEMA.TABLES")
}

func TestDescribeColumns(t *testing.T) {
	t.Parallel()
	sql := DescribeColumns("sales", "dbo", "O'Brien")
	require.True(t, strings.HasPrefix(sql, "USE [sales];"), sql)
	require.Contains(t, sql, "WHERE c.TABLE_SCHEMA = 'dbo' AND c.TABLE_NAME = 'O''Brien'")
	require.Contains(t, sql, "IS_PRIMARY_KEY")
}

func TestDescribeForeignKeys(t *testing.T) {
	t.Parallel()
	sql := DescribeForeignKeys("sales", "it's", "orders")
	require.True(t, strings.HasPrefix(sql, "USE [sales];"), sql)
	require.Contains(t, sql, "OBJECT_ID('it''s.orders')")
}

func TestMissingIndexes(t *testing.T) {
	t.Parallel()
	all := MissingIndexes()
	require.Contains(t, all, "SELECT TOP 20")
	require.Contains(t, all, "WHERE 1=1 \nORDER BY improvement_measure DESC")
	require.NotContains(t, all, "AND DB_NAME")

	one := MissingIndexesIn("O'Brien")
	require.Contains(t, one, "AND DB_NAME(d.database_id) = 'O''Brien'")

	empty := MissingIndexesIn("")
	require.Contains(t, empty, "AND DB_NAME(d.database_id) = ''")
}

func TestReadOnlyQuery(t *testing.T) {
	t.Parallel()
	require.Equal(t,
		"SET TRANSACTION ISOLATION LEVEL READ UNCOMMITTED; SET NOCOUNT ON;\nSELECT 1",
		ReadOnlyQuery("SELECT 1"))
}

func TestShowPlan(t *testing.T) {
	t.Parallel()
	require.Equal(t,
		"SET SHOWPLAN_TEXT ON;\nSELECT 1\nSET SHOWPLAN_TEXT OFF;",
		ShowPlan("SELECT 1"))
}

func TestFixedStatements(t *testing.T) {
	t.Parallel()
	require.Equal(t, "SELECT name FROM sys.databases ORDER BY name", ListDatabases())
	require.Contains(t, ActiveSessions(), "sys.dm_exec_sessions")
	require.Contains(t, BlockingChains(), "r.blocking_session_id <> 0")
	require.Contains(t, ServerInfo(), "SERVERPROPERTY('Edition')")
}
