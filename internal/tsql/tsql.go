// Package tsql builds the T-SQL text for the catalog tools.
//
// Every caller-supplied value is interpolated through EscapeLiteral or
// QuoteIdentifier. No other structural variation exists in the templates.
package tsql

import (
	"fmt"
	"strings"
)

// EscapeLiteral doubles every single quote so s can sit inside '...'.
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// QuoteLiteral returns s as a single-quoted string literal.
func QuoteLiteral(s string) string {
	return "'" + EscapeLiteral(s) + "'"
}

// QuoteIdentifier returns s as a bracketed identifier. Closing brackets are
// doubled, and so are single quotes.
func QuoteIdentifier(s string) string {
	return "[" + strings.ReplaceAll(EscapeLiteral(s), "]", "]]") + "]"
}

// UseDatabase returns the statement that switches the session to db.
func UseDatabase(db string) string {
	return "USE " + QuoteIdentifier(db) + ";"
}

// ReadOnlyQuery prefixes sql with the dirty-read isolation level and row
// count suppression.
func ReadOnlyQuery(sql string) string {
	return "SET TRANSACTION ISOLATION LEVEL READ UNCOMMITTED; SET NOCOUNT ON;\n" + sql
}

// ShowPlan wraps sql so the server returns its estimated plan as text.
func ShowPlan(sql string) string {
	return "SET SHOWPLAN_TEXT ON;\n" + sql + "\nSET SHOWPLAN_TEXT OFF;"
}

// ListDatabases returns every database on the instance.
func ListDatabases() string {
	return "SELECT name FROM sys.databases ORDER BY name"
}

// ListTables returns tables and views of db.
func ListTables(db string) string {
	return UseDatabase(db) + ` SELECT TABLE_SCHEMA, TABLE_NAME, TABLE_TYPE
FROM INFORMATION_SCHEMA.TABLES ORDER BY TABLE_SCHEMA, TABLE_NAME`
}

const describeColumnsSQL = `%s

SELECT
    c.COLUMN_NAME,
    c.DATA_TYPE,
    c.CHARACTER_MAXIMUM_LENGTH,
    c.NUMERIC_PRECISION,
    c.NUMERIC_SCALE,
    c.IS_NULLABLE,
    CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'YES' ELSE 'NO' END AS IS_PRIMARY_KEY
FROM INFORMATION_SCHEMA.COLUMNS c
LEFT JOIN (
    SELECT ku.TABLE_SCHEMA, ku.TABLE_NAME, ku.COLUMN_NAME
    FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
    JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku
        ON tc.CONSTRAINT_NAME = ku.CONSTRAINT_NAME
        AND tc.TABLE_SCHEMA = ku.TABLE_SCHEMA
    WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
) pk ON c.TABLE_SCHEMA = pk.TABLE_SCHEMA
    AND c.TABLE_NAME = pk.TABLE_NAME
    AND c.COLUMN_NAME = pk.COLUMN_NAME
WHERE c.TABLE_SCHEMA = %s AND c.TABLE_NAME = %s
ORDER BY c.ORDINAL_POSITION`

// DescribeColumns returns the columns of schema.table in db with a primary
// key flag.
func DescribeColumns(db, schema, table string) string {
	return fmt.Sprintf(describeColumnsSQL, UseDatabase(db), QuoteLiteral(schema), QuoteLiteral(table))
}

const describeForeignKeysSQL = `%s

SELECT
    fk.name AS FK_NAME,
    COL_NAME(fkc.parent_object_id, fkc.parent_column_id) AS COLUMN_NAME,
    OBJECT_SCHEMA_NAME(fkc.referenced_object_id) AS REF_SCHEMA,
    OBJECT_NAME(fkc.referenced_object_id) AS REF_TABLE,
    COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id) AS REF_COLUMN
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
WHERE fk.parent_object_id = OBJECT_ID('%s.%s')
ORDER BY fk.name`

// DescribeForeignKeys returns the foreign keys declared on schema.table in db.
func DescribeForeignKeys(db, schema, table string) string {
	return fmt.Sprintf(describeForeignKeysSQL, UseDatabase(db), EscapeLiteral(schema), EscapeLiteral(table))
}

// ActiveSessions returns user sessions joined with their running request.
func ActiveSessions() string {
	return `SELECT s.session_id, s.login_name, s.status,
    r.command, r.wait_type, r.blocking_session_id,
    s.cpu_time, s.reads, s.writes
FROM sys.dm_exec_sessions s
LEFT JOIN sys.dm_exec_requests r ON s.session_id = r.session_id
WHERE s.is_user_process = 1
ORDER BY s.cpu_time DESC`
}

// BlockingChains returns requests that are waiting on another session.
func BlockingChains() string {
	return `SELECT
    r.session_id AS blocked_session,
    r.blocking_session_id AS blocking_session,
    s.login_name AS blocked_login,
    bs.login_name AS blocking_login,
    r.wait_type,
    r.wait_time,
    r.status AS blocked_status,
    r.command AS blocked_command
FROM sys.dm_exec_requests r
JOIN sys.dm_exec_sessions s ON r.session_id = s.session_id
LEFT JOIN sys.dm_exec_sessions bs ON r.blocking_session_id = bs.session_id
WHERE r.blocking_session_id <> 0
ORDER BY r.blocking_session_id, r.session_id`
}

// MissingIndexLimit is the number of candidates MissingIndexes asks for.
const MissingIndexLimit = 20

const missingIndexesSQL = `-- Missing indexes
SELECT TOP %d
    DB_NAME(d.database_id) AS [database],
    d.equality_columns,
    d.inequality_columns,
    d.included_columns,
    gs.unique_compiles,
    gs.user_seeks,
    gs.avg_total_user_cost * gs.avg_user_impact * (gs.user_seeks + gs.user_scans) AS improvement_measure
FROM sys.dm_db_missing_index_details d
JOIN sys.dm_db_missing_index_groups g ON d.index_handle = g.index_handle
JOIN sys.dm_db_missing_index_group_stats gs ON g.index_group_handle = gs.group_handle
WHERE 1=1 %s
ORDER BY improvement_measure DESC`

// MissingIndexes returns the top missing-index candidates across every
// database.
func MissingIndexes() string {
	return fmt.Sprintf(missingIndexesSQL, MissingIndexLimit, "")
}

// MissingIndexesIn returns the top missing-index candidates of db. An empty
// db is still a filter and matches nothing.
func MissingIndexesIn(db string) string {
	return fmt.Sprintf(missingIndexesSQL, MissingIndexLimit, "AND DB_NAME(d.database_id) = "+QuoteLiteral(db))
}

const tableSizesSQL = `%s

SELECT
    s.name AS [schema],
    t.name AS [table],
    SUM(p.rows) AS row_count,
    SUM(a.total_pages) * 8 AS total_space_kb,
    SUM(a.used_pages) * 8 AS used_space_kb,
    (SUM(a.total_pages) - SUM(a.used_pages)) * 8 AS unused_space_kb
FROM sys.tables t
JOIN sys.schemas s ON t.schema_id = s.schema_id
JOIN sys.indexes i ON t.object_id = i.object_id
JOIN sys.partitions p ON i.object_id = p.object_id AND i.index_id = p.index_id
JOIN sys.allocation_units a ON p.partition_id = a.container_id
WHERE i.index_id <= 1
GROUP BY s.name, t.name
ORDER BY SUM(a.total_pages) DESC`

// TableSizes returns row counts and page usage per table in db.
func TableSizes(db string) string {
	return fmt.Sprintf(tableSizesSQL, UseDatabase(db))
}

// ServerInfo returns version, edition and the compatibility level of the
// current database.
func ServerInfo() string {
	return `SELECT
    @@VERSION AS [version],
    @@SERVERNAME AS [server_name],
    CAST(SERVERPROPERTY('Edition') AS nvarchar(256)) AS [edition],
    CAST(SERVERPROPERTY('ProductVersion') AS nvarchar(256)) AS [product_version],
    CAST(SERVERPROPERTY('ProductLevel') AS nvarchar(256)) AS [product_level],
    (SELECT compatibility_level FROM sys.databases WHERE name = DB_NAME()) AS [compatibility_level]`
}
