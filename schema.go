package mssqlmcp

import (
	"context"

	"github.com/rickchristie/mssql-mcp/internal/tsql"
)

// defaultSchema is used by DescribeTable when no schema is given.
const defaultSchema = "dbo"

// ListDatabases renders the names of every database on the instance.
func (p *MssqlMcp) ListDatabases(ctx context.Context) (string, error) {
	if err := p.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer p.releaseSlot()
	return p.render(ctx, "list_databases", tsql.ListDatabases(), allRows)
}

// ListTables renders the tables and views of a database.
func (p *MssqlMcp) ListTables(ctx context.Context, input ListTablesInput) (string, error) {
	if err := p.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer p.releaseSlot()
	return p.render(ctx, "list_tables", tsql.ListTables(input.Database), allRows)
}

// DescribeTable renders the columns of a table, then its foreign keys, under
// two headings. If either statement fails the whole call fails.
func (p *MssqlMcp) DescribeTable(ctx context.Context, input DescribeTableInput) (string, error) {
	if err := p.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer p.releaseSlot()

	schema := input.Schema
	if schema == "" {
		schema = defaultSchema
	}

	columns, err := p.render(ctx, "describe_table", tsql.DescribeColumns(input.Database, schema, input.Table), allRows)
	if err != nil {
		return "", err
	}
	foreignKeys, err := p.render(ctx, "describe_table", tsql.DescribeForeignKeys(input.Database, schema, input.Table), allRows)
	if err != nil {
		return "", err
	}
	return "## Columns\n\n" + columns + "\n\n## Foreign Keys\n\n" + foreignKeys, nil
}
