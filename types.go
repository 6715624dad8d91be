package mssqlmcp

import "database/sql"

// DefaultMaxRows is the number of rows the query tool renders when the
// caller does not pass max_rows.
const DefaultMaxRows = 100

// allRows tells the renderer not to truncate.
const allRows = -1

// ToolDefinition describes one tool of the catalog.
type ToolDefinition struct {
	Name        string
	Description string
	Params      []ToolParam
}

// ToolParam describes one input parameter of a tool.
type ToolParam struct {
	Name        string
	Type        string // "string" or "integer"
	Required    bool
	Description string
}

// ResultTable is the first result set of a statement. Rows are rectangular:
// every row holds one cell per column. A cell that is not Valid renders as
// NULL, whether the value was NULL or could not be converted to text.
type ResultTable struct {
	Columns []string
	Rows    [][]sql.NullString
}

// ListTablesInput is the input for the list_tables tool.
type ListTablesInput struct {
	Database string `mapstructure:"database"`
}

// DescribeTableInput is the input for the describe_table tool.
type DescribeTableInput struct {
	Database string `mapstructure:"database"`
	Schema   string `mapstructure:"schema"` // defaults to "dbo"
	Table    string `mapstructure:"table"`
}

// QueryInput is the input for the query tool. A nil MaxRows means the
// configured default; a negative one shows every row.
type QueryInput struct {
	SQL     string `mapstructure:"sql"`
	MaxRows *int   `mapstructure:"-"`
}

// QueryPlanInput is the input for the query_plan tool.
type QueryPlanInput struct {
	SQL string `mapstructure:"sql"`
}

// IndexUsageInput is the input for the index_usage tool. A nil Database
// covers every database; an empty one filters on the empty name.
type IndexUsageInput struct {
	Database *string `mapstructure:"database"`
}

// TableSizesInput is the input for the table_sizes tool.
type TableSizesInput struct {
	Database string `mapstructure:"database"`
}
