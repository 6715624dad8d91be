package mssqlmcp

import (
	"context"
	"fmt"
	"maps"
	"math"

	"github.com/mitchellh/mapstructure"
)

var toolCatalog = []ToolDefinition{
	{
		Name:        "list_databases",
		Description: "List all databases on the SQL Server instance",
	},
	{
		Name:        "list_tables",
		Description: "List all tables in a database",
		Params: []ToolParam{
			{Name: "database", Type: "string", Required: true, Description: "Database name"},
		},
	},
	{
		Name:        "describe_table",
		Description: "Describe a table's columns, types, nullability, primary keys, and foreign keys",
		Params: []ToolParam{
			{Name: "database", Type: "string", Required: true, Description: "Database name"},
			{Name: "schema", Type: "string", Description: "Schema name (default: dbo)"},
			{Name: "table", Type: "string", Required: true, Description: "Table name"},
		},
	},
	{
		Name:        "query",
		Description: "Execute a read-only SQL query and return results as a markdown table. Write operations are blocked.",
		Params: []ToolParam{
			{Name: "sql", Type: "string", Required: true, Description: "SQL query to execute"},
			{Name: "max_rows", Type: "integer", Description: "Maximum rows to return (default: 100)"},
		},
	},
	{
		Name:        "query_plan",
		Description: "Show the execution plan for a SQL query",
		Params: []ToolParam{
			{Name: "sql", Type: "string", Required: true, Description: "SQL query to get execution plan for"},
		},
	},
	{
		Name:        "active_sessions",
		Description: "Show active user sessions on the SQL Server",
	},
	{
		Name:        "blocking_chains",
		Description: "Show blocking chains (sessions blocking other sessions)",
	},
	{
		Name:        "index_usage",
		Description: "Show top missing indexes",
		Params: []ToolParam{
			{Name: "database", Type: "string", Description: "Database name (optional)"},
		},
	},
	{
		Name:        "table_sizes",
		Description: "Show space used per table in a database",
		Params: []ToolParam{
			{Name: "database", Type: "string", Required: true, Description: "Database name"},
		},
	},
	{
		Name:        "server_info",
		Description: "Show SQL Server version, edition, and configuration",
	},
}

var toolsByName = func() map[string]ToolDefinition {
	m := make(map[string]ToolDefinition, len(toolCatalog))
	for _, def := range toolCatalog {
		m[def.Name] = def
	}
	return m
}()

// ToolDefinitions returns the ten tools in catalog order. The result is a
// copy; callers may modify it.
func ToolDefinitions() []ToolDefinition {
	defs := make([]ToolDefinition, len(toolCatalog))
	for i, def := range toolCatalog {
		def.Params = append([]ToolParam(nil), def.Params...)
		defs[i] = def
	}
	return defs
}

// Dispatch validates args against the named tool's definition and runs it.
// args is the decoded JSON arguments object and may be nil.
func (p *MssqlMcp) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	def, ok := toolsByName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if err := checkRequired(def, args); err != nil {
		return "", err
	}
	args = dropMistypedOptional(def, args)

	switch name {
	case "list_databases":
		return p.ListDatabases(ctx)
	case "list_tables":
		var in ListTablesInput
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}
		return p.ListTables(ctx, in)
	case "describe_table":
		var in DescribeTableInput
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}
		return p.DescribeTable(ctx, in)
	case "query":
		var in QueryInput
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}
		if n, ok := parseMaxRows(args["max_rows"]); ok {
			in.MaxRows = &n
		}
		return p.Query(ctx, in)
	case "query_plan":
		var in QueryPlanInput
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}
		return p.QueryPlan(ctx, in)
	case "active_sessions":
		return p.ActiveSessions(ctx)
	case "blocking_chains":
		return p.BlockingChains(ctx)
	case "index_usage":
		var in IndexUsageInput
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}
		return p.IndexUsage(ctx, in)
	case "table_sizes":
		var in TableSizesInput
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}
		return p.TableSizes(ctx, in)
	case "server_info":
		return p.ServerInfo(ctx)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// checkRequired fails on the first required parameter that is absent or null.
func checkRequired(def ToolDefinition, args map[string]any) error {
	for _, param := range def.Params {
		if !param.Required {
			continue
		}
		if v, ok := args[param.Name]; !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingParameter, param.Name)
		}
	}
	return nil
}

// dropMistypedOptional returns args without the optional string parameters
// that are null or not strings, so they fall back to their defaults.
func dropMistypedOptional(def ToolDefinition, args map[string]any) map[string]any {
	var out map[string]any
	for _, param := range def.Params {
		if param.Required || param.Type != "string" {
			continue
		}
		v, ok := args[param.Name]
		if !ok {
			continue
		}
		if _, isString := v.(string); isString {
			continue
		}
		if out == nil {
			out = maps.Clone(args)
		}
		delete(out, param.Name)
	}
	if out == nil {
		return args
	}
	return out
}

// decodeArgs decodes args into the tool's input struct. Required values of
// the wrong JSON type are rejected rather than coerced.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	return nil
}

// parseMaxRows accepts non-negative whole numbers. Anything else (absent,
// negative, fractional, non-numeric) reports false and the default applies.
// Values beyond int range are clamped, which shows every row.
func parseMaxRows(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		if n >= math.MaxInt64 {
			return math.MaxInt, true
		}
		return int(n), true
	case int:
		if n >= 0 {
			return n, true
		}
	case int64:
		if n >= 0 {
			return int(min(n, math.MaxInt)), true
		}
	case uint64:
		return int(min(n, math.MaxInt)), true
	}
	return 0, false
}
