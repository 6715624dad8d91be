// Package mssqlmcp gives AI agents read-only access to a Microsoft SQL Server
// instance through the Model Context Protocol (MCP).
//
// It exposes ten tools: list_databases, list_tables, describe_table, query,
// query_plan, active_sessions, blocking_chains, index_usage, table_sizes and
// server_info. Each tool runs one T-SQL batch and renders its first result
// set as a markdown table.
//
// The engine holds a single session, opened lazily on the first call. When
// acquiring it fails, exactly one forced reconnect is attempted before the
// call fails. Tools run one at a time.
//
// The query and query_plan tools screen caller SQL with a keyword scan that
// rejects INSERT, UPDATE, DELETE, DROP, ALTER, CREATE, TRUNCATE, EXEC and
// EXECUTE. The scan is a deterrent for well-meaning agents, not a security
// boundary: connect with a login that only has read permissions.
//
// # Library Usage
//
//	connector := mssqlmcp.NewMssqlConnector(mssqlmcp.ConnectionConfig{
//		Host:                   "localhost",
//		Port:                   1433,
//		User:                   "reader",
//		Password:               os.Getenv("TDSPASSWORD"),
//		TrustServerCertificate: true,
//	}, logger)
//	m, err := mssqlmcp.New(mssqlmcp.Config{}, connector, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//
//	// Use directly
//	table, err := m.Query(ctx, mssqlmcp.QueryInput{SQL: "SELECT TOP 5 name FROM sys.objects"})
//
//	// Or register as MCP tools
//	mssqlmcp.RegisterMCPTools(mcpServer, m)
//
// Tests and embedders can supply their own [Connector] to replace the
// SQL Server driver.
package mssqlmcp
