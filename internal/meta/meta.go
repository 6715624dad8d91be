// Package meta holds build metadata.
package meta

// Version is overridden at build time with
// -ldflags "-X github.com/rickchristie/mssql-mcp/internal/meta.Version=...".
var Version = "0.1.0"

// ServerName is the MCP server identity reported on initialize.
const ServerName = "gomssqlmcp"
