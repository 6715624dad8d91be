package mssqlmcp

import (
	"context"

	"github.com/rickchristie/mssql-mcp/internal/tsql"
)

// ActiveSessions renders user sessions with their current request.
func (p *MssqlMcp) ActiveSessions(ctx context.Context) (string, error) {
	return p.catalog(ctx, "active_sessions", tsql.ActiveSessions(), allRows)
}

// BlockingChains renders requests blocked by another session.
func (p *MssqlMcp) BlockingChains(ctx context.Context) (string, error) {
	return p.catalog(ctx, "blocking_chains", tsql.BlockingChains(), allRows)
}

// IndexUsage renders the top missing-index candidates.
func (p *MssqlMcp) IndexUsage(ctx context.Context, input IndexUsageInput) (string, error) {
	sql := tsql.MissingIndexes()
	if input.Database != nil {
		sql = tsql.MissingIndexesIn(*input.Database)
	}
	return p.catalog(ctx, "index_usage", sql, tsql.MissingIndexLimit)
}

// TableSizes renders per-table space usage of a database.
func (p *MssqlMcp) TableSizes(ctx context.Context, input TableSizesInput) (string, error) {
	return p.catalog(ctx, "table_sizes", tsql.TableSizes(input.Database), allRows)
}

// ServerInfo renders version, edition and compatibility level.
func (p *MssqlMcp) ServerInfo(ctx context.Context) (string, error) {
	return p.catalog(ctx, "server_info", tsql.ServerInfo(), allRows)
}

// catalog runs one server-built statement under the tool slot.
func (p *MssqlMcp) catalog(ctx context.Context, tool, sql string, maxRows int) (string, error) {
	if err := p.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer p.releaseSlot()
	return p.render(ctx, tool, sql, maxRows)
}
