package mssqlmcp

import (
	"context"

	"github.com/rickchristie/mssql-mcp/internal/protection"
	"github.com/rickchristie/mssql-mcp/internal/tsql"
)

// Query runs caller-supplied SQL after the read-only check. The statement is
// prefixed with READ UNCOMMITTED isolation and NOCOUNT.
func (p *MssqlMcp) Query(ctx context.Context, input QueryInput) (string, error) {
	if err := p.guard("query", input.SQL); err != nil {
		return "", err
	}

	maxRows := p.config.Query.DefaultMaxRows
	if input.MaxRows != nil {
		maxRows = *input.MaxRows
	}

	if err := p.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer p.releaseSlot()
	return p.render(ctx, "query", tsql.ReadOnlyQuery(input.SQL), maxRows)
}

// QueryPlan renders the SHOWPLAN_TEXT plan of caller-supplied SQL. The plan
// is never truncated.
func (p *MssqlMcp) QueryPlan(ctx context.Context, input QueryPlanInput) (string, error) {
	if err := p.guard("query_plan", input.SQL); err != nil {
		return "", err
	}

	if err := p.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer p.releaseSlot()
	return p.render(ctx, "query_plan", tsql.ShowPlan(input.SQL), allRows)
}

// guard rejects statements containing a write keyword before any session
// is touched.
func (p *MssqlMcp) guard(tool, sql string) error {
	keyword, blocked := protection.FirstBlocked(sql)
	if !blocked {
		return nil
	}
	p.logger.Warn().
		Str("tool", tool).
		Str("keyword", keyword).
		Str("sql", truncateForLog(sql, 200)).
		Msg("statement rejected by read-only check")
	return protection.ErrWriteOperation
}
