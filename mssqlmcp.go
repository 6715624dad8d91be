package mssqlmcp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rickchristie/mssql-mcp/internal/errprompt"
	"github.com/rickchristie/mssql-mcp/internal/metrics"
	"github.com/rickchristie/mssql-mcp/internal/sanitize"
)

// MssqlMcp is the engine behind the ten tools. It owns one SessionManager and
// runs one tool at a time; concurrent callers wait for the slot.
type MssqlMcp struct {
	config     Config
	sessions   *SessionManager
	semaphore  chan struct{}
	sanitizer  *sanitize.Sanitizer
	errPrompts *errprompt.Matcher
	metrics    metrics.Recorder
	logger     zerolog.Logger
}

// Option is a functional option for New().
type Option func(*options)

type options struct {
	metrics metrics.Recorder
}

// WithMetrics records tool calls and connect attempts on r.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// New creates an engine that opens sessions through connector. Nothing is
// dialed until the first tool call. Returns an error on invalid config.
func New(config Config, connector Connector, logger zerolog.Logger, opts ...Option) (*MssqlMcp, error) {
	o := &options{metrics: metrics.Noop()}
	for _, opt := range opts {
		opt(o)
	}

	if connector == nil {
		return nil, ErrNilConnector
	}
	if config.Query.DefaultMaxRows < 0 {
		return nil, ErrInvalidMaxRows
	}
	if config.Query.DefaultMaxRows == 0 {
		config.Query.DefaultMaxRows = DefaultMaxRows
	}

	san, err := sanitize.NewSanitizer(mapSanitizationRules(config.Sanitization))
	if err != nil {
		return nil, fmt.Errorf("mssqlmcp: %w", err)
	}
	matcher, err := errprompt.NewMatcher(append(errprompt.Defaults(), mapErrorPromptRules(config.ErrorPrompts)...))
	if err != nil {
		return nil, fmt.Errorf("mssqlmcp: %w", err)
	}

	return &MssqlMcp{
		config:     config,
		sessions:   NewSessionManager(connector, logger, o.metrics),
		semaphore:  make(chan struct{}, 1),
		sanitizer:  san,
		errPrompts: matcher,
		metrics:    o.metrics,
		logger:     logger,
	}, nil
}

// Close closes the session, if one is open.
func (p *MssqlMcp) Close() error {
	return p.sessions.Close()
}

// ErrorText formats err the way tool results report failures: an "Error: "
// prefix and any matching error prompts appended.
func (p *MssqlMcp) ErrorText(err error) string {
	return "Error: " + p.errPrompts.Annotate(err.Error())
}

// acquireSlot waits for the single tool slot or for ctx to end.
func (p *MssqlMcp) acquireSlot(ctx context.Context) error {
	select {
	case p.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for the tool slot: %w", ctx.Err())
	}
}

func (p *MssqlMcp) releaseSlot() {
	<-p.semaphore
}

// mapSanitizationRules converts SanitizationRules to internal sanitize.Rules.
func mapSanitizationRules(rules []SanitizationRule) []sanitize.Rule {
	result := make([]sanitize.Rule, len(rules))
	for i, r := range rules {
		result[i] = sanitize.Rule{
			Column:      r.Column,
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		}
	}
	return result
}

// mapErrorPromptRules converts ErrorPromptRules to internal errprompt.Rules.
func mapErrorPromptRules(rules []ErrorPromptRule) []errprompt.Rule {
	result := make([]errprompt.Rule, len(rules))
	for i, r := range rules {
		result[i] = errprompt.Rule{
			Pattern: r.Pattern,
			Message: r.Message,
		}
	}
	return result
}
