package mssqlmcp

import (
	"errors"

	"github.com/rickchristie/mssql-mcp/internal/protection"
)

// Error categories returned by the tools. Causes are wrapped with %w, so
// errors.Is identifies the category while the message keeps the detail.
var (
	ErrConnection       = errors.New("TDS connection failed")
	ErrQuery            = errors.New("query error")
	ErrResult           = errors.New("result error")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrRejectedByGuard  = protection.ErrWriteOperation

	// ErrSessionLost marks execute failures caused by a broken transport.
	// The session is dropped and the next call reconnects.
	ErrSessionLost = errors.New("session lost")
)

// Configuration errors returned by New.
var (
	ErrNilConnector   = errors.New("mssqlmcp: connector must be non-nil")
	ErrInvalidMaxRows = errors.New("mssqlmcp: query.default_max_rows must be >= 0")
)

// IsParameterError reports whether err was caused by bad tool arguments.
func IsParameterError(err error) bool {
	return errors.Is(err, ErrMissingParameter) || errors.Is(err, ErrInvalidParameter)
}
