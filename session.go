package mssqlmcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rickchristie/mssql-mcp/internal/metrics"
)

// Session is one authenticated connection to the server.
type Session interface {
	// Execute runs sql as a single batch with no bound parameters.
	Execute(ctx context.Context, sql string) (ResultStream, error)
	Close() error
}

// ResultStream is the output of one Execute call.
type ResultStream interface {
	// FirstResultSet reads the first result set and discards the rest.
	FirstResultSet() (*ResultTable, error)
}

// Connector opens sessions. Address is used for logging only.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
	Address() string
}

// SessionManager owns at most one live Session. It connects lazily and never
// loops: the projector decides when a single forced reconnect is attempted.
type SessionManager struct {
	mu        sync.Mutex
	connector Connector
	session   Session
	logger    zerolog.Logger
	metrics   metrics.Recorder
}

// NewSessionManager creates a SessionManager with no session.
func NewSessionManager(connector Connector, logger zerolog.Logger, recorder metrics.Recorder) *SessionManager {
	if recorder == nil {
		recorder = metrics.Noop()
	}
	return &SessionManager{
		connector: connector,
		logger:    logger,
		metrics:   recorder,
	}
}

// Acquire returns the current session, connecting first if there is none.
// On failure no session is kept and the error wraps ErrConnection.
func (m *SessionManager) Acquire(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		return m.session, nil
	}
	return m.connect(ctx)
}

// ForceReconnect discards the current session, healthy or not, and connects
// a new one.
func (m *SessionManager) ForceReconnect(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.IncReconnect()
	m.drop()
	return m.connect(ctx)
}

// Invalidate drops the current session without reconnecting. The next
// Acquire connects again.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.logger.Warn().Str("addr", m.connector.Address()).Msg("session lost, dropping it")
	}
	m.drop()
}

// Close closes the current session, if any.
func (m *SessionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Close()
	m.session = nil
	return err
}

// Connected reports whether a session is currently held.
func (m *SessionManager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// drop closes and forgets the session. Close errors are logged only; the
// session is gone either way. Caller holds mu.
func (m *SessionManager) drop() {
	if m.session == nil {
		return
	}
	if err := m.session.Close(); err != nil {
		m.logger.Debug().Err(err).Msg("closing discarded session")
	}
	m.session = nil
}

// connect opens a new session and stores it. Caller holds mu.
func (m *SessionManager) connect(ctx context.Context) (Session, error) {
	addr := m.connector.Address()
	m.logger.Info().Str("addr", addr).Msg("connecting")

	session, err := m.connector.Connect(ctx)
	if err != nil {
		m.metrics.IncConnectAttempt(false)
		m.logger.Error().Err(err).Str("addr", addr).Msg("connection failed")
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	m.metrics.IncConnectAttempt(true)
	m.logger.Info().Str("addr", addr).Msg("connected")
	m.session = session
	return session, nil
}
