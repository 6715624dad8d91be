package mssqlmcp

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog"

	"github.com/rickchristie/mssql-mcp/internal/meta"
)

// MssqlConnector opens SQL Server sessions over TDS using go-mssqldb.
type MssqlConnector struct {
	config ConnectionConfig
	logger zerolog.Logger
}

// NewMssqlConnector returns a Connector for config. Nothing is dialed until
// Connect is called.
func NewMssqlConnector(config ConnectionConfig, logger zerolog.Logger) *MssqlConnector {
	return &MssqlConnector{config: config, logger: logger}
}

// Address returns host:port.
func (c *MssqlConnector) Address() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// DSN returns the sqlserver:// URL for the configuration, password included.
func (c *MssqlConnector) DSN() string {
	query := url.Values{}
	if c.config.Database != "" {
		query.Set("database", c.config.Database)
	}
	if c.config.TrustServerCertificate {
		query.Set("TrustServerCertificate", "true")
	}
	query.Set("app name", meta.ServerName)

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.config.User, c.config.Password),
		Host:     c.Address(),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// Connect dials the server, performs the TDS handshake and pins the
// resulting connection as a Session.
func (c *MssqlConnector) Connect(ctx context.Context) (Session, error) {
	connector, err := mssql.NewConnector(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid connection settings: %w", err)
	}
	connector.Dialer = &noDelayDialer{logger: c.logger}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// db.Conn opens the physical connection, so handshake and login errors
	// surface here rather than on the first query.
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &mssqlSession{db: db, conn: conn}, nil
}

// noDelayDialer dials TCP with Nagle's algorithm disabled. It is also used
// for routing redirects, so every dialed address is logged.
type noDelayDialer struct {
	net.Dialer
	logger zerolog.Logger
}

func (d *noDelayDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d.logger.Debug().Str("addr", addr).Msg("dialing")
	conn, err := d.Dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

type mssqlSession struct {
	db   *sql.DB
	conn *sql.Conn
}

func (s *mssqlSession) Execute(ctx context.Context, query string) (ResultStream, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, classifyErr(err)
	}
	return &mssqlResult{rows: rows}, nil
}

func (s *mssqlSession) Close() error {
	return errors.Join(s.conn.Close(), s.db.Close())
}

type mssqlResult struct {
	rows *sql.Rows
}

// FirstResultSet reads the rows the cursor is positioned on. Closing the
// rows drains any further result sets of the batch.
func (r *mssqlResult) FirstResultSet() (*ResultTable, error) {
	defer r.rows.Close()

	colTypes, err := r.rows.ColumnTypes()
	if err != nil {
		return nil, classifyErr(err)
	}
	table := &ResultTable{Columns: make([]string, len(colTypes))}
	for i, ct := range colTypes {
		table.Columns[i] = ct.Name()
	}

	values := make([]any, len(colTypes))
	dest := make([]any, len(colTypes))
	for i := range values {
		dest[i] = &values[i]
	}
	for r.rows.Next() {
		if err := r.rows.Scan(dest...); err != nil {
			return nil, classifyErr(err)
		}
		row := make([]sql.NullString, len(colTypes))
		for i, ct := range colTypes {
			row[i] = cellText(values[i], ct.DatabaseTypeName())
		}
		table.Rows = append(table.Rows, row)
	}
	if err := r.rows.Err(); err != nil {
		return nil, classifyErr(err)
	}
	return table, nil
}

// classifyErr wraps transport failures with ErrSessionLost. Server-side
// errors (mssql.Error) leave the session usable and are returned as is.
func classifyErr(err error) error {
	var serverErr mssql.Error
	if errors.As(err, &serverErr) {
		return err
	}
	var opErr *net.OpError
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.As(err, &opErr):
		return fmt.Errorf("%w: %w", ErrSessionLost, err)
	}
	return err
}
