package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	mssqlmcp "github.com/rickchristie/mssql-mcp"
	"github.com/rickchristie/mssql-mcp/internal/meta"
	"github.com/rickchristie/mssql-mcp/internal/metrics"
)

const defaultUser = "sa"

type cmdServe struct {
	global *cmdGlobal

	flagHost        string
	flagPort        int
	flagUser        string
	flagPassword    string
	flagDatabase    string
	flagNoTrustCert bool
	flagTransport   string
}

// Command generates the command definition.
func (c *cmdServe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "serve"
	cmd.Short = "Start the MCP server"
	cmd.Long = `Description:
  Start the MCP server

  Settings come from the config file, then TDSSERVER, TDSPORT, TDSUSER,
  TDSPASSWORD and TDSDATABASE, then the flags below. No connection is made
  until the first tool call.
`
	cmd.Flags().StringVar(&c.flagHost, "host", "", "SQL Server host")
	cmd.Flags().IntVar(&c.flagPort, "port", 0, "SQL Server port")
	cmd.Flags().StringVar(&c.flagUser, "user", "", "SQL login")
	cmd.Flags().StringVar(&c.flagPassword, "password", "", "SQL login password")
	cmd.Flags().StringVar(&c.flagDatabase, "database", "", "Initial database")
	cmd.Flags().BoolVar(&c.flagNoTrustCert, "no-trust-cert", false, "Verify the server TLS certificate")
	cmd.Flags().StringVar(&c.flagTransport, "transport", "", "MCP transport (stdio|http)")
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdServe) Run(cmd *cobra.Command, args []string) error {
	cfg, err := loadServerConfig(c.global.configPath())
	if err != nil {
		return err
	}
	if err := applyEnv(&cfg.Connection, os.LookupEnv); err != nil {
		return err
	}
	c.applyFlags(cmd, cfg)
	if cfg.Connection.User == "" {
		cfg.Connection.User = defaultUser
	}
	if err := validateServerSettings(cfg.Server); err != nil {
		return err
	}

	logger, err := setupLogger(cfg.Logging, cfg.Server.Transport)
	if err != nil {
		return err
	}

	// stdin belongs to the protocol in stdio mode.
	if cfg.Server.Transport == "http" && cfg.Connection.Password == "" && isTTY(os.Stdin.Fd()) {
		cfg.Connection.Password = promptPassword(fmt.Sprintf("Password for %s: ", cfg.Connection.User))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	connector := mssqlmcp.NewMssqlConnector(cfg.Connection, logger)
	engine, err := mssqlmcp.New(cfg.Config, connector, logger,
		mssqlmcp.WithMetrics(metrics.NewPrometheus(reg)),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing session")
		}
	}()

	mcpServer := newMCPServer(engine, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("transport", cfg.Server.Transport).
		Str("addr", connector.Address()).
		Str("version", meta.Version).
		Msg("starting gomssqlmcp")

	if cfg.Server.Transport == "http" {
		return serveHTTP(ctx, cfg.Server, mcpServer, reg, logger)
	}
	return serveStdio(ctx, cfg.Server, mcpServer, reg, logger, os.Stdin, os.Stdout)
}

func (c *cmdServe) applyFlags(cmd *cobra.Command, cfg *mssqlmcp.ServerConfig) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Connection.Host = c.flagHost
	}
	if flags.Changed("port") {
		cfg.Connection.Port = c.flagPort
	}
	if flags.Changed("user") {
		cfg.Connection.User = c.flagUser
	}
	if flags.Changed("password") {
		cfg.Connection.Password = c.flagPassword
	}
	if flags.Changed("database") {
		cfg.Connection.Database = c.flagDatabase
	}
	if flags.Changed("no-trust-cert") {
		cfg.Connection.TrustServerCertificate = !c.flagNoTrustCert
	}
	if flags.Changed("transport") {
		cfg.Server.Transport = c.flagTransport
	}
}

// loadServerConfig reads path over the defaults. A missing file yields the
// defaults.
func loadServerConfig(path string) (*mssqlmcp.ServerConfig, error) {
	cfg := mssqlmcp.DefaultServerConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv overrides connection settings from the TDS* variables.
func applyEnv(conn *mssqlmcp.ConnectionConfig, lookup func(string) (string, bool)) error {
	if v, ok := lookup("TDSSERVER"); ok && v != "" {
		conn.Host = v
	}
	if v, ok := lookup("TDSPORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid TDSPORT %q", v)
		}
		conn.Port = port
	}
	if v, ok := lookup("TDSUSER"); ok && v != "" {
		conn.User = v
	}
	if v, ok := lookup("TDSPASSWORD"); ok {
		conn.Password = v
	}
	if v, ok := lookup("TDSDATABASE"); ok && v != "" {
		conn.Database = v
	}
	return nil
}

func validateServerSettings(s mssqlmcp.ServerSettings) error {
	switch s.Transport {
	case "stdio":
		if s.MetricsEnabled && s.MetricsAddr == "" {
			return errors.New("server.metrics_addr must be set when metrics are enabled with stdio transport")
		}
	case "http":
		if s.Port <= 0 {
			return fmt.Errorf("server.port must be > 0, got %d", s.Port)
		}
		if s.HealthCheckEnabled && s.HealthCheckPath == "" {
			return errors.New("server.health_check_path must be set when health_check_enabled is true")
		}
	default:
		return fmt.Errorf("unknown transport %q (expected stdio or http)", s.Transport)
	}
	if s.MetricsEnabled && s.MetricsPath == "" {
		return errors.New("server.metrics_path must be set when metrics_enabled is true")
	}
	return nil
}

func setupLogger(config mssqlmcp.LoggingConfig, transport string) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	switch strings.ToLower(config.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output io.Writer = os.Stderr
	switch config.Output {
	case "", "stderr":
	case "stdout":
		if transport == "stdio" {
			return zerolog.Nop(), errors.New("logging.output cannot be stdout with stdio transport")
		}
		output = os.Stdout
	default:
		f, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
	}

	if config.Format == "text" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

func newMCPServer(engine *mssqlmcp.MssqlMcp, logger zerolog.Logger) *server.MCPServer {
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Info().
			Str("client_name", req.Params.ClientInfo.Name).
			Str("client_version", req.Params.ClientInfo.Version).
			Msg("client connected (MCP initialize)")
	})

	mcpServer := server.NewMCPServer(meta.ServerName, meta.Version,
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
	)
	mssqlmcp.RegisterMCPTools(mcpServer, engine)
	return mcpServer
}

// newHTTPMux routes /mcp plus the optional health check and metrics paths.
func newHTTPMux(settings mssqlmcp.ServerSettings, mcpServer *server.MCPServer, gatherer prometheus.Gatherer, httpSrv *http.Server) (*http.ServeMux, *server.StreamableHTTPServer) {
	mux := http.NewServeMux()

	// Process liveness only; no connection is made.
	if settings.HealthCheckEnabled {
		mux.HandleFunc(settings.HealthCheckPath, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if settings.MetricsEnabled {
		mux.Handle(settings.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	opts := []server.StreamableHTTPOption{
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
	}
	if httpSrv != nil {
		opts = append(opts, server.WithStreamableHTTPServer(httpSrv))
	}
	streamable := server.NewStreamableHTTPServer(mcpServer, opts...)

	// Start() does not register the handler when a custom *http.Server is set.
	mux.Handle("/mcp", streamable)
	return mux, streamable
}

func serveHTTP(ctx context.Context, settings mssqlmcp.ServerSettings, mcpServer *server.MCPServer, gatherer prometheus.Gatherer, logger zerolog.Logger) error {
	addr := fmt.Sprintf(":%d", settings.Port)
	httpSrv := &http.Server{Addr: addr}
	mux, streamable := newHTTPMux(settings, mcpServer, gatherer, httpSrv)
	httpSrv.Handler = mux

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Int("port", settings.Port).Msg("listening on /mcp")
		err := streamable.Start(addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		return streamable.Shutdown(context.Background())
	})
	return g.Wait()
}

func serveStdio(ctx context.Context, settings mssqlmcp.ServerSettings, mcpServer *server.MCPServer, gatherer prometheus.Gatherer, logger zerolog.Logger, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The session ends when the client closes stdin.
		defer cancel()
		stdio := server.NewStdioServer(mcpServer)
		stdio.SetErrorLogger(log.New(logger, "", 0))
		err := stdio.Listen(ctx, in, out)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if settings.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle(settings.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		metricsSrv := &http.Server{Addr: settings.MetricsAddr, Handler: mux}

		g.Go(func() error {
			logger.Info().Str("addr", settings.MetricsAddr).Msg("serving metrics")
			err := metricsSrv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			return metricsSrv.Shutdown(context.Background())
		})
	}

	return g.Wait()
}

func promptPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(password)
}
