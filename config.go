package mssqlmcp

// Config is the base configuration used by library mode via New().
type Config struct {
	Query        QueryConfig        `json:"query"`
	ErrorPrompts []ErrorPromptRule  `json:"error_prompts"`
	Sanitization []SanitizationRule `json:"sanitization"`
}

// ServerConfig embeds Config and adds server-only fields for CLI mode.
type ServerConfig struct {
	Config
	Connection ConnectionConfig `json:"connection"`
	Server     ServerSettings   `json:"server"`
	Logging    LoggingConfig    `json:"logging"`
}

// ConnectionConfig holds SQL Server connection parameters. The password is
// never serialized; it comes from TDSPASSWORD, a flag, or a prompt.
type ConnectionConfig struct {
	Host                   string `json:"host"`
	Port                   int    `json:"port"`
	User                   string `json:"user"`
	Password               string `json:"-"`
	Database               string `json:"database"`
	TrustServerCertificate bool   `json:"trust_server_certificate"`
}

// ServerSettings holds transport settings for CLI mode.
type ServerSettings struct {
	Transport          string `json:"transport"` // stdio, http
	Port               int    `json:"port"`
	HealthCheckEnabled bool   `json:"health_check_enabled"`
	HealthCheckPath    string `json:"health_check_path"`
	MetricsEnabled     bool   `json:"metrics_enabled"`
	MetricsPath        string `json:"metrics_path"`
	// MetricsAddr is the listen address of the metrics endpoint in stdio
	// mode. In http mode metrics share the MCP listener.
	MetricsAddr string `json:"metrics_addr"`
}

// LoggingConfig holds logging settings for CLI mode.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stderr, stdout, or file path
}

// QueryConfig holds query execution settings.
type QueryConfig struct {
	// DefaultMaxRows caps the rows rendered by the query tool when the caller
	// passes no max_rows. Zero means 100.
	DefaultMaxRows int `json:"default_max_rows"`
}

// ErrorPromptRule maps an error message pattern to a guidance message.
type ErrorPromptRule struct {
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// SanitizationRule masks rendered cell text. Column optionally restricts the
// rule to result columns whose name matches the regex.
type SanitizationRule struct {
	Column      string `json:"column,omitempty"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Description string `json:"description"`
}

// DefaultServerConfig returns the configuration used when no file exists.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Config: Config{
			Query: QueryConfig{DefaultMaxRows: DefaultMaxRows},
		},
		Connection: ConnectionConfig{
			Host:                   "localhost",
			Port:                   1433,
			TrustServerCertificate: true,
		},
		Server: ServerSettings{
			Transport:       "stdio",
			Port:            8080,
			HealthCheckPath: "/health-check",
			MetricsPath:     "/metrics",
			MetricsAddr:     "127.0.0.1:9464",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}
