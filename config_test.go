package mssqlmcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerConfigJSONLayout(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	cfg.Connection.Password = "hunter2"
	cfg.ErrorPrompts = []ErrorPromptRule{{Pattern: "Login failed", Message: "check TDSUSER"}}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NotContains(t, string(data), "hunter2")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.ElementsMatch(t,
		[]string{"query", "error_prompts", "sanitization", "connection", "server", "logging"},
		keys(raw),
	)
	require.Equal(t, float64(DefaultMaxRows), raw["query"].(map[string]any)["default_max_rows"])
}

func TestServerConfigDecodeOverDefaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	require.NoError(t, json.Unmarshal([]byte(`{
  "connection": {"host": "sql01", "trust_server_certificate": false},
  "sanitization": [{"column": "(?i)email", "pattern": ".+", "replacement": "***"}]
}`), &cfg))

	require.Equal(t, "sql01", cfg.Connection.Host)
	require.Equal(t, 1433, cfg.Connection.Port)
	require.False(t, cfg.Connection.TrustServerCertificate)
	require.Equal(t, "stdio", cfg.Server.Transport)
	require.Equal(t, DefaultMaxRows, cfg.Query.DefaultMaxRows)
	require.Len(t, cfg.Sanitization, 1)
	require.Equal(t, "(?i)email", cfg.Sanitization[0].Column)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
