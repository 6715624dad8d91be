package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	mssqlmcp "github.com/rickchristie/mssql-mcp"
	"github.com/rickchristie/mssql-mcp/internal/meta"
)

type cmdDoctor struct {
	global *cmdGlobal

	flagConnect bool
}

// Command generates the command definition.
func (c *cmdDoctor) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "doctor"
	cmd.Short = "Check the configuration and print client snippets"
	cmd.Long = `Description:
  Check the configuration and print client snippets

  Validates the config file and, with --connect, opens a session and runs
  server_info. Ends with MCP client configuration snippets.
`
	cmd.Flags().BoolVar(&c.flagConnect, "connect", false, "Connect and run server_info")
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdDoctor) Run(cmd *cobra.Command, args []string) error {
	var probe serverProbe
	if c.flagConnect {
		probe = probeServer
	}
	return doctor(cmd.Context(), os.Stderr, isTTY(os.Stderr.Fd()), c.global.configPath(), probe)
}

// serverProbe connects with cfg and returns the server_info output.
type serverProbe func(ctx context.Context, cfg *mssqlmcp.ServerConfig) (string, error)

func probeServer(ctx context.Context, cfg *mssqlmcp.ServerConfig) (string, error) {
	engine, err := mssqlmcp.New(cfg.Config, mssqlmcp.NewMssqlConnector(cfg.Connection, zerolog.Nop()), zerolog.Nop())
	if err != nil {
		return "", err
	}
	defer engine.Close()
	return engine.ServerInfo(ctx)
}

func doctor(ctx context.Context, w io.Writer, useColor bool, configPath string, probe serverProbe) error {
	printBanner(w, useColor)
	fmt.Fprintf(w, "%s %s\n\n", meta.ServerName, meta.Version)

	cfg, ok := doctorValidateConfig(w, useColor, configPath)
	if !ok {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Fix the issues above and run '%s doctor' again.\n", meta.ServerName)
		return nil
	}

	if probe != nil {
		info, err := probe(ctx, cfg)
		if err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("Connected to %s: %v", cfg.Connection.Host, err))
		} else {
			printCheck(w, useColor, true, fmt.Sprintf("Connected to %s", cfg.Connection.Host))
			fmt.Fprintln(w)
			fmt.Fprintln(w, info)
		}
	}

	fmt.Fprintln(w)
	printSettings(w, cfg)
	fmt.Fprintln(w)
	printAgentSnippets(w, useColor, cfg, configPath)
	return nil
}

// doctorValidateConfig loads the config file, applies TDS* overrides and
// prints one check line per rule. Returns the config and true if all checks
// passed.
func doctorValidateConfig(w io.Writer, useColor bool, configPath string) (*mssqlmcp.ServerConfig, bool) {
	allPassed := true

	data, err := os.ReadFile(configPath)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file readable (%s)", configPath))
		fmt.Fprintf(w, "    Run '%s configure' to create it.\n", meta.ServerName)
		return nil, false
	}
	printCheck(w, useColor, true, fmt.Sprintf("Config file readable (%s)", configPath))

	cfg := mssqlmcp.DefaultServerConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file is valid JSON: %v", err))
		return nil, false
	}
	printCheck(w, useColor, true, "Config file is valid JSON")

	if err := applyEnv(&cfg.Connection, os.LookupEnv); err != nil {
		printCheck(w, useColor, false, err.Error())
		allPassed = false
	}
	if cfg.Connection.User == "" {
		cfg.Connection.User = defaultUser
	}

	if cfg.Connection.Host == "" {
		printCheck(w, useColor, false, "connection.host is set")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("connection.host is set (%s)", cfg.Connection.Host))
	}

	if cfg.Connection.Port <= 0 {
		printCheck(w, useColor, false, "connection.port is > 0")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("connection.port is > 0 (%d)", cfg.Connection.Port))
	}

	if err := validateServerSettings(cfg.Server); err != nil {
		printCheck(w, useColor, false, err.Error())
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("server settings valid (%s transport)", cfg.Server.Transport))
	}

	// New compiles every regex and checks query limits without dialing.
	engine, err := mssqlmcp.New(cfg.Config, mssqlmcp.NewMssqlConnector(cfg.Connection, zerolog.Nop()), zerolog.Nop())
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Query, error prompt and sanitization settings: %v", err))
		allPassed = false
	} else {
		engine.Close()
		printCheck(w, useColor, true, "All regex patterns compile")
	}

	return &cfg, allPassed
}

// printCheck prints a colored ✓ or ✗ check line.
func printCheck(w io.Writer, useColor bool, pass bool, msg string) {
	mark, color := "✓", "\033[32m"
	if !pass {
		mark, color = "✗", "\033[31m"
	}
	if useColor {
		fmt.Fprintf(w, "  %s%s\033[0m %s\n", color, mark, msg)
	} else {
		fmt.Fprintf(w, "  %s %s\n", mark, msg)
	}
}

func printSettings(w io.Writer, cfg *mssqlmcp.ServerConfig) {
	database := cfg.Connection.Database
	if database == "" {
		database = "(login default)"
	}
	endpoint := "stdin/stdout"
	if cfg.Server.Transport == "http" {
		endpoint = httpURL(cfg)
	}
	metricsAt := "disabled"
	if cfg.Server.MetricsEnabled {
		metricsAt = cfg.Server.MetricsPath
		if cfg.Server.Transport == "stdio" {
			metricsAt = cfg.Server.MetricsAddr + cfg.Server.MetricsPath
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"SETTING", "VALUE"})
	table.AppendBulk([][]string{
		{"server", cfg.Connection.Host + ":" + strconv.Itoa(cfg.Connection.Port)},
		{"user", cfg.Connection.User},
		{"database", database},
		{"trust server certificate", strconv.FormatBool(cfg.Connection.TrustServerCertificate)},
		{"transport", cfg.Server.Transport},
		{"endpoint", endpoint},
		{"metrics", metricsAt},
		{"default max rows", strconv.Itoa(cfg.Query.DefaultMaxRows)},
	})
	table.Render()
}

func httpURL(cfg *mssqlmcp.ServerConfig) string {
	return fmt.Sprintf("http://localhost:%d/mcp", cfg.Server.Port)
}

// printAgentSnippets prints MCP client configuration for the configured transport.
func printAgentSnippets(w io.Writer, useColor bool, cfg *mssqlmcp.ServerConfig, configPath string) {
	heading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "\033[1;36m%s\033[0m\n", title)
		} else {
			fmt.Fprintln(w, title)
		}
	}
	subheading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", title)
		} else {
			fmt.Fprintf(w, "  %s\n", title)
		}
	}

	heading("Agent Connection Snippets")
	fmt.Fprintln(w)

	if cfg.Server.Transport == "http" {
		url := httpURL(cfg)

		subheading("Claude Code")
		fmt.Fprintf(w, "    claude mcp add --transport http mssql %s\n\n", url)

		subheading("Gemini CLI (~/.gemini/settings.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "mssql": {
        "httpUrl": "%s"
      }
    }
  }
`, url)
		fmt.Fprintln(w)

		subheading("Cursor (.cursor/mcp.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "mssql": {
        "url": "%s"
      }
    }
  }
`, url)
		return
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		absPath = configPath
	}

	subheading("Claude Code")
	fmt.Fprintf(w, "    claude mcp add mssql -e TDSPASSWORD=<password> -- %s serve --config %s\n\n", meta.ServerName, absPath)

	subheading(".mcp.json / Cursor (.cursor/mcp.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "mssql": {
        "command": "%s",
        "args": ["serve", "--config", "%s"],
        "env": {
          "TDSPASSWORD": "<password>"
        }
      }
    }
  }
`, meta.ServerName, absPath)
}
