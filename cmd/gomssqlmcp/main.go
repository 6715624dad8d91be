package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rickchristie/mssql-mcp/internal/meta"
)

const defaultConfigPath = ".gomssqlmcp/config.json"

type cmdGlobal struct {
	flagConfig string
}

// configPath resolves --config, then GOMSSQLMCP_CONFIG_PATH, then the default.
func (c *cmdGlobal) configPath() string {
	if c.flagConfig != "" {
		return c.flagConfig
	}
	if p := os.Getenv("GOMSSQLMCP_CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

func newApp() *cobra.Command {
	app := &cobra.Command{}
	app.Use = meta.ServerName
	app.Short = "Read-only SQL Server MCP server"
	app.Long = `Description:
  Read-only SQL Server MCP server

  Exposes schema discovery, activity monitoring and guarded ad-hoc SELECT
  queries against a single SQL Server session as MCP tools.
`
	app.SilenceUsage = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}
	app.Version = meta.Version
	app.SetVersionTemplate("{{.Version}}\n")

	// Global flags.
	globalCmd := cmdGlobal{}
	app.PersistentFlags().StringVar(&globalCmd.flagConfig, "config", "", "Path to configuration file (default "+defaultConfigPath+")")

	// serve sub-command.
	serveCmd := cmdServe{global: &globalCmd}
	app.AddCommand(serveCmd.Command())

	// configure sub-command.
	configureCmd := cmdConfigure{global: &globalCmd}
	app.AddCommand(configureCmd.Command())

	// doctor sub-command.
	doctorCmd := cmdDoctor{global: &globalCmd}
	app.AddCommand(doctorCmd.Command())

	// tools sub-command.
	toolsCmd := cmdTools{global: &globalCmd}
	app.AddCommand(toolsCmd.Command())

	return app
}

func main() {
	err := newApp().Execute()
	if err != nil {
		os.Exit(1)
	}
}
