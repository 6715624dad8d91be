package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rickchristie/mssql-mcp/internal/configure"
)

type cmdConfigure struct {
	global *cmdGlobal
}

// Command generates the command definition.
func (c *cmdConfigure) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "configure"
	cmd.Short = "Run the interactive configuration wizard"
	cmd.Long = `Description:
  Run the interactive configuration wizard

  Prompts for every setting and writes the config file. The password is
  never stored; pass it with TDSPASSWORD or --password when serving.
`
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdConfigure) Run(cmd *cobra.Command, args []string) error {
	printBanner(os.Stderr, isTTY(os.Stderr.Fd()))
	return configure.Run(c.global.configPath())
}
