package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	mssqlmcp "github.com/rickchristie/mssql-mcp"
)

type cmdTools struct {
	global *cmdGlobal
}

// Command generates the command definition.
func (c *cmdTools) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "tools"
	cmd.Short = "List the MCP tools"
	cmd.Long = `Description:
  List the MCP tools served by this binary with their parameters.

  Parameters marked with * are required.
`
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdTools) Run(cmd *cobra.Command, args []string) error {
	renderTools(os.Stdout, mssqlmcp.ToolDefinitions())
	return nil
}

func renderTools(w io.Writer, defs []mssqlmcp.ToolDefinition) {
	data := make([][]string, 0, len(defs))
	for _, def := range defs {
		data = append(data, []string{def.Name, formatParams(def.Params), def.Description})
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"NAME", "PARAMETERS", "DESCRIPTION"})
	table.AppendBulk(data)
	table.Render()
}

func formatParams(params []mssqlmcp.ToolParam) string {
	if len(params) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		name := p.Name
		if p.Required {
			name += "*"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, p.Type))
	}
	return strings.Join(parts, ", ")
}
