package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	icexmcp "github.com/gorewood/icex/internal/mcp"
	"github.com/gorewood/icex/internal/output"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	var dumpFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server over an exported dump (stdio transport)",
		Long: `Run icex as a Model Context Protocol (MCP) server over stdio.

The server answers from a previously exported JSON dump; it never talks to
the iCity service. Any MCP-capable agent environment can use the tools
(Claude Code, Cursor, Windsurf, Gemini CLI, etc).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "icex": {
        "command": "icex",
        "args": ["serve", "--dump", "./export/icity_alice_diary_export.json"]
      }
    }
  }

Available tools: query, show, stats`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, err := icexmcp.LoadSource(dumpFlag)
			if err != nil {
				return output.NewUserError(err.Error())
			}
			server := icexmcp.NewServer(buildVersion(), source)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}

	cmd.Flags().StringVar(&dumpFlag, "dump", "", "Path to an exported JSON dump")
	_ = cmd.MarkFlagRequired("dump")

	return cmd
}
