package cmd

import (
	"github.com/huangsam/indiscore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [source]",
	Short: "Start the indiscore MCP server",
	Long:  `Launch an MCP server that allows AI agents to score indicators, validate formulas and score a configured source via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// A source is optional for the server; tools can name a file per call.
		return sharedSetup(rootCtx, args, len(args) == 1)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}
