package main

import (
	"github.com/aretw0/rulebook/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts rulebook as an MCP server over stdio so AI agents can evaluate
rules and conditions as tools. With --sources the configured rules and facts
are exposed through the run_rulebook tool and the rulebook://rules resource.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withSources, _ := cmd.Flags().GetBool("sources")

		opts := cli.MCPOptions{
			SourceOptions: sourceOptions(cmd),
			EngineOptions: cli.EngineOptions{MaxDepth: intFlag(cmd, "max-depth", cfg.MaxDepth)},
			WithSources:   withSources,
			Log:           logOptions(cmd),
		}
		return cli.ServeMCP(opts)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addSourceFlags(mcpCmd)
	mcpCmd.Flags().Bool("sources", false, "Expose the configured rules and facts")
}
