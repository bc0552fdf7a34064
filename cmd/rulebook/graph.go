package main

import (
	"context"
	"os"

	"github.com/aretw0/rulebook/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the rule conditions as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart of each rule's condition tree. With --overlay
the nodes are colored by an evaluation against the facts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		index, _ := cmd.Flags().GetInt("index")
		overlay, _ := cmd.Flags().GetBool("overlay")

		opts := cli.GraphOptions{
			SourceOptions: sourceOptions(cmd),
			MaxDepth:      intFlag(cmd, "max-depth", cfg.MaxDepth),
			Index:         index,
			Overlay:       overlay,
			Log:           logOptions(cmd),
		}
		return cli.Graph(context.Background(), opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addSourceFlags(graphCmd)
	graphCmd.Flags().IntP("index", "i", -1, "Export only the rule at this index")
	graphCmd.Flags().Bool("overlay", false, "Color nodes by evaluating against the facts")
}
