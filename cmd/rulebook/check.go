package main

import (
	"context"
	"os"

	"github.com/aretw0/rulebook/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <condition-json>",
	Short: "Evaluate a single condition",
	Example: `  rulebook check '{"all": ["a", {"any": ["b", "c"]}]}' --vals a,c
  rulebook check '"a"' --facts data.json --explain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vals, _ := cmd.Flags().GetStringSlice("vals")
		explain, _ := cmd.Flags().GetBool("explain")
		jsonOut, _ := cmd.Flags().GetBool("json")

		opts := cli.CheckOptions{
			SourceOptions: sourceOptions(cmd),
			EngineOptions: cli.EngineOptions{MaxDepth: intFlag(cmd, "max-depth", cfg.MaxDepth)},
			Vals:          vals,
			Explain:       explain,
			JSON:          jsonOut,
			Log:           logOptions(cmd),
		}
		return cli.Check(context.Background(), args[0], opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addSourceFlags(checkCmd)
	checkCmd.Flags().StringSlice("vals", nil, "Facts given inline, overriding --facts")
	checkCmd.Flags().Bool("explain", false, "Print the evaluation trace")
	checkCmd.Flags().Bool("json", false, "Print JSON")
}
