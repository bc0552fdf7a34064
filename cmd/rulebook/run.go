package main

import (
	"context"
	"os"

	"github.com/aretw0/rulebook/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate every rule against the facts",
	Long: `Loads the facts, then the rules, evaluates each rule in order and prints
the payloads of the rules whose condition holds. A malformed rule aborts
the run unless --continue-on-error is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		out, _ := cmd.Flags().GetString("out")

		opts := cli.RunOptions{
			SourceOptions: sourceOptions(cmd),
			EngineOptions: cli.EngineOptions{
				MaxDepth:        intFlag(cmd, "max-depth", cfg.MaxDepth),
				ContinueOnError: boolFlag(cmd, "continue-on-error", cfg.ContinueOnError),
			},
			Format: stringFlag(cmd, "format", cfg.Format),
			Out:    out,
			Quiet:  quiet,
			Log:    logOptions(cmd),
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return cli.Watch(ctx, opts, os.Stdout)
		}
		return cli.Execute(ctx, opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSourceFlags(runCmd)
	runCmd.Flags().StringP("format", "f", "text", "Output format: text, markdown or json")
	runCmd.Flags().Bool("continue-on-error", false, "Record malformed rules and keep evaluating")
	runCmd.Flags().StringP("out", "o", "", "Also save the JSON report to this file")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress progress output")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run whenever the rules or facts change")
}
