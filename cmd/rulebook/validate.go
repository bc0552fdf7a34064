package main

import (
	"context"
	"os"

	"github.com/aretw0/rulebook/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every rule is well formed",
	Long:  `Decodes all rules without evaluating them and lists every structural error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ValidateOptions{
			Rules:    stringFlag(cmd, "rules", cfg.Rules),
			MaxDepth: intFlag(cmd, "max-depth", cfg.MaxDepth),
			Log:      logOptions(cmd),
		}
		return cli.Validate(context.Background(), opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("rules", "rules.json", "Rules document, or a directory of rule documents")
	validateCmd.Flags().Int("max-depth", 0, "Maximum condition nesting depth (0 uses the built-in limit)")
}
