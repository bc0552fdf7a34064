package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/rulebook/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Exposes the evaluator as a JSON API over HTTP:

  POST /evaluate   {"rules": [...], "vals": [...]}
  POST /check      {"cond": ..., "vals": [...]}   (?explain=true)
  GET  /health, /info, /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := intFlag(cmd, "port", cfg.Server.Port)

		opts := cli.ServeOptions{
			EngineOptions: cli.EngineOptions{
				MaxDepth:        intFlag(cmd, "max-depth", cfg.MaxDepth),
				ContinueOnError: boolFlag(cmd, "continue-on-error", cfg.ContinueOnError),
			},
			Addr: fmt.Sprintf(":%d", port),
			Log:  logOptions(cmd),
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Serve(ctx, opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Int("max-depth", 0, "Maximum condition nesting depth (0 uses the built-in limit)")
	serveCmd.Flags().Bool("continue-on-error", false, "Record malformed rules and keep evaluating")
}
