package main

import (
	"fmt"
	"os"

	"github.com/aretw0/rulebook/internal/cli"
	"github.com/aretw0/rulebook/internal/config"
	"github.com/spf13/cobra"
)

// cfg holds the loaded configuration file (or the defaults).
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "rulebook",
	Short: "Rulebook evaluates ANY/ALL/VAL rules against a set of facts",
	Long: `Rulebook evaluates an ordered list of rules, each a nested ANY/ALL/VAL
condition with a payload, against a set of facts and reports which
payloads fire.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default rulebook.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// stringFlag returns the flag value when set explicitly, the config value otherwise.
func stringFlag(cmd *cobra.Command, name, fromConfig string) string {
	if cmd.Flags().Changed(name) || fromConfig == "" {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fromConfig
}

func intFlag(cmd *cobra.Command, name string, fromConfig int) int {
	if cmd.Flags().Changed(name) || fromConfig == 0 {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fromConfig
}

func boolFlag(cmd *cobra.Command, name string, fromConfig bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return fromConfig
}

func logOptions(cmd *cobra.Command) cli.LogOptions {
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.LogOptions{Debug: debug, Level: cfg.Log.Level, Format: cfg.Log.Format}
}

// addSourceFlags registers the rule and fact location flags shared by several commands.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("rules", "rules.json", "Rules document, or a directory of rule documents")
	cmd.Flags().String("facts", "data.json", "Facts document")
	cmd.Flags().String("facts-redis", "", "Read facts from the Redis server at this address")
	cmd.Flags().String("facts-key", "", "Redis key of the fact set (default \"default\")")
	cmd.Flags().Int("max-depth", 0, "Maximum condition nesting depth (0 uses the built-in limit)")
}

func sourceOptions(cmd *cobra.Command) cli.SourceOptions {
	return cli.SourceOptions{
		Rules: stringFlag(cmd, "rules", cfg.Rules),
		Facts: stringFlag(cmd, "facts", cfg.Facts),
		Redis: cli.RedisOptions{
			Addr:     stringFlag(cmd, "facts-redis", cfg.Redis.Addr),
			Key:      stringFlag(cmd, "facts-key", cfg.Redis.Key),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		},
	}
}
