package main

import (
	"context"
	"os"

	"github.com/aretw0/rulebook/internal/cli"
	"github.com/spf13/cobra"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Manage fact sets",
}

var factsPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish a facts document to Redis",
	Long:  `Replaces the Redis fact set with the vals of a facts document in a single transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.PushOptions{
			Facts: stringFlag(cmd, "facts", cfg.Facts),
			Redis: cli.RedisOptions{
				Addr:     stringFlag(cmd, "redis", cfg.Redis.Addr),
				Key:      stringFlag(cmd, "key", cfg.Redis.Key),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.Prefix,
			},
		}
		return cli.PushFacts(context.Background(), opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(factsCmd)
	factsCmd.AddCommand(factsPushCmd)
	factsPushCmd.Flags().String("facts", "data.json", "Facts document to publish")
	factsPushCmd.Flags().String("redis", "", "Redis server address")
	factsPushCmd.Flags().String("key", "", "Redis key of the fact set (default \"default\")")
}
