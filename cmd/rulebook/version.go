package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/rulebook"
	"github.com/aretw0/rulebook/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rulebook",
	Run: func(cmd *cobra.Command, args []string) {
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, strings.TrimSpace(rulebook.Version))
			return
		}
		fmt.Printf("rulebook version %s\n", strings.TrimSpace(rulebook.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
