package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbrennan/toolhub/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "toolhub-configure",
		Short: "Configuration tool for the toolhub API",
		Long:  "CLI tool for managing CORS, rate limit and user settings",
	}

	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
