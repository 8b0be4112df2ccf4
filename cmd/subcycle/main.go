package main

import (
	"os"

	"github.com/spf13/cobra"

	"subcycle/internal/interfaces/cli/migrate"
	"subcycle/internal/interfaces/cli/server"
	"subcycle/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "subcycle",
		Short: "Subcycle - subscription billing engine",
		Long:  `Subcycle drives subscription lifecycles and billing schedules: status transitions, schedule dates and automated renewals.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
