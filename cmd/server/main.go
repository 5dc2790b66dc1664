package main // Entry point package

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "eco-stations",
		Short: "Eco charging and fuel stations catalogue",
		Long: `Web catalogue of charging and fuel stations with user reviews,
aggregate statistics and an admin panel.

Configuration is read from the environment (and an optional .env file).
Without a subcommand the HTTP server is started.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
