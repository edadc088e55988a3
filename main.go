package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "marketplace-ops-api",
		Short:         "Marketplace operations API: seller onboarding, warranties and review moderation",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newTokenCommand(),
	)

	// serve is the default so the container entrypoint needs no arguments
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	}

	return root
}
