package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "payum-server",
		Short: "JSON API for managing payments and payment gateways",
		Long: `payum-server serves a JSON REST API for payments and gateway configurations.

Configuration is read from the environment (APP_ENV, PORT, DATABASE_URL, REDIS_URL, ...).
Without a subcommand the HTTP server is started.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newRoutesCommand())

	return rootCmd
}
