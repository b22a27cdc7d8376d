package main

import "github.com/spf13/cobra"

type rootOptions struct {
	envFiles []string
	dryRun   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "ingress",
		Short:        "Ingest SAP and Odoo report extracts into the reporting store",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "Env files to load before reading the environment")
	cmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "Keep rows in memory instead of writing to the store")

	cmd.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newBuildMasterCmd(opts),
		newInitDBCmd(opts),
		newSourcesCmd(),
	)
	return cmd
}
