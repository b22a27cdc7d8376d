package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInitDBCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create every destination table that does not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.AutoCreateTables {
				if err := a.ensureTables(cmd.Context()); err != nil {
					return err
				}
			}
			a.logger.Info("Tables ready", zap.Int("tables", len(a.service.Tables())))
			return nil
		},
	}
}
