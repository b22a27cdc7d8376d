package main

import (
	"github.com/spf13/cobra"

	"github.com/David-Botos/erp-ingress/pkg/ingest"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var snapshotDate string

	cmd := &cobra.Command{
		Use:   "ingest SOURCE FILE",
		Short: "Ingest one report extract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := ingest.UUIDProvider{}.NewBatch(snapshotDate)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			counts, err := a.service.IngestFile(cmd.Context(), args[0], args[1], batch)
			if err != nil {
				return err
			}
			return writeJSON(counts)
		},
	}

	cmd.Flags().StringVar(&snapshotDate, "snapshot-date", "", "Snapshot date (YYYY-MM-DD, defaults to today UTC)")
	return cmd
}
