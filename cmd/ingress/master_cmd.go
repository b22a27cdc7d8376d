package main

import (
	"github.com/spf13/cobra"

	"github.com/David-Botos/erp-ingress/pkg/ingest"
)

func newBuildMasterCmd(opts *rootOptions) *cobra.Command {
	var (
		paths        ingest.MasterPaths
		snapshotDate string
	)

	cmd := &cobra.Command{
		Use:   "build-master",
		Short: "Build the material master from ZMM345E and its reference extracts",
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

			counts, err := a.service.BuildMasterFiles(cmd.Context(), paths, batch)
			if err != nil {
				return err
			}
			return writeJSON(counts)
		},
	}

	cmd.Flags().StringVar(&paths.ZMM345E, "zmm345e", "", "ZMM345E material extract (required)")
	cmd.Flags().StringVar(&paths.StorageLocation, "storage-location", "", "Storage location reference (required)")
	cmd.Flags().StringVar(&paths.MaterialGroup, "material-group", "", "Material group reference (required)")
	cmd.Flags().StringVar(&paths.MaterialType, "material-type", "", "Material type reference (required)")
	cmd.Flags().StringVar(&paths.MKVZ, "mkvz", "", "MKVZ vendor reference (required)")
	cmd.Flags().StringVar(&snapshotDate, "snapshot-date", "", "Snapshot date (YYYY-MM-DD, defaults to today UTC)")
	for _, name := range []string{"zmm345e", "storage-location", "material-group", "material-type", "mkvz"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
