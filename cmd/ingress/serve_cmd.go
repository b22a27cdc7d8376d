package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/David-Botos/erp-ingress/pkg/ingest"
	"github.com/David-Botos/erp-ingress/pkg/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := server.DefaultConfig()
			cfg.Addr = a.cfg.HTTPAddr
			cfg.UploadDir = a.cfg.UploadDir
			cfg.MaxUploadBytes = a.cfg.MaxUploadBytes

			srv, err := server.New(a.service, ingest.UUIDProvider{Now: time.Now}, a.store, a.registry, cfg, a.logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
