package main

import (
	"github.com/spf13/cobra"

	"github.com/David-Botos/erp-ingress/pkg/ingest"
)

type sourceOutput struct {
	Tag      string   `json:"tag"`
	Endpoint string   `json:"endpoint"`
	Fields   []string `json:"fields"`
	Required []string `json:"required"`
	Tables   []string `json:"tables"`
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered report sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ingest.DefaultCatalog()
			if err != nil {
				return err
			}
			return writeJSON(describeSources(catalog))
		},
	}
}

func describeSources(catalog *ingest.Catalog) []sourceOutput {
	sources := catalog.Sources()
	out := make([]sourceOutput, 0, len(sources))
	for _, src := range sources {
		o := sourceOutput{
			Tag:      src.Tag,
			Endpoint: "/upload_" + src.Route,
			Fields:   src.Schema.FieldNames(),
		}
		for _, f := range src.Schema.Fields {
			if f.Required {
				o.Required = append(o.Required, f.Name)
			}
		}
		for _, p := range src.Projections {
			o.Tables = append(o.Tables, p.Table)
		}
		out = append(out, o)
	}
	return out
}
