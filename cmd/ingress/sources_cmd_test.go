package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/erp-ingress/pkg/ingest"
)

func TestDescribeSources(t *testing.T) {
	catalog, err := ingest.DefaultCatalog()
	require.NoError(t, err)

	out := describeSources(catalog)
	require.Len(t, out, len(catalog.Sources()))

	byTag := make(map[string]sourceOutput, len(out))
	for _, o := range out {
		byTag[o.Tag] = o
	}

	mb52 := byTag[ingest.SourceMB52]
	assert.Equal(t, "/upload_MB52", mb52.Endpoint)
	assert.Equal(t, []string{"matnr"}, mb52.Required)
	assert.Equal(t, []string{"raw_mb52", ingest.TableInventorySnapshot}, mb52.Tables)

	assert.Equal(t, "/upload_ZMMR015_Power", byTag[ingest.SourceZMMR015Power].Endpoint)
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "ingest", "build-master", "init-db", "sources"}, names)

	envFiles, err := cmd.PersistentFlags().GetStringSlice("env-file")
	require.NoError(t, err)
	assert.Equal(t, []string{".env"}, envFiles)
}
