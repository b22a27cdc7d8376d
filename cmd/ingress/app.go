package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/cleaner"
	"github.com/David-Botos/erp-ingress/pkg/config"
	"github.com/David-Botos/erp-ingress/pkg/connector"
	"github.com/David-Botos/erp-ingress/pkg/converter"
	"github.com/David-Botos/erp-ingress/pkg/ingest"
	"github.com/David-Botos/erp-ingress/pkg/rules"
	"github.com/David-Botos/erp-ingress/pkg/sink"
)

// store is what the commands need from a destination
type store interface {
	sink.Store
	sink.Pinger
}

// app holds the wired components shared by all commands
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    store
	sqlStore *sink.SQLStore
	service  *ingest.Service
	registry *prometheus.Registry
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.envFiles...)
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if opts.dryRun {
		logger.Info("Dry run, rows are kept in memory")
		a.store = sink.NewMemoryStore()
	} else {
		conn, err := connector.NewConnectorFactory(cfg, logger).Create(ctx)
		if err != nil {
			_ = logger.Sync()
			return nil, err
		}
		a.sqlStore = sink.NewSQLStoreWithConfig(conn, logger, sink.SQLStoreConfig{ChunkSize: cfg.ChunkSize})
		a.store = a.sqlStore
	}

	if a.service, err = a.newService(); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.AutoCreateTables {
		if err := a.ensureTables(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) newService() (*ingest.Service, error) {
	catalog, err := ingest.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build source catalog: %w", err)
	}

	var dataCleaner *cleaner.DataCleaner
	if a.cfg.RecordCoercionFailures {
		if dataCleaner, err = cleaner.NewDataCleaner(a.store, a.logger); err != nil {
			return nil, fmt.Errorf("failed to create data cleaner: %w", err)
		}
	}

	convCfg := converter.DefaultConfig()
	convCfg.DayFirst = a.cfg.DateDayFirst
	convCfg.Use1904Dates = a.cfg.Excel1904Dates
	typeConverter := converter.NewTypeConverterWithConfig(a.logger, convCfg)

	svcCfg := ingest.DefaultServiceConfig()
	svcCfg.Serialization = rules.NewSerializationPolicy(a.cfg.SerialProfileSentinels)
	svcCfg.Metrics = ingest.NewMetrics(a.registry, a.logger)

	return ingest.NewServiceWithConfig(catalog, a.store, typeConverter, dataCleaner, a.logger, svcCfg)
}

// ensureTables creates every destination table. A no-op for dry runs.
func (a *app) ensureTables(ctx context.Context) error {
	if a.sqlStore == nil {
		return nil
	}
	return a.sqlStore.EnsureTables(ctx, a.service.Tables())
}

func (a *app) Close() {
	if a.sqlStore != nil {
		if err := a.sqlStore.Close(); err != nil {
			a.logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
