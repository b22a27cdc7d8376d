// pkg/ingest/service.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/cleaner"
	"github.com/David-Botos/erp-ingress/pkg/converter"
	"github.com/David-Botos/erp-ingress/pkg/join"
	"github.com/David-Botos/erp-ingress/pkg/model"
	"github.com/David-Botos/erp-ingress/pkg/reader"
	"github.com/David-Botos/erp-ingress/pkg/rules"
	"github.com/David-Botos/erp-ingress/pkg/schema"
	"github.com/David-Botos/erp-ingress/pkg/sink"
)

// ServiceConfig provides configuration options for the ingestion service
type ServiceConfig struct {
	// Serialization decides the is_serialized label of the material master
	Serialization rules.SerializationPolicy
	// MasterDedup picks the surviving row when a material repeats
	MasterDedup join.DedupPolicy
	// Metrics receives batch outcomes; nil disables metrics
	Metrics *Metrics
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Serialization: rules.NewSerializationPolicy(rules.DefaultSerialSentinels),
		MasterDedup:   join.KeepLast,
	}
}

// Service runs the normalize, coerce, derive and append pipeline for one
// batch at a time. It keeps no state between calls besides the store.
type Service struct {
	catalog       *Catalog
	master        []masterInput
	store         sink.Store
	typeConverter *converter.TypeConverter
	dataCleaner   *cleaner.DataCleaner
	config        ServiceConfig
	logger        *zap.Logger
}

// NewService creates a service with the default configuration
func NewService(
	catalog *Catalog,
	store sink.Store,
	typeConverter *converter.TypeConverter,
	dataCleaner *cleaner.DataCleaner,
	logger *zap.Logger,
) (*Service, error) {
	return NewServiceWithConfig(catalog, store, typeConverter, dataCleaner, logger, DefaultServiceConfig())
}

// NewServiceWithConfig creates a service with custom configuration.
// A nil dataCleaner skips recording coercion failures.
func NewServiceWithConfig(
	catalog *Catalog,
	store sink.Store,
	typeConverter *converter.TypeConverter,
	dataCleaner *cleaner.DataCleaner,
	logger *zap.Logger,
	config ServiceConfig,
) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if typeConverter == nil {
		typeConverter = converter.NewTypeConverter(logger)
	}

	master := masterInputs()
	if err := validateMasterInputs(master); err != nil {
		return nil, err
	}

	return &Service{
		catalog:       catalog,
		master:        master,
		store:         store,
		typeConverter: typeConverter,
		dataCleaner:   dataCleaner,
		config:        config,
		logger:        logger.Named("ingest"),
	}, nil
}

// Catalog returns the registered sources
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Tables returns every destination table the service can write
func (s *Service) Tables() []*model.TableMetadata {
	tables := s.catalog.Tables()
	tables = append(tables, MasterTableMetadata())
	if s.dataCleaner != nil {
		tables = append(tables, cleaner.QualityTableMetadata())
	}
	return tables
}

// Ingest normalizes one sheet of the named source and appends its raw and
// fact projections. A schema mismatch fails before anything is written.
func (s *Service) Ingest(ctx context.Context, source string, sheet *reader.Sheet, batch Batch) (*RowCounts, error) {
	start := time.Now()
	src, err := s.catalog.Source(source)
	if err != nil {
		return nil, newError(ErrorCategoryInvalidInput, source, StageResolve, err)
	}
	counts := newRowCounts(src.Tag, batch)

	counts, err = s.ingest(ctx, src, sheet, batch, counts)
	s.config.Metrics.RecordBatch(counts, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *Service) ingest(
	ctx context.Context,
	src *Source,
	sheet *reader.Sheet,
	batch Batch,
	counts *RowCounts,
) (*RowCounts, error) {
	if sheet == nil {
		return counts, newError(ErrorCategoryInvalidInput, src.Tag, StageRead,
			fmt.Errorf("%w: no sheet provided", ErrInvalidInput))
	}

	logger := s.logger.With(
		zap.String("source", src.Tag),
		zap.String("batch_id", batch.ID),
		zap.String("snapshot_date", batch.Snapshot()))

	records, failures, err := s.normalize(src.Schema, sheet, batch)
	if err != nil {
		logger.Warn("Schema mismatch", zap.Error(err))
		return counts, newError(ErrorCategorySchemaMismatch, src.Tag, StageResolve, err)
	}
	counts.RecordsRead = len(records)
	counts.CoercionFailures = len(failures)
	counts.Warnings = sheet.Warnings

	for _, p := range src.Projections {
		set := p.RowSet(records, src.Tag, batch)
		if err := s.appendSet(ctx, src.Tag, set, counts); err != nil {
			return counts, err
		}
	}

	s.recordFailures(ctx, batch, failures)
	logger.Info("Ingested extract",
		zap.Int("records", counts.RecordsRead),
		zap.Int64("rows_written", counts.RowsWritten()),
		zap.Int("coercion_failures", counts.CoercionFailures))
	return counts, nil
}

// IngestFile reads a file from disk and ingests it
func (s *Service) IngestFile(ctx context.Context, source, path string, batch Batch) (*RowCounts, error) {
	sheet, err := reader.Open(path)
	if err != nil {
		return nil, newError(ErrorCategoryInvalidInput, source, StageRead, fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	return s.Ingest(ctx, source, sheet, batch)
}

// BuildMaster combines the five material master extracts into
// dim_material_master. Every extract is resolved before anything is written.
func (s *Service) BuildMaster(ctx context.Context, sheets MasterSheets, batch Batch) (*RowCounts, error) {
	start := time.Now()
	counts := newRowCounts(SourceMaterialMaster, batch)

	counts, err := s.buildMaster(ctx, sheets, batch, counts)
	s.config.Metrics.RecordBatch(counts, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *Service) buildMaster(
	ctx context.Context,
	sheets MasterSheets,
	batch Batch,
	counts *RowCounts,
) (*RowCounts, error) {
	logger := s.logger.With(
		zap.String("source", SourceMaterialMaster),
		zap.String("batch_id", batch.ID),
		zap.String("snapshot_date", batch.Snapshot()))

	typed := make([][]model.TypedRecord, len(s.master))
	var failures []model.CoercionFailure
	var errs []error
	for i, in := range s.master {
		sheet := in.sheet(sheets)
		if sheet == nil {
			errs = append(errs, newError(ErrorCategoryInvalidInput, in.name, StageRead,
				fmt.Errorf("%w: no sheet provided", ErrInvalidInput)))
			continue
		}
		records, fails, err := s.normalize(in.schema, sheet, batch)
		if err != nil {
			errs = append(errs, newError(ErrorCategorySchemaMismatch, in.name, StageResolve, err))
			continue
		}
		typed[i] = records
		failures = append(failures, fails...)
		counts.RecordsRead += len(records)
		counts.Warnings = append(counts.Warnings, sheet.Warnings...)
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		logger.Warn("Material master inputs rejected", zap.Error(err))
		return counts, err
	}
	counts.CoercionFailures = len(failures)

	lookups := s.master[1:]
	refs := make([]*join.ReferenceTable, len(lookups))
	for i, in := range lookups {
		rows := make([]model.Row, len(typed[i+1]))
		for j, rec := range typed[i+1] {
			rows[j] = model.Row(rec.Fields)
		}
		ref, err := join.NewReferenceTable(in.name, in.key, in.attributes, rows, join.KeepLast)
		if err != nil {
			return counts, newError(ErrorCategoryInvalidInput, in.name, StageJoin, err)
		}
		if ref.NullKeys() > 0 || ref.Duplicates() > 0 {
			logger.Info("Reference table deduplicated",
				zap.String("reference", in.name),
				zap.Int("keys", ref.Len()),
				zap.Int("null_keys", ref.NullKeys()),
				zap.Int("duplicates", ref.Duplicates()))
		}
		refs[i] = ref
	}

	joined, dropped, err := joinMaster(typed[0], refs, lookups, s.config.Serialization, s.config.MasterDedup)
	if err != nil {
		return counts, newError(ErrorCategoryInvalidInput, SourceMaterialMaster, StageJoin, err)
	}
	counts.DroppedRows = len(typed[0]) - joined.Len()
	if dropped > 0 {
		logger.Warn("Dropped material rows without a material number", zap.Int("rows", dropped))
	}

	set := model.RowSet{
		Table:   TableMaterialMaster,
		Columns: MasterTableMetadata().ColumnNames(),
		Rows:    joined.Rows,
	}
	for _, row := range set.Rows {
		row[ColBatchID] = batch.ID
		row[ColSnapshotDate] = batch.SnapshotDate
		row[ColSource] = SourceMaterialMaster
	}

	if err := s.appendSet(ctx, SourceMaterialMaster, set, counts); err != nil {
		return counts, err
	}

	s.recordFailures(ctx, batch, failures)
	logger.Info("Built material master",
		zap.Int("materials", set.Len()),
		zap.Int("dropped_rows", counts.DroppedRows),
		zap.Int("coercion_failures", counts.CoercionFailures))
	return counts, nil
}

// BuildMasterFiles reads the five extracts from disk and builds the master
func (s *Service) BuildMasterFiles(ctx context.Context, paths MasterPaths, batch Batch) (*RowCounts, error) {
	var sheets MasterSheets
	targets := []struct {
		path  string
		sheet **reader.Sheet
	}{
		{paths.ZMM345E, &sheets.ZMM345E},
		{paths.StorageLocation, &sheets.StorageLocation},
		{paths.MaterialGroup, &sheets.MaterialGroup},
		{paths.MaterialType, &sheets.MaterialType},
		{paths.MKVZ, &sheets.MKVZ},
	}
	for _, t := range targets {
		sheet, err := reader.Open(t.path)
		if err != nil {
			return nil, newError(ErrorCategoryInvalidInput, SourceMaterialMaster, StageRead,
				fmt.Errorf("%w: %w", ErrInvalidInput, err))
		}
		*t.sheet = sheet
	}
	return s.BuildMaster(ctx, sheets, batch)
}

// normalize resolves headers and coerces every record of a sheet.
// Failures are tagged with the schema's source and the batch.
func (s *Service) normalize(
	sch *schema.SourceSchema,
	sheet *reader.Sheet,
	batch Batch,
) ([]model.TypedRecord, []model.CoercionFailure, error) {
	res, err := sch.Resolve(sheet.Headers)
	if err != nil {
		return nil, nil, err
	}

	columns := sch.Columns()
	records := make([]model.TypedRecord, 0, len(sheet.Records))
	var failures []model.CoercionFailure
	for _, raw := range sheet.Records {
		rec, fails := s.typeConverter.ConvertRecord(res.Apply(raw), columns)
		for i := range fails {
			fails[i].Source = sch.Source
			fails[i].BatchID = batch.ID
			fails[i].SeenAt = batch.CreatedAt
		}
		records = append(records, rec)
		failures = append(failures, fails...)
	}
	return records, failures, nil
}

func (s *Service) appendSet(ctx context.Context, source string, set model.RowSet, counts *RowCounts) error {
	n, err := s.store.Append(ctx, set)
	if err != nil {
		s.logger.Error("Failed to append rows",
			zap.String("source", source),
			zap.String("table", set.Table),
			zap.Int("rows", set.Len()),
			zap.Error(err))
		e := newError(ErrorCategoryStorage, source, StageWrite, err)
		e.Table = set.Table
		return e
	}
	counts.Tables[set.Table] += n
	return nil
}

// recordFailures hands coercion failures to the data-quality recorder.
// Recording problems are logged and never fail the batch.
func (s *Service) recordFailures(ctx context.Context, batch Batch, failures []model.CoercionFailure) {
	if s.dataCleaner == nil || len(failures) == 0 {
		return
	}
	if err := s.dataCleaner.RecordCoercionFailures(ctx, batch.SnapshotDate, failures); err != nil {
		s.logger.Error("Failed to record coercion failures",
			zap.String("batch_id", batch.ID),
			zap.Int("failures", len(failures)),
			zap.Error(err))
	}
}
