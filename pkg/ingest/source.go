// pkg/ingest/source.go
package ingest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/David-Botos/erp-ingress/pkg/model"
	"github.com/David-Botos/erp-ingress/pkg/schema"
)

// Meta columns prepended to every destination table
const (
	ColBatchID      = "upload_batch_id"
	ColSnapshotDate = "snapshot_date"
	ColSource       = "source"
	// ColExtras holds unrecognized headers of a raw projection as JSON
	ColExtras = "extra_columns"
)

// MetaColumns returns the batch columns every destination starts with
func MetaColumns() []model.Column {
	return []model.Column{
		{Name: ColBatchID, Type: model.Text(), Nullable: false},
		model.Col(ColSnapshotDate, model.Date()),
		model.Col(ColSource, model.Text()),
	}
}

// BuildFunc turns one typed record into the payload of a destination row.
// Meta columns are filled in by the caller.
type BuildFunc func(rec model.TypedRecord, snapshot time.Time) model.Row

// Projection describes one destination table fed by a source
type Projection struct {
	Table   string
	Columns []model.Column // payload columns in insert order
	Extras  bool           // append ColExtras with the unrecognized headers
	Build   BuildFunc
}

// Metadata returns the full destination shape including meta columns
func (p Projection) Metadata() *model.TableMetadata {
	cols := MetaColumns()
	cols = append(cols, p.Columns...)
	if p.Extras {
		cols = append(cols, model.Col(ColExtras, model.JSON()))
	}
	return &model.TableMetadata{Table: p.Table, Columns: cols}
}

// RowSet projects typed records into rows for this destination
func (p Projection) RowSet(records []model.TypedRecord, source string, batch Batch) model.RowSet {
	meta := p.Metadata()
	set := model.RowSet{
		Table:   p.Table,
		Columns: meta.ColumnNames(),
		Rows:    make([]model.Row, 0, len(records)),
	}

	for _, rec := range records {
		row := p.Build(rec, batch.SnapshotDate)
		if row == nil {
			row = model.Row{}
		}
		row[ColBatchID] = batch.ID
		row[ColSnapshotDate] = batch.SnapshotDate
		row[ColSource] = source
		if p.Extras {
			if len(rec.Extras) > 0 {
				row[ColExtras] = rec.Extras
			} else {
				row[ColExtras] = nil
			}
		}
		set.Rows = append(set.Rows, row)
	}
	return set
}

func (p Projection) validate(source string) error {
	if p.Table == "" {
		return fmt.Errorf("source %s has a projection without a table", source)
	}
	if p.Build == nil {
		return fmt.Errorf("projection %s of %s has no row builder", p.Table, source)
	}

	seen := make(map[string]bool)
	for _, col := range p.Metadata().Columns {
		if seen[col.Name] {
			return fmt.Errorf("projection %s of %s declares column %s twice", p.Table, source, col.Name)
		}
		seen[col.Name] = true
	}
	return nil
}

// Source is one registered extract: its header table and the tables it feeds
type Source struct {
	Tag         string
	Route       string // upload route suffix, e.g. MB52 for /upload_MB52
	Schema      *schema.SourceSchema
	Projections []Projection
}

// Catalog is the validated set of sources known to the service
type Catalog struct {
	sources []*Source
	byTag   map[string]*Source
	tables  []*model.TableMetadata
}

// NewCatalog validates every source and indexes it by tag. Sources that
// share a destination table must declare it with identical columns.
func NewCatalog(sources ...*Source) (*Catalog, error) {
	c := &Catalog{byTag: make(map[string]*Source, len(sources))}
	shapes := make(map[string]*model.TableMetadata)

	for _, src := range sources {
		if src.Tag == "" || src.Schema == nil {
			return nil, fmt.Errorf("source %q must have a tag and a schema", src.Tag)
		}
		key := strings.ToUpper(src.Tag)
		if _, dup := c.byTag[key]; dup {
			return nil, fmt.Errorf("source %s registered twice", src.Tag)
		}
		if err := src.Schema.Validate(); err != nil {
			return nil, fmt.Errorf("invalid schema for %s: %w", src.Tag, err)
		}
		if len(src.Projections) == 0 {
			return nil, fmt.Errorf("source %s has no projections", src.Tag)
		}

		for _, p := range src.Projections {
			if err := p.validate(src.Tag); err != nil {
				return nil, err
			}
			meta := p.Metadata()
			if existing, ok := shapes[p.Table]; ok {
				if !sameShape(existing, meta) {
					return nil, fmt.Errorf("table %s is declared with different columns by %s", p.Table, src.Tag)
				}
				continue
			}
			shapes[p.Table] = meta
			c.tables = append(c.tables, meta)
		}

		c.byTag[key] = src
		c.sources = append(c.sources, src)
	}
	return c, nil
}

// Source returns the source registered under tag, ignoring case
func (c *Catalog) Source(tag string) (*Source, error) {
	src, ok := c.byTag[strings.ToUpper(strings.TrimSpace(tag))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, tag)
	}
	return src, nil
}

// Sources returns the registered sources in registration order
func (c *Catalog) Sources() []*Source {
	return append([]*Source(nil), c.sources...)
}

// Tags returns the registered source tags, sorted
func (c *Catalog) Tags() []string {
	tags := make([]string, 0, len(c.sources))
	for _, src := range c.sources {
		tags = append(tags, src.Tag)
	}
	sort.Strings(tags)
	return tags
}

// Tables returns every destination table in first-declared order
func (c *Catalog) Tables() []*model.TableMetadata {
	return append([]*model.TableMetadata(nil), c.tables...)
}

func sameShape(a, b *model.TableMetadata) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		x, y := a.Columns[i], b.Columns[i]
		if x.Name != y.Name || x.Nullable != y.Nullable || x.Type.String() != y.Type.String() {
			return false
		}
	}
	return true
}

// rawProjection stores every canonical field as typed, plus unrecognized headers
func rawProjection(table string, s *schema.SourceSchema) Projection {
	return Projection{
		Table:   table,
		Columns: s.Columns(),
		Extras:  true,
		Build: func(rec model.TypedRecord, _ time.Time) model.Row {
			row := make(model.Row, len(rec.Fields)+4)
			for k, v := range rec.Fields {
				row[k] = v
			}
			return row
		},
	}
}

// copyFields copies the named typed fields into a row under the same names
func copyFields(row model.Row, rec model.TypedRecord, names ...string) model.Row {
	for _, name := range names {
		row[name] = rec.Value(name)
	}
	return row
}
