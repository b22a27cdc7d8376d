// pkg/schema/resolve.go
package schema

import (
	"strings"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// NormalizeHeader trims, case-folds and collapses internal whitespace
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// Resolution maps the raw headers of one file onto a schema.
// It is computed once per file and applied to every row.
type Resolution struct {
	schema  *SourceSchema
	columns map[string]string // canonical field -> raw header
	extras  []string          // raw headers not used by any field
	missing []string          // optional fields with no header, synthesized as null
}

// Resolve matches raw headers against the schema. Missing required fields
// produce a *SchemaMismatchError naming every one of them.
func (s *SourceSchema) Resolve(headers []string) (*Resolution, error) {
	byKey := make(map[string][]string, len(headers))
	for _, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], h)
	}

	res := &Resolution{
		schema:  s,
		columns: make(map[string]string, len(s.Fields)),
	}
	used := make(map[string]bool, len(headers))
	var missingRequired []string

	for _, f := range s.Fields {
		found := false
		for _, spelling := range f.Headers {
			raws := byKey[NormalizeHeader(spelling)]
			if len(raws) == 0 {
				continue
			}
			res.columns[f.Name] = raws[0]
			used[raws[0]] = true
			found = true
			break
		}
		if found {
			continue
		}
		if f.Required {
			missingRequired = append(missingRequired, f.Name)
		} else {
			res.missing = append(res.missing, f.Name)
		}
	}

	if len(missingRequired) > 0 {
		return nil, &SchemaMismatchError{
			Source:  s.Source,
			Missing: missingRequired,
			Headers: append([]string(nil), headers...),
		}
	}

	for _, h := range headers {
		if !used[h] && strings.TrimSpace(h) != "" {
			res.extras = append(res.extras, h)
		}
	}
	return res, nil
}

// Header returns the raw header bound to a canonical field
func (r *Resolution) Header(field string) (string, bool) {
	h, ok := r.columns[field]
	return h, ok
}

// Extras returns the raw headers that no canonical field claimed
func (r *Resolution) Extras() []string {
	return r.extras
}

// Synthesized returns the optional fields filled with null for every row
func (r *Resolution) Synthesized() []string {
	return r.missing
}

// Apply projects a source row onto the canonical field set
func (r *Resolution) Apply(rec model.SourceRecord) model.CanonicalRecord {
	out := model.CanonicalRecord{
		Line:   rec.Line,
		Fields: make(map[string]any, len(r.schema.Fields)),
	}
	for _, f := range r.schema.Fields {
		if h, ok := r.columns[f.Name]; ok {
			out.Fields[f.Name] = rec.Cells[h]
		} else {
			out.Fields[f.Name] = nil
		}
	}
	if len(r.extras) > 0 {
		out.Extras = make(map[string]any, len(r.extras))
		for _, h := range r.extras {
			out.Extras[h] = rec.Cells[h]
		}
	}
	return out
}
