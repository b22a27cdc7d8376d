// pkg/schema/schema.go
package schema

import (
	"errors"
	"fmt"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// FieldSpec declares one canonical field and the header spellings that map to it.
// Headers are listed in preference order.
type FieldSpec struct {
	Name     string
	Type     model.FieldType
	Required bool
	Headers  []string
}

// Field builds an optional FieldSpec
func Field(name string, t model.FieldType, headers ...string) FieldSpec {
	return FieldSpec{Name: name, Type: t, Headers: headers}
}

// RequiredField builds a FieldSpec that must resolve for the source to be accepted
func RequiredField(name string, t model.FieldType, headers ...string) FieldSpec {
	return FieldSpec{Name: name, Type: t, Required: true, Headers: headers}
}

// SourceSchema is the static header table for one source extract
type SourceSchema struct {
	Source string
	Fields []FieldSpec
}

// New creates a SourceSchema
func New(source string, fields ...FieldSpec) *SourceSchema {
	return &SourceSchema{Source: source, Fields: fields}
}

// Validate checks the header table for empty names, duplicate fields and
// spellings claimed by more than one field
func (s *SourceSchema) Validate() error {
	if s.Source == "" {
		return errors.New("schema source name is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s declares no fields", s.Source)
	}

	names := make(map[string]bool, len(s.Fields))
	claimed := make(map[string]string)
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s has a field with an empty name", s.Source)
		}
		if names[f.Name] {
			return fmt.Errorf("schema %s declares field %q twice", s.Source, f.Name)
		}
		names[f.Name] = true

		if len(f.Headers) == 0 {
			return fmt.Errorf("schema %s field %q has no accepted headers", s.Source, f.Name)
		}
		if f.Type.Kind == model.KindCode && f.Type.Width <= 0 {
			return fmt.Errorf("schema %s field %q: code width must be positive", s.Source, f.Name)
		}
		for _, h := range f.Headers {
			key := NormalizeHeader(h)
			if key == "" {
				return fmt.Errorf("schema %s field %q has a blank header spelling", s.Source, f.Name)
			}
			if owner, ok := claimed[key]; ok && owner != f.Name {
				return fmt.Errorf("schema %s: header %q is claimed by both %q and %q",
					s.Source, h, owner, f.Name)
			}
			claimed[key] = f.Name
		}
	}
	return nil
}

// FieldNames returns the canonical field names in declaration order
func (s *SourceSchema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Columns returns the canonical fields as destination columns
func (s *SourceSchema) Columns() []model.Column {
	out := make([]model.Column, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = model.Col(f.Name, f.Type)
	}
	return out
}

// Field returns the spec for a canonical field
func (s *SourceSchema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
