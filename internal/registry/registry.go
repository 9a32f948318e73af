package registry

import (
	"context"
	"fmt"

	"sheetcheck/domain/schema"
	"sheetcheck/internal/errors"
	"sheetcheck/ports"
)

// Registry maps schema names to their column specs. It is frozen at
// construction, so concurrent readers need no locking.
type Registry struct {
	order   []schema.Name
	schemas map[schema.Name]schema.Schema
}

// New builds a registry from schemas in registration order
func New(schemas ...schema.Schema) (*Registry, error) {
	r := &Registry{
		order:   make([]schema.Name, 0, len(schemas)),
		schemas: make(map[schema.Name]schema.Schema, len(schemas)),
	}
	for _, s := range schemas {
		if err := s.Check(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, err)
		}
		if _, exists := r.schemas[s.Name]; exists {
			return nil, errors.ConfigInvalid(fmt.Sprintf("schema %q is registered twice", s.Name))
		}
		r.order = append(r.order, s.Name)
		r.schemas[s.Name] = s.Clone()
	}
	return r, nil
}

// Load builds a registry holding the built-in schemas followed by every
// schema the sources supply. A catalog may repeat a built-in schema with the
// same columns (cmd/migrate seeds them); any other repeat is an error.
func Load(ctx context.Context, sources ...ports.SchemaSource) (*Registry, error) {
	builtin := Builtin()
	all := builtin.Schemas()
	for _, src := range sources {
		if src == nil {
			continue
		}
		loaded, err := src.Load(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load schema catalog")
		}
		for _, s := range loaded {
			if b, ok := builtin.schemas[s.Name]; ok && sameColumns(b, s) {
				continue
			}
			all = append(all, s)
		}
	}
	return New(all...)
}

func sameColumns(a, b schema.Schema) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

// Lookup returns a copy of the named schema
func (r *Registry) Lookup(name schema.Name) (schema.Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return schema.Schema{}, errors.UnknownSchema(string(name))
	}
	return s.Clone(), nil
}

// Has reports whether a schema is registered
func (r *Registry) Has(name schema.Name) bool {
	_, ok := r.schemas[name]
	return ok
}

// Names returns the registered names in registration order
func (r *Registry) Names() []schema.Name {
	return append([]schema.Name(nil), r.order...)
}

// Schemas returns copies of every schema in registration order
func (r *Registry) Schemas() []schema.Schema {
	out := make([]schema.Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name].Clone())
	}
	return out
}

// Len returns the number of registered schemas
func (r *Registry) Len() int {
	return len(r.order)
}
