// Package registry provides the concrete field registry: the set of
// fields a query may name, their native kinds, the operators each enables
// and whether each is enabled.
//
// A Registry is validated against an operator matrix when it is built, so
// every operator a field enables has an implementation before any query is
// parsed.
package registry

import (
	"fmt"

	"github.com/roach88/sieve/internal/dispatch"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/lexer"
)

// Registry is an immutable set of field descriptors.
//
// Implements ir.Registry and ir.FieldLister. Safe for concurrent use.
type Registry struct {
	byName map[string]ir.FieldDescriptor
	order  []string
}

// New builds a registry checked against dispatch.Default().
func New(fields ...ir.FieldDescriptor) (*Registry, error) {
	return NewWithTable(dispatch.Default(), fields...)
}

// NewWithTable builds a registry checked against table.
//
// Rejects duplicate or empty names, names a query cannot reference, invalid kinds, operators outside the
// operator table, length operators that are not enabled operators or sit on
// a non-text field, and any field operator the table cannot evaluate.
func NewWithTable(table *dispatch.Table, fields ...ir.FieldDescriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]ir.FieldDescriptor, len(fields))}

	for i, f := range fields {
		if err := validateField(f); err != nil {
			return nil, &LoadError{Field: fmt.Sprintf("fields[%d]", i), Message: err.Error()}
		}
		if _, dup := r.byName[f.Name]; dup {
			return nil, &LoadError{
				Field:   fmt.Sprintf("fields[%d].name", i),
				Message: fmt.Sprintf("duplicate field %q", f.Name),
			}
		}
		r.byName[f.Name] = f
		r.order = append(r.order, f.Name)
	}

	if err := table.Check(fields); err != nil {
		return nil, err
	}
	return r, nil
}

func validateField(f ir.FieldDescriptor) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !lexer.IsFieldName(f.Name) {
		return fmt.Errorf("field %q: name is not a valid field identifier", f.Name)
	}
	if f.Kind == ir.KindInvalid || f.Kind.String() == "invalid" {
		return fmt.Errorf("field %q: invalid kind", f.Name)
	}
	for op := range f.Operators {
		if op.String() == "invalid" {
			return fmt.Errorf("field %q: invalid operator %d", f.Name, op)
		}
	}
	for op := range f.LengthOperators {
		if !f.Kind.IsText() {
			return fmt.Errorf("field %q: length operator %q on %s field", f.Name, op, f.Kind)
		}
		if !op.IsRelational() {
			return fmt.Errorf("field %q: length operator %q is not relational", f.Name, op)
		}
		if !f.Operators.Has(op) {
			return fmt.Errorf("field %q: length operator %q is not an enabled operator", f.Name, op)
		}
	}
	return nil
}

// Lookup implements ir.Registry.
func (r *Registry) Lookup(name string) (ir.FieldDescriptor, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Fields implements ir.FieldLister. Fields are returned in declaration order.
func (r *Registry) Fields() []ir.FieldDescriptor {
	out := make([]ir.FieldDescriptor, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}

// Len returns the number of fields.
func (r *Registry) Len() int {
	return len(r.order)
}
