package testutil

import (
	"sort"

	"github.com/roach88/sieve/internal/ir"
)

// FieldMap is an in-memory registry for tests.
//
// Implements ir.Registry and ir.FieldLister.
type FieldMap map[string]ir.FieldDescriptor

// Lookup implements ir.Registry.
func (m FieldMap) Lookup(name string) (ir.FieldDescriptor, bool) {
	d, ok := m[name]
	return d, ok
}

// Fields implements ir.FieldLister. Fields are sorted by name.
func (m FieldMap) Fields() []ir.FieldDescriptor {
	out := make([]ir.FieldDescriptor, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var relational = []ir.Operator{ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe}

func ops(extra ...ir.Operator) ir.OperatorSet {
	return ir.NewOperatorSet(append(append([]ir.Operator{}, relational...), extra...)...)
}

// Fields returns the registry shared by the package tests:
//
//	id        int64           relational, in
//	age       int32           relational, in
//	score     optional_int32  relational
//	price     decimal64       relational
//	name      text            relational, ~, contains, in
//	title     text            relational (<, <=, >, >= by content length), ~, contains
//	nickname  optional_text   =, !=, <= (by content length), ~
//	legacy    int32           relational, disabled
func Fields() FieldMap {
	return FieldMap{
		"id":    {Name: "id", Kind: ir.KindInt64, Operators: ops(ir.OpIn), Enabled: true},
		"age":   {Name: "age", Kind: ir.KindInt32, Operators: ops(ir.OpIn), Enabled: true},
		"score": {Name: "score", Kind: ir.KindOptionalInt32, Operators: ops(), Enabled: true},
		"price": {Name: "price", Kind: ir.KindDecimal64, Operators: ops(), Enabled: true},
		"name": {
			Name:      "name",
			Kind:      ir.KindText,
			Operators: ops(ir.OpMatch, ir.OpContains, ir.OpIn),
			Enabled:   true,
		},
		"title": {
			Name:            "title",
			Kind:            ir.KindText,
			Operators:       ops(ir.OpMatch, ir.OpContains),
			LengthOperators: ir.NewOperatorSet(ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe),
			Enabled:         true,
		},
		"nickname": {
			Name:            "nickname",
			Kind:            ir.KindOptionalText,
			Operators:       ir.NewOperatorSet(ir.OpEq, ir.OpNe, ir.OpLe, ir.OpMatch),
			LengthOperators: ir.NewOperatorSet(ir.OpLe),
			Enabled:         true,
		},
		"legacy": {Name: "legacy", Kind: ir.KindInt32, Operators: ops(), Enabled: false},
	}
}

// Field returns one descriptor from Fields, for building trees by hand.
func Field(name string) ir.FieldDescriptor {
	return Fields()[name]
}
