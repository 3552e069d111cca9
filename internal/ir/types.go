package ir

import (
	"slices"
	"strings"
)

// FieldKind is the native representation of a field in a data record.
type FieldKind int

const (
	KindInvalid FieldKind = iota
	KindInt64
	KindInt32
	KindOptionalInt32
	KindDecimal64
	KindText
	KindOptionalText
)

var kindNames = map[FieldKind]string{
	KindInt64:         "int64",
	KindInt32:         "int32",
	KindOptionalInt32: "optional_int32",
	KindDecimal64:     "decimal64",
	KindText:          "text",
	KindOptionalText:  "optional_text",
}

// String returns the registry-file name of the kind.
func (k FieldKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsText reports whether values of this kind are strings.
func (k FieldKind) IsText() bool {
	return k == KindText || k == KindOptionalText
}

// IsOptional reports whether values of this kind may be absent.
func (k FieldKind) IsOptional() bool {
	return k == KindOptionalInt32 || k == KindOptionalText
}

// ParseFieldKind maps a registry-file name to a FieldKind.
func ParseFieldKind(name string) (FieldKind, bool) {
	for k, n := range kindNames {
		if n == strings.ToLower(name) {
			return k, true
		}
	}
	return KindInvalid, false
}

// AllKinds returns every valid kind in declaration order.
func AllKinds() []FieldKind {
	return []FieldKind{KindInt64, KindInt32, KindOptionalInt32, KindDecimal64, KindText, KindOptionalText}
}

// Operator is a named relation a field may support.
type Operator int

const (
	OpInvalid Operator = iota
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpMatch
	OpIn
	OpContains
)

// operatorTable is the fixed symbol table shared by the lexer and the
// registry loaders. Word operators are matched case-insensitively.
var operatorTable = []struct {
	op   Operator
	text string
}{
	{OpEq, "="},
	{OpNe, "!="},
	{OpLt, "<"},
	{OpLe, "<="},
	{OpGt, ">"},
	{OpGe, ">="},
	{OpMatch, "~"},
	{OpIn, "in"},
	{OpContains, "contains"},
}

// String returns the query-text form of the operator.
func (o Operator) String() string {
	for _, e := range operatorTable {
		if e.op == o {
			return e.text
		}
	}
	return "invalid"
}

// ParseOperator looks up an operator by its query-text form.
func ParseOperator(text string) (Operator, bool) {
	lower := strings.ToLower(text)
	for _, e := range operatorTable {
		if e.text == lower {
			return e.op, true
		}
	}
	return OpInvalid, false
}

// AllOperators returns every valid operator in declaration order.
func AllOperators() []Operator {
	ops := make([]Operator, 0, len(operatorTable))
	for _, e := range operatorTable {
		ops = append(ops, e.op)
	}
	return ops
}

// IsRelational reports whether the operator orders its operands.
func (o Operator) IsRelational() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Mode selects how a field's value is interpreted by an operator.
type Mode int

const (
	// ModeValue compares the native value itself.
	ModeValue Mode = iota
	// ModeContentLength compares the character count of a text value.
	ModeContentLength
)

func (m Mode) String() string {
	if m == ModeContentLength {
		return "content-length"
	}
	return "value"
}

// OperatorSet is a set of operators.
type OperatorSet map[Operator]struct{}

// NewOperatorSet builds a set from the given operators.
func NewOperatorSet(ops ...Operator) OperatorSet {
	s := make(OperatorSet, len(ops))
	for _, op := range ops {
		s[op] = struct{}{}
	}
	return s
}

// Has reports whether op is in the set.
func (s OperatorSet) Has(op Operator) bool {
	_, ok := s[op]
	return ok
}

// Sorted returns the members in declaration order.
func (s OperatorSet) Sorted() []Operator {
	ops := make([]Operator, 0, len(s))
	for op := range s {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// FieldDescriptor declares a field: its name, native kind, the operators it
// enables and whether it is administratively enabled.
//
// LengthOperators lists the operators that run in content-length mode for
// this field. It must be a subset of Operators and only applies to text kinds.
type FieldDescriptor struct {
	Name            string
	Kind            FieldKind
	Operators       OperatorSet
	LengthOperators OperatorSet
	Enabled         bool
}

// Supports reports whether op is enabled for the field.
func (d FieldDescriptor) Supports(op Operator) bool {
	return d.Operators.Has(op)
}

// ModeFor returns the comparison mode the field uses with op.
func (d FieldDescriptor) ModeFor(op Operator) Mode {
	if d.LengthOperators.Has(op) {
		return ModeContentLength
	}
	return ModeValue
}

// Registry resolves field names to descriptors. sieve only reads it.
type Registry interface {
	Lookup(name string) (FieldDescriptor, bool)
}

// FieldLister is implemented by registries that can enumerate their fields.
// The dispatch completeness check uses it.
type FieldLister interface {
	Fields() []FieldDescriptor
}

// Record supplies the native value of a field for one evaluation.
type Record interface {
	NativeValue(field FieldDescriptor) (NativeValue, error)
}
