// Package dispatch holds the operator matrix: for each (field kind,
// operator, mode) the function that compares a native value against a
// literal.
//
// The literal operand is coerced lazily by each entry through the
// ir.Literal accessors, so a type mismatch surfaces as a coercion error
// naming the literal (e.g. NOT_AN_INTEGER for `age = "abc"`).
//
// Entries never see absent optional values; the evaluator short-circuits
// those to false before dispatching.
package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/sieve/internal/ir"
)

// CompareFunc compares a present native value against a literal.
type CompareFunc func(v ir.NativeValue, lit ir.Literal) (bool, error)

// Key identifies one cell of the matrix.
type Key struct {
	Kind     ir.FieldKind
	Operator ir.Operator
	Mode     ir.Mode
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s (%s)", k.Kind, k.Operator, k.Mode)
}

// Table maps keys to compare functions.
//
// A Table is populated before use and read-only afterwards; concurrent
// Compare calls are safe.
type Table struct {
	entries map[Key]CompareFunc
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]CompareFunc)}
}

// Register sets the compare function for (kind, op, mode), replacing any
// existing entry.
func (t *Table) Register(kind ir.FieldKind, op ir.Operator, mode ir.Mode, fn CompareFunc) {
	t.entries[Key{Kind: kind, Operator: op, Mode: mode}] = fn
}

// Lookup returns the compare function for (kind, op, mode).
func (t *Table) Lookup(kind ir.FieldKind, op ir.Operator, mode ir.Mode) (CompareFunc, bool) {
	fn, ok := t.entries[Key{Kind: kind, Operator: op, Mode: mode}]
	return fn, ok
}

// Keys returns every registered key, sorted by kind, operator, then mode.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Operator != b.Operator {
			return a.Operator < b.Operator
		}
		return a.Mode < b.Mode
	})
	return keys
}

// Compare evaluates field op lit against v using the entry selected by the
// field's kind and the mode the field assigns to op.
//
// A missing entry yields UNSUPPORTED_OPERATOR. Registries checked with
// Check never reach that path; it covers hand-built trees.
func (t *Table) Compare(field ir.FieldDescriptor, op ir.Operator, v ir.NativeValue, lit ir.Literal) (bool, error) {
	fn, ok := t.Lookup(field.Kind, op, field.ModeFor(op))
	if !ok {
		return false, ir.NewUnsupportedOperatorError(field.Name, op)
	}

	matched, err := fn(v, lit)
	if err != nil {
		var e *ir.Error
		if errors.As(err, &e) && e.Field == "" && e.Code.Category() == ir.CategoryCoercion {
			e.Field = field.Name
		}
		return false, err
	}
	return matched, nil
}

// Gap is a field operator with no matrix entry.
type Gap struct {
	Field string
	Key   Key
}

// CheckError lists every gap found by Check.
type CheckError struct {
	Gaps []Gap
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	parts := make([]string, len(e.Gaps))
	for i, g := range e.Gaps {
		parts[i] = fmt.Sprintf("%s: %s", g.Field, g.Key)
	}
	return "no operator implementation for " + strings.Join(parts, "; ")
}

// Check verifies that every operator enabled by every field has an entry.
// Disabled fields are checked too; enabling a field must not be what
// exposes a gap.
func (t *Table) Check(fields []ir.FieldDescriptor) error {
	var gaps []Gap
	for _, f := range fields {
		for _, op := range f.Operators.Sorted() {
			key := Key{Kind: f.Kind, Operator: op, Mode: f.ModeFor(op)}
			if _, ok := t.entries[key]; !ok {
				gaps = append(gaps, Gap{Field: f.Name, Key: key})
			}
		}
	}
	if len(gaps) > 0 {
		return &CheckError{Gaps: gaps}
	}
	return nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in matrix. It is built once and shared.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable()
		registerIntegers(defaultTable)
		registerDecimals(defaultTable)
		registerText(defaultTable)
		registerContentLength(defaultTable)
	})
	return defaultTable
}
