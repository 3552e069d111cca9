package engine

import (
	"fmt"

	"github.com/roach88/sieve/internal/dispatch"
	"github.com/roach88/sieve/internal/ir"
)

// Evaluate reports whether rec satisfies cond, using the default operator
// matrix.
func Evaluate(cond ir.Condition, rec ir.Record) (bool, error) {
	return evaluate(dispatch.Default(), cond, rec)
}

// EvaluateWith is Evaluate with an explicit operator matrix.
func EvaluateWith(table *dispatch.Table, cond ir.Condition, rec ir.Record) (bool, error) {
	return evaluate(table, cond, rec)
}

func evaluate(table *dispatch.Table, cond ir.Condition, rec ir.Record) (bool, error) {
	switch n := cond.(type) {
	case ir.Leaf:
		return matchLeaf(table, n, rec)

	case ir.And:
		ok, err := evaluate(table, n.Left, rec)
		if err != nil || !ok {
			return false, err
		}
		return evaluate(table, n.Right, rec)

	case ir.Or:
		ok, err := evaluate(table, n.Left, rec)
		if err != nil || ok {
			return ok, err
		}
		return evaluate(table, n.Right, rec)

	case ir.Not:
		ok, err := evaluate(table, n.Inner, rec)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case ir.Group:
		return evaluate(table, n.Inner, rec)

	default:
		return false, fmt.Errorf("unsupported condition node: %T", cond)
	}
}

// matchLeaf compares one field of rec against the leaf's literal.
func matchLeaf(table *dispatch.Table, leaf ir.Leaf, rec ir.Record) (bool, error) {
	v, err := rec.NativeValue(leaf.Field)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, ir.NewFieldError(ir.ErrCodeMissingRecordField, leaf.Field.Name)
	}

	if v.Kind() != leaf.Field.Kind {
		return false, &ir.Error{
			Code:     ir.ErrCodeFieldKindMismatch,
			Field:    leaf.Field.Name,
			Value:    v.Kind().String(),
			Expected: leaf.Field.Kind.String(),
		}
	}

	if v.Absent() {
		return false, nil
	}

	return table.Compare(leaf.Field, leaf.Operator, v, leaf.Literal)
}
