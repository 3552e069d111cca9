// Package record provides concrete data records for evaluation: MapRecord
// over decoded YAML (or any map[string]any) and JSONRecord over a parsed
// fastjson object.
//
// Both convert a raw value into the native kind the field descriptor
// declares. A missing key or null is an absent optional value; for a
// non-optional field it is MISSING_RECORD_FIELD. A value that cannot be
// represented in the declared kind is FIELD_KIND_MISMATCH (wrong type) or
// INVALID_VALUE (right type, out of range). Text is NFC-normalized so that
// it compares equal to normalized query literals.
package record

import (
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sieve/internal/ir"
)

// absent returns the absent value for optional kinds, or a
// MISSING_RECORD_FIELD error.
func absent(field ir.FieldDescriptor) (ir.NativeValue, error) {
	switch field.Kind {
	case ir.KindOptionalInt32:
		return ir.OptionalInt32{}, nil
	case ir.KindOptionalText:
		return ir.OptionalText{}, nil
	default:
		return nil, ir.NewFieldError(ir.ErrCodeMissingRecordField, field.Name)
	}
}

func mismatch(field ir.FieldDescriptor, got string) error {
	return &ir.Error{
		Code:     ir.ErrCodeFieldKindMismatch,
		Field:    field.Name,
		Value:    got,
		Expected: field.Kind.String(),
	}
}

func invalid(field ir.FieldDescriptor, v any) error {
	return &ir.Error{Code: ir.ErrCodeInvalidValue, Field: field.Name, Value: fmt.Sprint(v)}
}

// fromInteger builds an integer native value, range-checking 32-bit kinds.
func fromInteger(field ir.FieldDescriptor, n int64) (ir.NativeValue, error) {
	switch field.Kind {
	case ir.KindInt64:
		return ir.Int64Value(n), nil
	case ir.KindInt32, ir.KindOptionalInt32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, invalid(field, n)
		}
		if field.Kind == ir.KindOptionalInt32 {
			return ir.SomeInt32(int32(n)), nil
		}
		return ir.Int32Value(n), nil
	case ir.KindDecimal64:
		return ir.Decimal64Value(n), nil
	default:
		return nil, mismatch(field, "integer")
	}
}

func fromDecimal(field ir.FieldDescriptor, f float64) (ir.NativeValue, error) {
	if field.Kind == ir.KindDecimal64 {
		return ir.Decimal64Value(f), nil
	}
	// Integral floats are accepted for integer kinds; JSON decoders
	// commonly produce them.
	if field.Kind == ir.KindInt64 || field.Kind == ir.KindInt32 || field.Kind == ir.KindOptionalInt32 {
		if f != math.Trunc(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, invalid(field, f)
		}
		return fromInteger(field, int64(f))
	}
	return nil, mismatch(field, "decimal")
}

func fromText(field ir.FieldDescriptor, s string) (ir.NativeValue, error) {
	s = norm.NFC.String(s)
	switch field.Kind {
	case ir.KindText:
		return ir.TextValue(s), nil
	case ir.KindOptionalText:
		return ir.SomeText(s), nil
	default:
		return nil, mismatch(field, "text")
	}
}
