package cli

import (
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

// formatValue renders a native value for text output. Text is quoted,
// absent values print as null.
func formatValue(v ir.NativeValue) string {
	if v.Absent() {
		return "null"
	}
	if n, ok := ir.IntegerOf(v); ok {
		return strconv.FormatInt(n, 10)
	}
	if f, ok := ir.DecimalOf(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if s, ok := ir.TextOf(v); ok {
		return strconv.Quote(s)
	}
	return "?"
}

// jsonValue converts a native value for JSON output; absent is nil.
func jsonValue(v ir.NativeValue) any {
	if v.Absent() {
		return nil
	}
	if n, ok := ir.IntegerOf(v); ok {
		return n
	}
	if f, ok := ir.DecimalOf(v); ok {
		return f
	}
	if s, ok := ir.TextOf(v); ok {
		return s
	}
	return nil
}

// recordValues reads every field of rec, in field order.
func recordValues(fields []ir.FieldDescriptor, rec ir.Record) ([]ir.NativeValue, error) {
	values := make([]ir.NativeValue, len(fields))
	for i, f := range fields {
		v, err := rec.NativeValue(f)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// renderText renders values as name=value pairs.
func renderText(fields []ir.FieldDescriptor, values []ir.NativeValue) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + "=" + formatValue(values[i])
	}
	return strings.Join(parts, " ")
}

// renderJSON maps field names to JSON values.
func renderJSON(fields []ir.FieldDescriptor, values []ir.NativeValue) map[string]any {
	out := make(map[string]any, len(fields))
	for i, f := range fields {
		out[f.Name] = jsonValue(values[i])
	}
	return out
}
