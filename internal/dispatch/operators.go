package dispatch

import (
	"cmp"
	"regexp"
	"strings"
	"sync"

	"github.com/roach88/sieve/internal/ir"
)

// relations maps each relational operator to its test on a cmp.Compare result.
var relations = map[ir.Operator]func(c int) bool{
	ir.OpEq: func(c int) bool { return c == 0 },
	ir.OpNe: func(c int) bool { return c != 0 },
	ir.OpLt: func(c int) bool { return c < 0 },
	ir.OpLe: func(c int) bool { return c <= 0 },
	ir.OpGt: func(c int) bool { return c > 0 },
	ir.OpGe: func(c int) bool { return c >= 0 },
}

// relational builds a CompareFunc that extracts both operands and applies rel.
func relational[T cmp.Ordered](
	native func(ir.NativeValue) (T, bool),
	literal func(ir.Literal) (T, error),
	rel func(int) bool,
) CompareFunc {
	return func(v ir.NativeValue, lit ir.Literal) (bool, error) {
		want, err := literal(lit)
		if err != nil {
			return false, err
		}
		got, ok := native(v)
		if !ok {
			return false, nil
		}
		return rel(cmp.Compare(got, want)), nil
	}
}

// membership builds the `in` CompareFunc: true if any element equals the value.
// Every element is coerced, so `age in {1, "x"}` fails even when 1 matches.
func membership[T comparable](
	native func(ir.NativeValue) (T, bool),
	literal func(ir.Literal) (T, error),
) CompareFunc {
	return func(v ir.NativeValue, lit ir.Literal) (bool, error) {
		got, ok := native(v)
		if !ok {
			return false, nil
		}
		found := false
		for _, el := range lit.Elements() {
			want, err := literal(el)
			if err != nil {
				return false, err
			}
			if got == want {
				found = true
			}
		}
		return found, nil
	}
}

func asInteger(lit ir.Literal) (int64, error)   { return lit.AsInteger() }
func asDecimal(lit ir.Literal) (float64, error) { return lit.AsDecimal() }
func asText(lit ir.Literal) (string, error)     { return lit.AsText() }

func contentLength(v ir.NativeValue) (int64, bool) {
	s, ok := ir.TextOf(v)
	if !ok {
		return 0, false
	}
	return ir.ContentLength(s), true
}

func registerIntegers(t *Table) {
	for _, kind := range []ir.FieldKind{ir.KindInt64, ir.KindInt32, ir.KindOptionalInt32} {
		for op, rel := range relations {
			t.Register(kind, op, ir.ModeValue, relational(ir.IntegerOf, asInteger, rel))
		}
		t.Register(kind, ir.OpIn, ir.ModeValue, membership(ir.IntegerOf, asInteger))
	}
}

func registerDecimals(t *Table) {
	for op, rel := range relations {
		t.Register(ir.KindDecimal64, op, ir.ModeValue, relational(ir.DecimalOf, asDecimal, rel))
	}
}

func registerText(t *Table) {
	for _, kind := range []ir.FieldKind{ir.KindText, ir.KindOptionalText} {
		for op, rel := range relations {
			t.Register(kind, op, ir.ModeValue, relational(ir.TextOf, asText, rel))
		}
		t.Register(kind, ir.OpIn, ir.ModeValue, membership(ir.TextOf, asText))
		t.Register(kind, ir.OpContains, ir.ModeValue, compareContains)
		t.Register(kind, ir.OpMatch, ir.ModeValue, compareMatch)
	}
}

func registerContentLength(t *Table) {
	for _, kind := range []ir.FieldKind{ir.KindText, ir.KindOptionalText} {
		for op, rel := range relations {
			t.Register(kind, op, ir.ModeContentLength, relational(contentLength, asInteger, rel))
		}
	}
}

func compareContains(v ir.NativeValue, lit ir.Literal) (bool, error) {
	want, err := lit.AsText()
	if err != nil {
		return false, err
	}
	got, ok := ir.TextOf(v)
	if !ok {
		return false, nil
	}
	return strings.Contains(got, want), nil
}

// compareMatch reports whether the value contains a match of the RE2
// pattern. Anchor with ^ and $ for a full match.
func compareMatch(v ir.NativeValue, lit ir.Literal) (bool, error) {
	pattern, err := lit.AsText()
	if err != nil {
		return false, err
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return false, err
	}
	got, ok := ir.TextOf(v)
	if !ok {
		return false, nil
	}
	return re.MatchString(got), nil
}

// patterns caches compiled regular expressions by source text.
var patterns sync.Map // map[string]*regexp.Regexp

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &ir.Error{Code: ir.ErrCodeInvalidValue, Value: pattern, Err: err}
	}
	actual, _ := patterns.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
