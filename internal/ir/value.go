package ir

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Literal is a sealed interface representing the right-hand side of a
// condition. Only Integer, Decimal, Text and List implement it.
//
// Coercion is requested by the dispatch matrix at evaluation time. Each
// accessor either returns the requested Go type or fails with a typed
// *Error naming the literal's rendering.
type Literal interface {
	literal() // Sealed - only these types implement it

	// String renders the literal in query syntax.
	String() string

	// AsInteger returns the literal as int64 or fails with NOT_AN_INTEGER.
	AsInteger() (int64, error)

	// AsDecimal returns the literal as float64 or fails with NOT_A_DECIMAL.
	AsDecimal() (float64, error)

	// AsText returns the literal as a string or fails with NOT_A_STRING.
	AsText() (string, error)

	// Elements returns the members of a List, or the literal itself.
	Elements() []Literal
}

// Integer is a 64-bit signed integer literal.
type Integer int64

// Decimal is a 64-bit floating point literal.
type Decimal float64

// Text is a string literal.
type Text string

// List is a flat, ordered sequence of literals.
//
// The scalar accessors reference the first element, so `{5}` coerces
// like `5`. On an empty list they fail with REF_VALUE_IN_EMPTY_LIST.
type List []Literal

func (Integer) literal() {}
func (Decimal) literal() {}
func (Text) literal()    {}
func (List) literal()    {}

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

// String renders d in positional notation. Query text has no exponent
// syntax, so 1e21 renders as all of its digits.
func (d Decimal) String() string {
	s := strconv.FormatFloat(float64(d), 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

// String renders t as a quoted query string. Newline, carriage return and
// tab are written as \n, \r and \t.
func (t Text) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range string(t) {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (i Integer) AsInteger() (int64, error) { return int64(i), nil }
func (i Integer) AsDecimal() (float64, error) {
	return 0, &Error{Code: ErrCodeNotADecimal, Value: i.String()}
}
func (i Integer) AsText() (string, error) {
	return "", &Error{Code: ErrCodeNotAString, Value: i.String()}
}
func (i Integer) Elements() []Literal { return []Literal{i} }

func (d Decimal) AsInteger() (int64, error) {
	return 0, &Error{Code: ErrCodeNotAnInteger, Value: d.String()}
}
func (d Decimal) AsDecimal() (float64, error) { return float64(d), nil }
func (d Decimal) AsText() (string, error) {
	return "", &Error{Code: ErrCodeNotAString, Value: d.String()}
}
func (d Decimal) Elements() []Literal { return []Literal{d} }

func (t Text) AsInteger() (int64, error) {
	return 0, &Error{Code: ErrCodeNotAnInteger, Value: t.String()}
}
func (t Text) AsDecimal() (float64, error) {
	return 0, &Error{Code: ErrCodeNotADecimal, Value: t.String()}
}
func (t Text) AsText() (string, error) { return string(t), nil }
func (t Text) Elements() []Literal     { return []Literal{t} }

func (l List) first() (Literal, error) {
	if len(l) == 0 {
		return nil, &Error{Code: ErrCodeRefValueInEmptyList}
	}
	return l[0], nil
}

func (l List) AsInteger() (int64, error) {
	v, err := l.first()
	if err != nil {
		return 0, err
	}
	return v.AsInteger()
}

func (l List) AsDecimal() (float64, error) {
	v, err := l.first()
	if err != nil {
		return 0, err
	}
	return v.AsDecimal()
}

func (l List) AsText() (string, error) {
	v, err := l.first()
	if err != nil {
		return "", err
	}
	return v.AsText()
}

func (l List) Elements() []Literal { return l }

// NativeValue is a sealed interface representing a field's value in a
// data record. Optional variants model "field may be absent".
type NativeValue interface {
	nativeValue() // Sealed

	// Kind returns the native representation.
	Kind() FieldKind

	// Absent reports whether an optional value is missing.
	// Non-optional values are never absent.
	Absent() bool
}

// Int64Value is a signed 64-bit integer field value.
type Int64Value int64

// Int32Value is a signed 32-bit integer field value.
type Int32Value int32

// OptionalInt32 is a signed 32-bit integer field value that may be absent.
type OptionalInt32 struct {
	Value int32
	Valid bool
}

// Decimal64Value is a 64-bit floating point field value.
type Decimal64Value float64

// TextValue is a string field value.
type TextValue string

// OptionalText is a string field value that may be absent.
type OptionalText struct {
	Value string
	Valid bool
}

func (Int64Value) nativeValue()     {}
func (Int32Value) nativeValue()     {}
func (OptionalInt32) nativeValue()  {}
func (Decimal64Value) nativeValue() {}
func (TextValue) nativeValue()      {}
func (OptionalText) nativeValue()   {}

func (Int64Value) Kind() FieldKind     { return KindInt64 }
func (Int32Value) Kind() FieldKind     { return KindInt32 }
func (OptionalInt32) Kind() FieldKind  { return KindOptionalInt32 }
func (Decimal64Value) Kind() FieldKind { return KindDecimal64 }
func (TextValue) Kind() FieldKind      { return KindText }
func (OptionalText) Kind() FieldKind   { return KindOptionalText }

func (Int64Value) Absent() bool      { return false }
func (Int32Value) Absent() bool      { return false }
func (v OptionalInt32) Absent() bool { return !v.Valid }
func (Decimal64Value) Absent() bool  { return false }
func (TextValue) Absent() bool       { return false }
func (v OptionalText) Absent() bool  { return !v.Valid }

// SomeInt32 returns a present OptionalInt32.
func SomeInt32(v int32) OptionalInt32 { return OptionalInt32{Value: v, Valid: true} }

// SomeText returns a present OptionalText.
func SomeText(v string) OptionalText { return OptionalText{Value: v, Valid: true} }

// IntegerOf widens any present integer native value to int64.
func IntegerOf(v NativeValue) (int64, bool) {
	switch val := v.(type) {
	case Int64Value:
		return int64(val), true
	case Int32Value:
		return int64(val), true
	case OptionalInt32:
		return int64(val.Value), val.Valid
	}
	return 0, false
}

// DecimalOf returns the float64 of a Decimal64Value.
func DecimalOf(v NativeValue) (float64, bool) {
	if val, ok := v.(Decimal64Value); ok {
		return float64(val), true
	}
	return 0, false
}

// TextOf returns the string of any present text native value.
func TextOf(v NativeValue) (string, bool) {
	switch val := v.(type) {
	case TextValue:
		return string(val), true
	case OptionalText:
		return val.Value, val.Valid
	}
	return "", false
}

// ContentLength returns the character count (not byte count) of s.
func ContentLength(s string) int64 {
	return int64(utf8.RuneCountInString(s))
}
