package ir

import (
	"errors"
	"fmt"
)

// Error is the error type produced by every stage of sieve: lexing,
// parsing, binding, coercion and evaluation.
//
// Which fields are populated depends on Code:
//   - Column-anchored codes (lexical and syntax) set Column
//   - Identifier-anchored codes (binding) set Field and/or Operator
//   - Coercion codes set Value (the literal's rendering) and sometimes Field
//   - Internal codes set Index
//   - SERIALIZATION wraps the backend error in Err
type Error struct {
	// Code identifies the error.
	Code ErrorCode

	// Column is the 1-based rune offset the error is anchored at.
	Column int

	// Field is the offending field name (raw identifier for UNKNOWN_FIELD).
	Field string

	// Operator is the offending operator text.
	Operator string

	// Value is the rendering of the offending literal or native value.
	Value string

	// Expected names the expected kind for FIELD_KIND_MISMATCH.
	Expected string

	// Index is the token index for internal defects.
	Index int

	// Err is the wrapped cause, if any.
	Err error
}

// ErrorCode identifies an error.
type ErrorCode string

const (
	// Syntax errors (column-anchored).
	ErrCodeShouldEndHere              ErrorCode = "SHOULD_END_HERE"
	ErrCodeShouldOpenParenthesisHere  ErrorCode = "SHOULD_OPEN_PARENTHESIS_HERE"
	ErrCodeShouldCloseParenthesisHere ErrorCode = "SHOULD_CLOSE_PARENTHESIS_HERE"
	ErrCodeMissingField               ErrorCode = "MISSING_FIELD"
	ErrCodeMissingOperator            ErrorCode = "MISSING_OPERATOR"
	ErrCodeMissingValue               ErrorCode = "MISSING_VALUE"
	ErrCodeMissingCondition           ErrorCode = "MISSING_CONDITION"
	ErrCodeNestingTooDeep             ErrorCode = "NESTING_TOO_DEEP"

	// Lexical errors (column-anchored, except UNKNOWN_OPERATOR which also names the text).
	ErrCodeUnknownOperator        ErrorCode = "UNKNOWN_OPERATOR"
	ErrCodeMissingQuote           ErrorCode = "MISSING_QUOTE"
	ErrCodeShouldCloseBraceHere   ErrorCode = "SHOULD_CLOSE_BRACE_HERE"
	ErrCodeShouldValueHere        ErrorCode = "SHOULD_VALUE_HERE"
	ErrCodeShouldOpenBraceOrQuote ErrorCode = "SHOULD_OPEN_BRACE_OR_QUOTE"
	ErrCodeIntegerParseFailed     ErrorCode = "INTEGER_PARSE_FAILED"
	ErrCodeDecimalParseFailed     ErrorCode = "DECIMAL_PARSE_FAILED"
	ErrCodeParseFailed            ErrorCode = "PARSE_FAILED"

	// Binding errors (identifier-anchored).
	ErrCodeUnknownField          ErrorCode = "UNKNOWN_FIELD"
	ErrCodeFieldNotEnabled       ErrorCode = "FIELD_NOT_ENABLED"
	ErrCodeUnsupportedOperator   ErrorCode = "UNSUPPORTED_OPERATOR"
	ErrCodeFieldRequiresOperator ErrorCode = "FIELD_REQUIRES_OPERATOR"
	ErrCodeFieldRequiresValue    ErrorCode = "FIELD_REQUIRES_VALUE"

	// Coercion errors (value-anchored).
	ErrCodeNotAnInteger ErrorCode = "NOT_AN_INTEGER"
	ErrCodeNotADecimal  ErrorCode = "NOT_A_DECIMAL"
	ErrCodeNotAString   ErrorCode = "NOT_A_STRING"
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// Evaluation-data errors.
	ErrCodeRefValueInEmptyList ErrorCode = "REF_VALUE_IN_EMPTY_LIST"
	ErrCodeFieldKindMismatch   ErrorCode = "FIELD_KIND_MISMATCH"
	ErrCodeMissingRecordField  ErrorCode = "MISSING_RECORD_FIELD"

	// Internal defects. Never produced by correctly functioning lexer/parser code.
	ErrCodeMissingTokenPosition ErrorCode = "MISSING_TOKEN_POSITION"
	ErrCodeMissingTokenData     ErrorCode = "MISSING_TOKEN_DATA"

	// Passthrough from a literal serializer backend.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"
)

// Category groups error codes by the stage that produces them.
type Category string

const (
	CategoryLexical       Category = "lexical"
	CategorySyntax        Category = "syntax"
	CategoryBinding       Category = "binding"
	CategoryCoercion      Category = "coercion"
	CategoryData          Category = "data"
	CategoryInternal      Category = "internal"
	CategorySerialization Category = "serialization"
)

// Severity separates bad user input from engine defects.
type Severity int

const (
	// SeverityUser means the query or the data is at fault.
	SeverityUser Severity = iota
	// SeverityInternal means sieve itself is at fault.
	SeverityInternal
)

func (s Severity) String() string {
	if s == SeverityInternal {
		return "internal defect"
	}
	return "user error"
}

// Category returns the category of the code.
func (c ErrorCode) Category() Category {
	switch c {
	case ErrCodeShouldEndHere, ErrCodeShouldOpenParenthesisHere, ErrCodeShouldCloseParenthesisHere,
		ErrCodeMissingField, ErrCodeMissingOperator, ErrCodeMissingValue,
		ErrCodeMissingCondition, ErrCodeNestingTooDeep:
		return CategorySyntax
	case ErrCodeUnknownOperator, ErrCodeMissingQuote, ErrCodeShouldCloseBraceHere,
		ErrCodeShouldValueHere, ErrCodeShouldOpenBraceOrQuote, ErrCodeIntegerParseFailed,
		ErrCodeDecimalParseFailed, ErrCodeParseFailed:
		return CategoryLexical
	case ErrCodeUnknownField, ErrCodeFieldNotEnabled, ErrCodeUnsupportedOperator,
		ErrCodeFieldRequiresOperator, ErrCodeFieldRequiresValue:
		return CategoryBinding
	case ErrCodeNotAnInteger, ErrCodeNotADecimal, ErrCodeNotAString, ErrCodeInvalidValue:
		return CategoryCoercion
	case ErrCodeRefValueInEmptyList, ErrCodeFieldKindMismatch, ErrCodeMissingRecordField:
		return CategoryData
	case ErrCodeSerialization:
		return CategorySerialization
	default:
		return CategoryInternal
	}
}

// Severity returns SeverityInternal for engine defects.
func (e *Error) Severity() Severity {
	if e.Code.Category() == CategoryInternal {
		return SeverityInternal
	}
	return SeverityUser
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeShouldEndHere:
		return fmt.Sprintf("it should end here (--> %d)", e.Column)
	case ErrCodeShouldOpenParenthesisHere:
		return fmt.Sprintf("it should be `(` (--> %d)", e.Column)
	case ErrCodeShouldCloseParenthesisHere:
		return fmt.Sprintf("it should be `)` (--> %d)", e.Column)
	case ErrCodeMissingField:
		return fmt.Sprintf("missing field from column %d", e.Column)
	case ErrCodeMissingOperator:
		return fmt.Sprintf("missing operator from column %d", e.Column)
	case ErrCodeMissingValue:
		return fmt.Sprintf("missing value from column %d", e.Column)
	case ErrCodeMissingCondition:
		return fmt.Sprintf("missing condition from column %d", e.Column)
	case ErrCodeNestingTooDeep:
		return fmt.Sprintf("groups nested too deeply at column %d", e.Column)
	case ErrCodeUnknownOperator:
		return fmt.Sprintf("unknown `%s` operator", e.Operator)
	case ErrCodeMissingQuote:
		return fmt.Sprintf("missing quote from column %d", e.Column)
	case ErrCodeShouldCloseBraceHere:
		return fmt.Sprintf("should be `}` from column: %d", e.Column)
	case ErrCodeShouldValueHere:
		return fmt.Sprintf("should be values from column: %d", e.Column)
	case ErrCodeShouldOpenBraceOrQuote:
		return fmt.Sprintf("should be `{` or `\"` from column: %d", e.Column)
	case ErrCodeIntegerParseFailed:
		return fmt.Sprintf("error in conversion of integer numbers starting in column %d", e.Column)
	case ErrCodeDecimalParseFailed:
		return fmt.Sprintf("error in conversion of decimal numbers starting in column %d", e.Column)
	case ErrCodeParseFailed:
		return fmt.Sprintf("failed to parse from column %d", e.Column)
	case ErrCodeUnknownField:
		return fmt.Sprintf("unknown `%s` field", e.Field)
	case ErrCodeFieldNotEnabled:
		return fmt.Sprintf("the field `%s` is not officially enabled", e.Field)
	case ErrCodeUnsupportedOperator:
		return fmt.Sprintf("the field `%s` does not support the `%s` operator", e.Field, e.Operator)
	case ErrCodeFieldRequiresOperator:
		return fmt.Sprintf("field `%s` requires operator", e.Field)
	case ErrCodeFieldRequiresValue:
		return fmt.Sprintf("field `%s` requires value", e.Field)
	case ErrCodeNotAnInteger:
		return fmt.Sprintf("the value `%s` is not an integer number", e.Value)
	case ErrCodeNotADecimal:
		return fmt.Sprintf("the value `%s` is not a decimal number", e.Value)
	case ErrCodeNotAString:
		return fmt.Sprintf("the value `%s` is not a string", e.Value)
	case ErrCodeInvalidValue:
		return fmt.Sprintf("the value `%s` of the field `%s` is invalid", e.Value, e.Field)
	case ErrCodeRefValueInEmptyList:
		return "cannot reference value in empty list"
	case ErrCodeFieldKindMismatch:
		return fmt.Sprintf("the field `%s` holds a %s value, expected %s", e.Field, e.Value, e.Expected)
	case ErrCodeMissingRecordField:
		return fmt.Sprintf("the record has no value for the field `%s`", e.Field)
	case ErrCodeMissingTokenPosition:
		return fmt.Sprintf("there may be a bug: token %d is missing position information", e.Index)
	case ErrCodeMissingTokenData:
		return fmt.Sprintf("there may be a bug: the %dth token data is missing", e.Index)
	case ErrCodeSerialization:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "serialization failed"
	default:
		return fmt.Sprintf("%s (column %d)", e.Code, e.Column)
	}
}

// Unwrap returns the wrapped cause, supporting errors.Is and errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCategory reports whether err is an *Error of the given category.
// Uses errors.As to handle wrapped errors.
func IsCategory(err error, c Category) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.Category() == c
	}
	return false
}

// IsInternal reports whether err signals an engine defect rather than bad input.
func IsInternal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Severity() == SeverityInternal
	}
	return false
}

// NewColumnError creates a column-anchored error.
func NewColumnError(code ErrorCode, column int) *Error {
	return &Error{Code: code, Column: column}
}

// NewFieldError creates a field-anchored error.
func NewFieldError(code ErrorCode, field string) *Error {
	return &Error{Code: code, Field: field}
}

// NewUnsupportedOperatorError names both the field and the operator.
func NewUnsupportedOperatorError(field string, op Operator) *Error {
	return &Error{Code: ErrCodeUnsupportedOperator, Field: field, Operator: op.String()}
}

// NewSerializationError wraps a serializer backend failure without rewording it.
func NewSerializationError(err error) *Error {
	return &Error{Code: ErrCodeSerialization, Err: err}
}
