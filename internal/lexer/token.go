package lexer

import "fmt"

// TokenKind represents the kind of a lexical token.
type TokenKind int

const (
	TokenEnd TokenKind = iota
	TokenField
	TokenOperator
	TokenInteger
	TokenDecimal
	TokenString
	TokenOpenParen
	TokenCloseParen
	TokenOpenBrace
	TokenCloseBrace
	TokenComma
	TokenAnd
	TokenOr
	TokenNot
)

var kindNames = [...]string{
	TokenEnd:        "End",
	TokenField:      "Field",
	TokenOperator:   "Operator",
	TokenInteger:    "Integer",
	TokenDecimal:    "Decimal",
	TokenString:     "String",
	TokenOpenParen:  "OpenParen",
	TokenCloseParen: "CloseParen",
	TokenOpenBrace:  "OpenBrace",
	TokenCloseBrace: "CloseBrace",
	TokenComma:      "Comma",
	TokenAnd:        "And",
	TokenOr:         "Or",
	TokenNot:        "Not",
}

func (k TokenKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsLiteral reports whether the kind is an integer, decimal or string literal.
func (k TokenKind) IsLiteral() bool {
	return k == TokenInteger || k == TokenDecimal || k == TokenString
}

// IsConnective reports whether the kind is AND or OR.
func (k TokenKind) IsConnective() bool {
	return k == TokenAnd || k == TokenOr
}

// Token is a lexeme with its kind and 1-based column.
//
// For string literals Lexeme holds the unescaped, NFC-normalized contents
// without the surrounding quotes.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Column int
}

// NewToken creates a token. The column is mandatory.
func NewToken(kind TokenKind, lexeme string, column int) Token {
	return Token{Kind: kind, Lexeme: lexeme, Column: column}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Lexeme, t.Column)
}
