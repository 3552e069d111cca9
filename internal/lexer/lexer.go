package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sieve/internal/ir"
)

// state tracks what the lexer expects next. A field is followed by an
// operator and an operator by a value, so the same characters can be
// classified differently depending on position.
type state int

const (
	stateClause state = iota
	stateOperator
	stateValue
)

// Lexer tokenizes filter queries.
type Lexer struct {
	input  []rune
	pos    int
	end    int // column just after the last emitted token
	state  state
	tokens []Token
}

// Tokenize converts a query into tokens. The returned slice always ends
// with a TokenEnd sentinel whose column sits immediately after the last
// real token (1 for blank input).
//
// Columns are 1-based rune offsets into input.
func Tokenize(input string) ([]Token, error) {
	l := &Lexer{input: []rune(input), end: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *Lexer) run() error {
	for {
		l.skipWhitespace()
		if l.eof() {
			l.tokens = append(l.tokens, NewToken(TokenEnd, "", l.end))
			return nil
		}

		var err error
		switch l.state {
		case stateOperator:
			err = l.lexOperator()
		case stateValue:
			err = l.lexValue()
		default:
			err = l.lexClause()
		}
		if err != nil {
			return err
		}
	}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() rune {
	return l.input[l.pos]
}

// column returns the 1-based column of the current position.
func (l *Lexer) column() int {
	return l.pos + 1
}

func (l *Lexer) skipWhitespace() {
	for !l.eof() && unicode.IsSpace(l.peek()) {
		l.pos++
	}
}

// emit appends a token that started at rune index start and ends at l.pos.
func (l *Lexer) emit(kind TokenKind, lexeme string, start int) {
	l.tokens = append(l.tokens, NewToken(kind, lexeme, start+1))
	l.end = l.pos + 1
}

// lexClause handles everything outside a condition: fields, connectives
// and parentheses. Stray operators and literals are still tokenized so the
// parser can report a missing field at the right column.
func (l *Lexer) lexClause() error {
	start := l.pos
	ch := l.peek()

	switch {
	case ch == '(':
		l.pos++
		l.emit(TokenOpenParen, "(", start)
	case ch == ')':
		l.pos++
		l.emit(TokenCloseParen, ")", start)
	case isIdentStart(ch):
		word := l.readIdent()
		switch strings.ToUpper(word) {
		case "AND":
			l.emit(TokenAnd, word, start)
		case "OR":
			l.emit(TokenOr, word, start)
		case "NOT":
			l.emit(TokenNot, word, start)
		default:
			l.emit(TokenField, word, start)
			l.state = stateOperator
		}
	case isSymbol(ch):
		if err := l.lexSymbolOperator(); err != nil {
			return err
		}
		l.state = stateValue
	case ch == '"':
		return l.lexString()
	case ch == '{':
		return l.lexList()
	case isNumberStart(ch):
		return l.lexNumber()
	default:
		return ir.NewColumnError(ir.ErrCodeParseFailed, l.column())
	}
	return nil
}

// lexOperator runs right after a field. If no operator follows, nothing is
// emitted and the parser reports the missing operator.
func (l *Lexer) lexOperator() error {
	start := l.pos
	ch := l.peek()

	switch {
	case isSymbol(ch):
		if err := l.lexSymbolOperator(); err != nil {
			return err
		}
	case isIdentStart(ch):
		word := l.readIdent()
		if _, ok := ir.ParseOperator(word); !ok {
			return &ir.Error{Code: ir.ErrCodeUnknownOperator, Operator: word, Column: start + 1}
		}
		l.emit(TokenOperator, word, start)
	default:
		l.state = stateClause
		return nil
	}

	l.state = stateValue
	return nil
}

func (l *Lexer) lexSymbolOperator() error {
	start := l.pos
	for !l.eof() && isSymbol(l.peek()) {
		l.pos++
	}
	text := string(l.input[start:l.pos])
	if _, ok := ir.ParseOperator(text); !ok {
		return &ir.Error{Code: ir.ErrCodeUnknownOperator, Operator: text, Column: start + 1}
	}
	l.emit(TokenOperator, text, start)
	return nil
}

// lexValue runs right after an operator.
func (l *Lexer) lexValue() error {
	ch := l.peek()
	l.state = stateClause

	switch {
	case ch == '"':
		return l.lexString()
	case ch == '{':
		return l.lexList()
	case isNumberStart(ch):
		return l.lexNumber()
	default:
		return ir.NewColumnError(ir.ErrCodeShouldOpenBraceOrQuote, l.column())
	}
}

// lexString reads a double-quoted string. The escapes are \", \\, \n, \r
// and \t; a backslash before any other character is kept as is.
func (l *Lexer) lexString() error {
	start := l.pos
	l.pos++ // opening quote

	var b strings.Builder
	for {
		if l.eof() || l.peek() == '\n' {
			return ir.NewColumnError(ir.ErrCodeMissingQuote, start+1)
		}
		ch := l.peek()
		if ch == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			if r, ok := stringEscapes[next]; ok {
				b.WriteRune(r)
				l.pos += 2
				continue
			}
		}
		l.pos++
		if ch == '"' {
			break
		}
		b.WriteRune(ch)
	}

	l.emit(TokenString, norm.NFC.String(b.String()), start)
	return nil
}

// lexNumber reads an integer or decimal literal. The maximal run of
// number-ish characters is consumed so that `12ab` fails as one lexeme.
func (l *Lexer) lexNumber() error {
	start := l.pos
	if l.peek() == '-' {
		l.pos++
	}
	for !l.eof() && isNumberRune(l.peek()) {
		l.pos++
	}
	lexeme := string(l.input[start:l.pos])
	body := strings.TrimPrefix(lexeme, "-")

	dots := strings.Count(body, ".")
	digitsOnly := body != "" && strings.Trim(body, "0123456789.") == ""

	switch {
	case digitsOnly && dots == 0:
		if _, err := strconv.ParseInt(lexeme, 10, 64); err != nil {
			return ir.NewColumnError(ir.ErrCodeIntegerParseFailed, start+1)
		}
		l.emit(TokenInteger, lexeme, start)
	case digitsOnly && dots == 1 && body != ".":
		if _, err := strconv.ParseFloat(lexeme, 64); err != nil {
			return ir.NewColumnError(ir.ErrCodeDecimalParseFailed, start+1)
		}
		l.emit(TokenDecimal, lexeme, start)
	case dots > 0:
		return ir.NewColumnError(ir.ErrCodeDecimalParseFailed, start+1)
	default:
		return ir.NewColumnError(ir.ErrCodeIntegerParseFailed, start+1)
	}
	return nil
}

// lexList reads `{` value (`,` value)* `}`, emitting brace, comma and
// literal tokens. Lists are flat.
func (l *Lexer) lexList() error {
	start := l.pos
	l.pos++
	l.emit(TokenOpenBrace, "{", start)

	l.skipWhitespace()
	if l.eof() {
		return ir.NewColumnError(ir.ErrCodeShouldCloseBraceHere, l.column())
	}
	if l.peek() == '}' {
		return l.closeList()
	}

	for {
		l.skipWhitespace()
		if err := l.lexListElement(); err != nil {
			return err
		}

		l.skipWhitespace()
		if l.eof() {
			return ir.NewColumnError(ir.ErrCodeShouldCloseBraceHere, l.column())
		}
		switch l.peek() {
		case ',':
			comma := l.pos
			l.pos++
			l.emit(TokenComma, ",", comma)
		case '}':
			return l.closeList()
		default:
			return ir.NewColumnError(ir.ErrCodeShouldCloseBraceHere, l.column())
		}
	}
}

func (l *Lexer) lexListElement() error {
	if l.eof() {
		return ir.NewColumnError(ir.ErrCodeShouldValueHere, l.column())
	}
	ch := l.peek()
	switch {
	case ch == '"':
		return l.lexString()
	case isNumberStart(ch):
		return l.lexNumber()
	default:
		return ir.NewColumnError(ir.ErrCodeShouldValueHere, l.column())
	}
}

func (l *Lexer) closeList() error {
	start := l.pos
	l.pos++
	l.emit(TokenCloseBrace, "}", start)
	return nil
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for !l.eof() && isIdentRune(l.peek()) {
		l.pos++
	}
	return string(l.input[start:l.pos])
}

// IsFieldName reports whether name lexes as a single field token: a
// letter or underscore followed by letters, digits or underscores, and not
// one of the connectives AND, OR, NOT in any case.
func IsFieldName(name string) bool {
	for i, ch := range name {
		if (i == 0 && !isIdentStart(ch)) || !isIdentRune(ch) {
			return false
		}
	}
	switch strings.ToUpper(name) {
	case "", "AND", "OR", "NOT":
		return false
	}
	return true
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func isSymbol(ch rune) bool {
	return strings.ContainsRune("<>=!~", ch)
}

var stringEscapes = map[rune]rune{
	'"':  '"',
	'\\': '\\',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

func isNumberStart(ch rune) bool {
	return ch == '-' || (ch >= '0' && ch <= '9')
}

func isNumberRune(ch rune) bool {
	return isIdentRune(ch) || ch == '.'
}
