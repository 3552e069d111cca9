// Package parser builds condition trees from token streams.
//
// Grammar:
//
//	expression := term ( ("AND"|"OR") term )*
//	term       := "NOT" term | "(" expression ")" | condition
//	condition  := FIELD operator value
//	value      := string | integer | decimal | "{" value ("," value)* "}"
//
// AND and OR have equal precedence and associate to the left; use
// parentheses to group differently. NOT binds the term that follows it.
//
// Each condition is bound against the registry while it is parsed: the
// field must exist and be enabled, and the operator must be in the field's
// operator set. Literal types are NOT checked here; coercion happens at
// evaluation time.
package parser

import (
	"strconv"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/lexer"
)

// DefaultMaxDepth bounds nesting of groups and NOT when Options.MaxDepth is zero.
const DefaultMaxDepth = 256

// Options tunes parsing.
type Options struct {
	// MaxDepth bounds nesting of parentheses and NOT. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Parse builds a condition tree from tokens produced by lexer.Tokenize.
func Parse(tokens []lexer.Token, reg ir.Registry) (ir.Condition, error) {
	return Options{}.Parse(tokens, reg)
}

// ParseString tokenizes and parses query.
func ParseString(query string, reg ir.Registry) (ir.Condition, error) {
	return Options{}.ParseString(query, reg)
}

// ParseString tokenizes and parses query with these options.
func (o Options) ParseString(query string, reg ir.Registry) (ir.Condition, error) {
	tokens, err := lexer.Tokenize(query)
	if err != nil {
		return nil, err
	}
	return o.Parse(tokens, reg)
}

// Parse builds a condition tree with these options.
func (o Options) Parse(tokens []lexer.Token, reg ir.Registry) (ir.Condition, error) {
	maxDepth := o.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{tokens: tokens, reg: reg, maxDepth: maxDepth}
	return p.parse()
}

// parser holds the cursor over one token stream.
type parser struct {
	tokens   []lexer.Token
	pos      int
	reg      ir.Registry
	depth    int
	maxDepth int
}

// current returns the token under the cursor. Running off the stream or
// meeting a token without a column means the token stream did not come
// from the lexer; both are internal defects.
func (p *parser) current() (lexer.Token, error) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, &ir.Error{Code: ir.ErrCodeMissingTokenData, Index: p.pos}
	}
	tok := p.tokens[p.pos]
	if tok.Column < 1 {
		return lexer.Token{}, &ir.Error{Code: ir.ErrCodeMissingTokenPosition, Index: p.pos}
	}
	return tok, nil
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) parse() (ir.Condition, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	tok, err := p.current()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case lexer.TokenEnd:
		return cond, nil
	case lexer.TokenCloseParen:
		return nil, ir.NewColumnError(ir.ErrCodeShouldOpenParenthesisHere, tok.Column)
	default:
		return nil, ir.NewColumnError(ir.ErrCodeShouldEndHere, tok.Column)
	}
}

// parseExpression handles AND/OR chains, folding to the left.
func (p *parser) parseExpression() (ir.Condition, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.current()
		if err != nil {
			return nil, err
		}
		if !tok.Kind.IsConnective() {
			return left, nil
		}
		p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.TokenAnd {
			left = ir.And{Left: left, Right: right}
		} else {
			left = ir.Or{Left: left, Right: right}
		}
	}
}

// parseTerm handles NOT, parenthesised groups and single conditions.
func (p *parser) parseTerm() (ir.Condition, error) {
	tok, err := p.current()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case lexer.TokenNot:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		p.advance()

		inner, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return ir.Not{Inner: inner}, nil

	case lexer.TokenOpenParen:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		p.advance()

		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		closing, err := p.current()
		if err != nil {
			return nil, err
		}
		if closing.Kind != lexer.TokenCloseParen {
			return nil, ir.NewColumnError(ir.ErrCodeShouldCloseParenthesisHere, closing.Column)
		}
		p.advance()
		return ir.Group{Inner: inner}, nil

	case lexer.TokenField:
		return p.parseCondition()

	case lexer.TokenEnd, lexer.TokenAnd, lexer.TokenOr, lexer.TokenCloseParen:
		return nil, ir.NewColumnError(ir.ErrCodeMissingCondition, tok.Column)

	default:
		return nil, ir.NewColumnError(ir.ErrCodeMissingField, tok.Column)
	}
}

func (p *parser) enter(tok lexer.Token) error {
	if p.depth >= p.maxDepth {
		return ir.NewColumnError(ir.ErrCodeNestingTooDeep, tok.Column)
	}
	p.depth++
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// parseCondition binds FIELD operator value against the registry.
func (p *parser) parseCondition() (ir.Condition, error) {
	fieldTok, err := p.current()
	if err != nil {
		return nil, err
	}
	p.advance()

	desc, ok := p.reg.Lookup(fieldTok.Lexeme)
	if !ok {
		return nil, &ir.Error{Code: ir.ErrCodeUnknownField, Field: fieldTok.Lexeme, Column: fieldTok.Column}
	}
	if !desc.Enabled {
		return nil, &ir.Error{Code: ir.ErrCodeFieldNotEnabled, Field: desc.Name, Column: fieldTok.Column}
	}

	opTok, err := p.current()
	if err != nil {
		return nil, err
	}
	switch opTok.Kind {
	case lexer.TokenOperator:
	case lexer.TokenEnd:
		return nil, &ir.Error{Code: ir.ErrCodeFieldRequiresOperator, Field: desc.Name, Column: opTok.Column}
	default:
		return nil, ir.NewColumnError(ir.ErrCodeMissingOperator, opTok.Column)
	}
	op, ok := ir.ParseOperator(opTok.Lexeme)
	if !ok {
		return nil, &ir.Error{Code: ir.ErrCodeUnknownOperator, Operator: opTok.Lexeme, Column: opTok.Column}
	}
	p.advance()

	if !desc.Supports(op) {
		e := ir.NewUnsupportedOperatorError(desc.Name, op)
		e.Column = opTok.Column
		return nil, e
	}

	lit, err := p.parseValue(desc)
	if err != nil {
		return nil, err
	}

	return ir.Leaf{Field: desc, Operator: op, Literal: lit, Column: fieldTok.Column}, nil
}

func (p *parser) parseValue(desc ir.FieldDescriptor) (ir.Literal, error) {
	tok, err := p.current()
	if err != nil {
		return nil, err
	}

	switch {
	case tok.Kind.IsLiteral():
		p.advance()
		return literalOf(tok)
	case tok.Kind == lexer.TokenOpenBrace:
		return p.parseList()
	case tok.Kind == lexer.TokenEnd:
		return nil, &ir.Error{Code: ir.ErrCodeFieldRequiresValue, Field: desc.Name, Column: tok.Column}
	default:
		return nil, ir.NewColumnError(ir.ErrCodeMissingValue, tok.Column)
	}
}

// parseList reads `{` value ("," value)* `}`. `{}` is an empty list.
func (p *parser) parseList() (ir.Literal, error) {
	p.advance() // {

	list := ir.List{}
	tok, err := p.current()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lexer.TokenCloseBrace {
		p.advance()
		return list, nil
	}

	for {
		tok, err := p.current()
		if err != nil {
			return nil, err
		}
		if !tok.Kind.IsLiteral() {
			return nil, ir.NewColumnError(ir.ErrCodeShouldValueHere, tok.Column)
		}
		lit, err := literalOf(tok)
		if err != nil {
			return nil, err
		}
		list = append(list, lit)
		p.advance()

		sep, err := p.current()
		if err != nil {
			return nil, err
		}
		switch sep.Kind {
		case lexer.TokenComma:
			p.advance()
		case lexer.TokenCloseBrace:
			p.advance()
			return list, nil
		default:
			return nil, ir.NewColumnError(ir.ErrCodeShouldCloseBraceHere, sep.Column)
		}
	}
}

// literalOf converts a literal token into a Literal. The lexer already
// validated number syntax; the checks here cover hand-built token streams.
func literalOf(tok lexer.Token) (ir.Literal, error) {
	switch tok.Kind {
	case lexer.TokenInteger:
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, ir.NewColumnError(ir.ErrCodeIntegerParseFailed, tok.Column)
		}
		return ir.Integer(n), nil
	case lexer.TokenDecimal:
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, ir.NewColumnError(ir.ErrCodeDecimalParseFailed, tok.Column)
		}
		return ir.Decimal(f), nil
	default:
		return ir.Text(tok.Lexeme), nil
	}
}
