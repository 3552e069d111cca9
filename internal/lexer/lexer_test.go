package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenKind
	}{
		{"age <= 30", []TokenKind{TokenField, TokenOperator, TokenInteger, TokenEnd}},
		{`name = "bob"`, []TokenKind{TokenField, TokenOperator, TokenString, TokenEnd}},
		{"price > 9.5", []TokenKind{TokenField, TokenOperator, TokenDecimal, TokenEnd}},
		{"a = 1 AND b = 2", []TokenKind{TokenField, TokenOperator, TokenInteger, TokenAnd, TokenField, TokenOperator, TokenInteger, TokenEnd}},
		{"a = 1 or b = 2", []TokenKind{TokenField, TokenOperator, TokenInteger, TokenOr, TokenField, TokenOperator, TokenInteger, TokenEnd}},
		{"NOT (a = 1)", []TokenKind{TokenNot, TokenOpenParen, TokenField, TokenOperator, TokenInteger, TokenCloseParen, TokenEnd}},
		{`tag in {"x", "y"}`, []TokenKind{TokenField, TokenOperator, TokenOpenBrace, TokenString, TokenComma, TokenString, TokenCloseBrace, TokenEnd}},
		{"n in {}", []TokenKind{TokenField, TokenOperator, TokenOpenBrace, TokenCloseBrace, TokenEnd}},
		{`title contains "go"`, []TokenKind{TokenField, TokenOperator, TokenString, TokenEnd}},
		{"", []TokenKind{TokenEnd}},
		{"   ", []TokenKind{TokenEnd}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(tokens))
		})
	}
}

func TestTokenize_Columns(t *testing.T) {
	tokens, err := Tokenize("(field = 1")
	require.NoError(t, err)

	want := []Token{
		NewToken(TokenOpenParen, "(", 1),
		NewToken(TokenField, "field", 2),
		NewToken(TokenOperator, "=", 8),
		NewToken(TokenInteger, "1", 10),
		NewToken(TokenEnd, "", 11),
	}
	assert.Equal(t, want, tokens)
}

func TestTokenize_EndSitsAfterLastToken(t *testing.T) {
	tokens, err := Tokenize("a = 1    ")
	require.NoError(t, err)

	end := tokens[len(tokens)-1]
	assert.Equal(t, TokenEnd, end.Kind)
	assert.Equal(t, 6, end.Column)

	tokens, err = Tokenize("")
	require.NoError(t, err)
	assert.Equal(t, 1, tokens[0].Column)
}

func TestTokenize_ColumnsCountRunes(t *testing.T) {
	tokens, err := Tokenize(`名前 = "日本" AND n = 1`)
	require.NoError(t, err)

	assert.Equal(t, 1, tokens[0].Column)  // 名前
	assert.Equal(t, 4, tokens[1].Column)  // =
	assert.Equal(t, 6, tokens[2].Column)  // "日本"
	assert.Equal(t, 11, tokens[3].Column) // AND
	assert.Equal(t, "日本", tokens[2].Lexeme)
}

func TestTokenize_EveryTokenHasColumn(t *testing.T) {
	inputs := []string{
		`a = 1 AND (b != "x" OR NOT c in {1, 2, 3})`,
		`title <= 5 AND score >= -2.5`,
		"  x ~ \"^a.*\"  ",
	}
	for _, input := range inputs {
		tokens, err := Tokenize(input)
		require.NoError(t, err)
		for i, tok := range tokens {
			assert.GreaterOrEqual(t, tok.Column, 1, "token %d of %q", i, input)
		}
	}
}

func TestTokenize_Literals(t *testing.T) {
	tokens, err := Tokenize(`s = "a \"quoted\" \\ word"`)
	require.NoError(t, err)
	assert.Equal(t, `a "quoted" \ word`, tokens[2].Lexeme)

	tokens, err = Tokenize("n >= -42")
	require.NoError(t, err)
	assert.Equal(t, NewToken(TokenInteger, "-42", 6), tokens[2])

	tokens, err = Tokenize("d < 0.125")
	require.NoError(t, err)
	assert.Equal(t, NewToken(TokenDecimal, "0.125", 5), tokens[2])
}

func TestTokenize_StringEscapes(t *testing.T) {
	tokens, err := Tokenize(`s = "a\nb\rc\td"`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\rc\td", tokens[2].Lexeme)

	// unknown escapes keep the backslash for regex patterns
	tokens, err = Tokenize(`s ~ "\d+\.x"`)
	require.NoError(t, err)
	assert.Equal(t, `\d+\.x`, tokens[2].Lexeme)
}

func TestTokenize_NormalizesStrings(t *testing.T) {
	// "e" + combining acute accent composes to a single "é".
	tokens, err := Tokenize("s = \"cafe\u0301\"")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", tokens[2].Lexeme)
}

func TestTokenize_Operators(t *testing.T) {
	for _, op := range ir.AllOperators() {
		t.Run(op.String(), func(t *testing.T) {
			tokens, err := Tokenize("f " + op.String() + " 1")
			require.NoError(t, err)
			assert.Equal(t, TokenOperator, tokens[1].Kind)
			assert.Equal(t, op.String(), tokens[1].Lexeme)
		})
	}

	tokens, err := Tokenize("f<=1")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokenField, TokenOperator, TokenInteger, TokenEnd}, kinds(tokens))
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantCode   ir.ErrorCode
		wantColumn int
	}{
		{"missing quote at end", `a = "abc`, ir.ErrCodeMissingQuote, 5},
		{"missing quote before newline", "a = \"abc\n\"", ir.ErrCodeMissingQuote, 5},
		{"bare word value", "a = abc", ir.ErrCodeShouldOpenBraceOrQuote, 5},
		{"paren as value", "a = (1)", ir.ErrCodeShouldOpenBraceOrQuote, 5},
		{"missing close brace", "a in {1, 2", ir.ErrCodeShouldCloseBraceHere, 11},
		{"junk in list", "a in {1 2}", ir.ErrCodeShouldCloseBraceHere, 9},
		{"open brace only", "a in {", ir.ErrCodeShouldCloseBraceHere, 7},
		{"trailing comma", "a in {1,}", ir.ErrCodeShouldValueHere, 9},
		{"nested list", "a in {{1}}", ir.ErrCodeShouldValueHere, 7},
		{"integer overflow", "a = 99999999999999999999", ir.ErrCodeIntegerParseFailed, 5},
		{"letters in integer", "a = 12ab", ir.ErrCodeIntegerParseFailed, 5},
		{"two dots", "a = 1.2.3", ir.ErrCodeDecimalParseFailed, 5},
		{"lone minus", "a = -", ir.ErrCodeIntegerParseFailed, 5},
		{"unexpected character", "a = 1 AND @", ir.ErrCodeParseFailed, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)

			var e *ir.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.wantColumn, e.Column)
			assert.False(t, ir.IsInternal(err))
		})
	}
}

func TestTokenize_UnknownOperator(t *testing.T) {
	for _, input := range []string{"a => 1", "a like 1", "a <> 1"} {
		t.Run(input, func(t *testing.T) {
			_, err := Tokenize(input)
			require.Error(t, err)

			var e *ir.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, ir.ErrCodeUnknownOperator, e.Code)
			assert.Equal(t, 3, e.Column)
			assert.NotEmpty(t, e.Operator)
		})
	}
}

func TestTokenize_MissingPiecesLeftToParser(t *testing.T) {
	// A field with nothing after it, or an operator with nothing after it,
	// tokenizes fine; the parser decides what is missing.
	tokens, err := Tokenize("a")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokenField, TokenEnd}, kinds(tokens))

	tokens, err = Tokenize("a =")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokenField, TokenOperator, TokenEnd}, kinds(tokens))

	tokens, err = Tokenize("a (")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokenField, TokenOpenParen, TokenEnd}, kinds(tokens))
}

func TestIsFieldName(t *testing.T) {
	for _, name := range []string{"age", "_id", "field_2", "Prix", "caf\u00e9", "android", "order"} {
		assert.True(t, IsFieldName(name), name)

		tokens, err := Tokenize(name + " = 1")
		require.NoError(t, err)
		assert.Equal(t, NewToken(TokenField, name, 1), tokens[0], name)
	}

	for _, name := range []string{"", "my-field", "1st", "a b", "and", "OR", "Not", "x.y"} {
		assert.False(t, IsFieldName(name), name)
	}
}
