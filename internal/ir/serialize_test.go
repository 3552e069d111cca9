package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSerializer_Marshal(t *testing.T) {
	s := JSONSerializer{}

	tests := []struct {
		lit  Literal
		want string
	}{
		{Integer(42), "42"},
		{Decimal(2), "2.0"},
		{Decimal(0.25), "0.25"},
		{Text(`say "hi"`), `"say \"hi\""`},
		{List{Integer(1), Decimal(1.5), Text("a")}, `[1,1.5,"a"]`},
		{List{}, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := s.MarshalLiteral(tt.lit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestJSONSerializer_Unmarshal(t *testing.T) {
	s := JSONSerializer{}

	tests := []struct {
		input string
		want  Literal
	}{
		{"42", Integer(42)},
		{"-3", Integer(-3)},
		{"2.0", Decimal(2)},
		{"1e3", Decimal(1000)},
		{`"abc"`, Text("abc")},
		{`[1, "x"]`, List{Integer(1), Text("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := s.UnmarshalLiteral([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONSerializer_FailuresArePassthrough(t *testing.T) {
	s := JSONSerializer{}

	for _, input := range []string{`{"a":1}`, "null", "true", "[[1]]", "[1,"} {
		t.Run(input, func(t *testing.T) {
			_, err := s.UnmarshalLiteral([]byte(input))
			require.Error(t, err)
			assert.Equal(t, ErrCodeSerialization, CodeOf(err))

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.NotNil(t, e.Unwrap(), "backend error is kept")
		})
	}

	_, err := s.MarshalLiteral(Decimal(math.Inf(1)))
	assert.Equal(t, ErrCodeSerialization, CodeOf(err))

	_, err = s.MarshalLiteral(List{List{Integer(1)}})
	assert.Equal(t, ErrCodeSerialization, CodeOf(err))
}
