package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOperator(t *testing.T) {
	for _, op := range AllOperators() {
		t.Run(op.String(), func(t *testing.T) {
			got, ok := ParseOperator(op.String())
			assert.True(t, ok)
			assert.Equal(t, op, got)
		})
	}

	got, ok := ParseOperator("CONTAINS")
	assert.True(t, ok, "word operators are case-insensitive")
	assert.Equal(t, OpContains, got)

	_, ok = ParseOperator("=>")
	assert.False(t, ok)
}

func TestParseFieldKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, ok := ParseFieldKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}

	_, ok := ParseFieldKind("float32")
	assert.False(t, ok)
}

func TestFieldKind_Predicates(t *testing.T) {
	assert.True(t, KindText.IsText())
	assert.True(t, KindOptionalText.IsText())
	assert.False(t, KindInt64.IsText())

	assert.True(t, KindOptionalInt32.IsOptional())
	assert.True(t, KindOptionalText.IsOptional())
	assert.False(t, KindInt32.IsOptional())
}

func TestFieldDescriptor_ModeFor(t *testing.T) {
	desc := FieldDescriptor{
		Name:            "title",
		Kind:            KindText,
		Operators:       NewOperatorSet(OpEq, OpLe),
		LengthOperators: NewOperatorSet(OpLe),
		Enabled:         true,
	}

	assert.Equal(t, ModeContentLength, desc.ModeFor(OpLe))
	assert.Equal(t, ModeValue, desc.ModeFor(OpEq))
	assert.True(t, desc.Supports(OpEq))
	assert.False(t, desc.Supports(OpMatch))
}

func TestOperatorSet_Sorted(t *testing.T) {
	s := NewOperatorSet(OpContains, OpEq, OpLe)
	assert.Equal(t, []Operator{OpEq, OpLe, OpContains}, s.Sorted())
	assert.True(t, OpLe.IsRelational())
	assert.False(t, OpIn.IsRelational())
}
