package dataset

import (
	"math"
	"testing"

	"edabench/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	for sym, want := range map[string]Operator{"==": OpEq, "!=": OpNe, ">": OpGt, ">=": OpGe, "<": OpLt, "<=": OpLe} {
		got, err := ParseOperator(sym)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, sym, got.String())
	}

	_, err := ParseOperator("=>")
	assert.ErrorIs(t, err, core.ErrUnknownOperator)
}

func TestCoerceValue(t *testing.T) {
	v, err := CoerceValue(KindNumeric, " 70 ")
	require.NoError(t, err)
	assert.Equal(t, 70.0, v.Num)

	_, err = CoerceValue(KindNumeric, "seventy")
	assert.ErrorIs(t, err, core.ErrCoercion)

	v, err = CoerceValue(KindBoolean, "TRUE")
	require.NoError(t, err)
	assert.True(t, v.Bool)

	_, err = CoerceValue(KindBoolean, "maybe")
	assert.ErrorIs(t, err, core.ErrCoercion)

	v, err = CoerceValue(KindTemporal, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, v.Time.Year())

	v, err = CoerceValue(KindCategorical, "Porto")
	require.NoError(t, err)
	assert.Equal(t, "Porto", v.Str)
}

func TestMaskMissingSemantics(t *testing.T) {
	c := NewNumeric("score", []float64{60, 70, math.NaN(), 80})

	ge, err := c.Mask(OpGe, "70")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, true}, ge)

	ne, err := c.Mask(OpNe, "70")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, true}, ne, "missing cells satisfy !=")

	_, err = c.Mask(OpEq, "abc")
	assert.ErrorIs(t, err, core.ErrCoercion)
}

func TestMaskCategoricalAndBoolean(t *testing.T) {
	c := NewCategorical("city", []string{"Lisbon", "Porto", ""}, []bool{true, true, false})
	m, err := c.Mask(OpEq, "Porto")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, m)

	b := NewBoolean("flag", []bool{true, false}, nil)
	m, err = b.Mask(OpEq, "true")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, m)
}

func TestOperatorTextRoundTrip(t *testing.T) {
	var op Operator
	require.NoError(t, op.UnmarshalText([]byte("<=")))
	assert.Equal(t, OpLe, op)
	assert.Error(t, op.UnmarshalText([]byte("~")))
}
