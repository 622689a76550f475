package coercer

import (
	"math"
	"testing"

	"edabench/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumericFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"(120)", -120, true},
		{"$1,234.50", 1234.5, true},
		{"1.234,56", 1234.56, true},
		{"2,5", 2.5, true},
		{"15%", 15, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseNumeric(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseBooleanLeavesDigitsToNumeric(t *testing.T) {
	v, ok := ParseBoolean("Yes")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = ParseBoolean("1")
	assert.False(t, ok)
}

func TestInferKinds(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name string
		raw  []string
		want dataset.Kind
	}{
		{"numeric", []string{"1", "2", "NA", "4.5"}, dataset.KindNumeric},
		{"binary digits stay numeric", []string{"0", "1", "1", "0"}, dataset.KindNumeric},
		{"boolean", []string{"yes", "no", "Yes", ""}, dataset.KindBoolean},
		{"temporal", []string{"2024-01-02", "2024-02-03", "2024/03/04"}, dataset.KindTemporal},
		{"categorical", []string{"north", "south", "3"}, dataset.KindCategorical},
		{"all missing", []string{"", "null"}, dataset.KindCategorical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, analysis := c.Column("c", tt.raw)
			assert.Equal(t, tt.want, analysis.RecommendedKind)
			assert.Equal(t, tt.want, col.Kind())
			assert.Equal(t, len(tt.raw), col.Len())
		})
	}
}

func TestUnparsedCellsBecomeMissing(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	raw := []string{"1", "2", "3", "4", "oops"}

	col, analysis := c.Column("x", raw)
	require.Equal(t, dataset.KindNumeric, col.Kind())
	assert.Equal(t, 1, analysis.Unparsed)
	assert.True(t, math.IsNaN(col.Float(4)))
	assert.Equal(t, 1, col.MissingCount())
}

func TestCategoricalNormalization(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	col, _ := c.Column("city", []string{"  New   York ", "Lisbon", "N/A"})
	assert.Equal(t, "New York", col.String(0))
	assert.True(t, col.IsMissing(2))
}
