package dataset

import (
	"math"
	"testing"
	"time"

	"edabench/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New("sample",
		NewNumeric("age", []float64{20, 25, math.NaN(), 40}),
		NewCategorical("city", []string{"Lisbon", "Porto", "", "Lisbon"}, []bool{true, true, false, true}),
		NewBoolean("member", []bool{true, false, true, false}, nil),
		NewTemporal("joined", []time.Time{
			time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
			{},
			time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC),
		}, []bool{true, true, false, true}),
	)
	require.NoError(t, err)
	return ds
}

func TestCreateColumnRejectsCollision(t *testing.T) {
	ds := sample(t)
	before := ds.Names()

	err := ds.CreateColumn(NewNumeric("age", []float64{1, 2, 3, 4}))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNameCollision)
	assert.Equal(t, before, ds.Names())
}

func TestCreateColumnsIsAtomic(t *testing.T) {
	ds := sample(t)
	before := ds.Names()

	err := ds.CreateColumns(
		NewNumeric("new_a", []float64{1, 2, 3, 4}),
		NewNumeric("city", []float64{1, 2, 3, 4}),
	)
	assert.ErrorIs(t, err, core.ErrNameCollision)
	assert.Equal(t, before, ds.Names())
	assert.False(t, ds.ColumnExists("new_a"))

	err = ds.CreateColumns(
		NewNumeric("dup", []float64{1, 2, 3, 4}),
		NewNumeric("dup", []float64{1, 2, 3, 4}),
	)
	assert.ErrorIs(t, err, core.ErrNameCollision)
	assert.False(t, ds.ColumnExists("dup"))
}

func TestCreateColumnRejectsLengthMismatch(t *testing.T) {
	ds := sample(t)
	err := ds.CreateColumn(NewNumeric("short", []float64{1, 2}))
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestRemoveColumns(t *testing.T) {
	ds := sample(t)

	err := ds.RemoveColumns("age", "missing")
	assert.True(t, core.IsNotFoundError(err))
	assert.True(t, ds.ColumnExists("age"), "failed removal must not drop anything")

	require.NoError(t, ds.RemoveColumns("age", "member"))
	assert.Equal(t, []string{"city", "joined"}, ds.Names())
}

func TestTypedViewsRecomputed(t *testing.T) {
	ds := sample(t)
	v := ds.TypedViews()
	assert.Equal(t, []string{"age"}, v.Numeric)
	assert.Equal(t, []string{"city", "member"}, v.Categorical)
	assert.Equal(t, []string{"joined"}, v.Temporal)

	require.NoError(t, ds.CreateColumn(NewNumeric("score", []float64{1, 2, 3, 4})))
	assert.Equal(t, []string{"age", "score"}, ds.TypedViews().Numeric)
}

func TestPreviewAndFingerprint(t *testing.T) {
	ds := sample(t)
	rows := ds.Preview([]string{"age", "city"}, 3)
	assert.Equal(t, [][]string{{"20", "Lisbon"}, {"25", "Porto"}, {"NaN", "NaN"}}, rows)

	fp1, err := ds.Fingerprint("age")
	require.NoError(t, err)
	fp2, err := ds.Fingerprint("age")
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	require.NoError(t, ds.RemoveColumns("age"))
	require.NoError(t, ds.CreateColumn(NewNumeric("age", []float64{20, 25, 30, 40})))
	fp3, err := ds.Fingerprint("age")
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

func TestCompleteRows(t *testing.T) {
	ds := sample(t)
	age, _ := ds.Column("age")
	city, _ := ds.Column("city")
	assert.Equal(t, []int{0, 1, 3}, CompleteRows(age, city))
}

func TestLevelsAndDistinct(t *testing.T) {
	c := NewCategorical("g", []string{"b", "a", "b", "c"}, nil)
	assert.Equal(t, []string{"b", "a", "c"}, c.Distinct())
	assert.Equal(t, []string{"a", "b", "c"}, c.Levels())

	n := NewNumeric("n", []float64{10, 2, math.NaN(), 2})
	assert.Equal(t, []string{"2", "10"}, n.Levels())
}

func TestObservedLevelsDropsEmptyDeclaredLevels(t *testing.T) {
	c := NewCategorical("g", []string{"low", "low", "high"}, nil).WithLevels([]string{"low", "mid", "high"})
	assert.Equal(t, []string{"low", "mid", "high"}, c.Levels())
	assert.Equal(t, []string{"low", "high"}, c.ObservedLevels())

	kept := c.Take([]int{0, 1})
	assert.Equal(t, []string{"low", "mid", "high"}, kept.Levels())
	assert.Equal(t, []string{"low"}, kept.ObservedLevels())

	plain := NewCategorical("p", []string{"b", "a"}, nil)
	assert.Equal(t, plain.Levels(), plain.ObservedLevels())
}
