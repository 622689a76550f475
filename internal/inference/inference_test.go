package inference

import (
	"math"
	"testing"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts []Option, cols ...*dataset.Column) *Engine {
	t.Helper()
	ds, err := dataset.New("test", cols...)
	require.NoError(t, err)
	return NewEngine(ds, opts...)
}

func repeat(parts ...any) []string {
	var out []string
	for i := 0; i < len(parts); i += 2 {
		for n := 0; n < parts[i+1].(int); n++ {
			out = append(out, parts[i].(string))
		}
	}
	return out
}

func TestOneSampleScenario(t *testing.T) {
	e := newEngine(t, nil, dataset.NewNumeric("x", []float64{10, 12, 11, 13, 12}))

	res, err := e.OneSample("x", 10)
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.InDelta(t, 11.6, res.Groups[0].Mean, 1e-12)
	assert.Greater(t, res.T, 0.0)
	assert.InDelta(t, 3.137858, res.T, 1e-5)
	assert.Equal(t, 4.0, res.DF)
	assert.Equal(t, stats.Significant, res.Significance)
	assert.InDelta(t, 1.6/math.Sqrt(1.3), res.CohenD, 1e-9)

	// t(0.975, 4) = 2.776445
	require.NotNil(t, res.MeanCI)
	margin := 2.776445 * math.Sqrt(1.3) / math.Sqrt(5)
	assert.InDelta(t, 0.95, res.MeanCI.Level, 1e-12)
	assert.InDelta(t, 11.6-margin, res.MeanCI.Lower, 1e-5)
	assert.InDelta(t, 11.6+margin, res.MeanCI.Upper, 1e-5)
}

func TestOneSampleConstantColumn(t *testing.T) {
	e := newEngine(t, nil, dataset.NewNumeric("x", []float64{3, 3, 3}))

	res, err := e.OneSample("x", 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.T, 1))
	assert.Zero(t, res.PValue)
	assert.Equal(t, stats.Significant, res.Significance)
	require.NotNil(t, res.MeanCI)
	assert.Equal(t, 3.0, res.MeanCI.Lower)
	assert.Equal(t, 3.0, res.MeanCI.Upper)

	res, err = e.OneSample("x", 3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.T))
	assert.Equal(t, stats.Undetermined, res.Significance)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, stats.WarningUndefinedPValue, res.Warnings[0].Code)

	_, err = newEngine(t, nil, dataset.NewNumeric("x", []float64{3, math.NaN()})).OneSample("x", 1)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestIndependentRequiresTwoLevels(t *testing.T) {
	y := dataset.NewNumeric("y", []float64{1, 2, 3, 4, 5, 6})
	tests := []struct {
		name   string
		labels []string
		valid  []bool
	}{
		{"zero levels", []string{"", "", "", "", "", ""}, []bool{false, false, false, false, false, false}},
		{"one level", repeat("a", 6), nil},
		{"three levels", repeat("a", 2, "b", 2, "c", 2), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, nil, y, dataset.NewCategorical("g", tt.labels, tt.valid))
			res, err := e.Independent("y", "g")
			require.Error(t, err)
			assert.Zero(t, res.T)
			assert.Empty(t, res.Groups)
		})
	}
}

func TestIndependentPooled(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("y", []float64{1, 6, 2, 7, 3, 8, 4, 9, 5, 10}),
		dataset.NewCategorical("g", []string{"low", "high", "low", "high", "low", "high", "low", "high", "low", "high"}, nil),
	)

	res, err := e.Independent("y", "g")
	require.NoError(t, err)
	assert.Equal(t, "low", res.Groups[0].Name, "groups keep order of first appearance")
	assert.True(t, res.EqualVariance)
	assert.InDelta(t, 1.0, res.LeveneP, 1e-12)
	assert.InDelta(t, -5.0, res.T, 1e-9)
	assert.Equal(t, 8.0, res.DF)
	assert.InDelta(t, -5/math.Sqrt(2.5), res.CohenD, 1e-9)
	assert.Equal(t, "high", res.HigherGroup)
	assert.Equal(t, stats.Significant, res.Significance)
	assert.Empty(t, res.Warnings)
}

func TestIndependentWelch(t *testing.T) {
	y := []float64{10, 10.1, 9.9, 10, 10.05, 9.95, 0, 40, -20, 60, 5, 35}
	g := repeat("tight", 6, "wide", 6)
	e := newEngine(t, nil, dataset.NewNumeric("y", y), dataset.NewCategorical("g", g, nil))

	res, err := e.Independent("y", "g")
	require.NoError(t, err)
	assert.False(t, res.EqualVariance)
	assert.Less(t, res.DF, 10.0)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, stats.WarningHeterogeneous, res.Warnings[0].Code)
}

func TestPaired(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("before", []float64{1, 2, 3, 4, math.NaN()}),
		dataset.NewNumeric("after", []float64{2, 4, 5, 8, 1}),
	)
	res, err := e.Paired("before", "after")
	require.NoError(t, err)
	assert.InDelta(t, -3.576237, res.T, 1e-5)
	assert.Equal(t, 3.0, res.DF)
	assert.InDelta(t, -2.25/math.Sqrt(4.75/3), res.CohenD, 1e-9)

	// t(0.975, 3) = 3.182446
	require.NotNil(t, res.MeanCI)
	margin := 3.182446 * math.Sqrt(4.75/3) / 2
	assert.InDelta(t, -2.25-margin, res.MeanCI.Lower, 1e-5)
	assert.InDelta(t, -2.25+margin, res.MeanCI.Upper, 1e-5)

	_, err = e.Paired("before", "before")
	assert.True(t, core.IsValidationError(err))
}

func TestContingencyYates(t *testing.T) {
	rows := repeat("A", 30, "B", 70)
	cols := append(repeat("X", 10, "Y", 20), repeat("X", 30, "Y", 40)...)
	e := newEngine(t, nil,
		dataset.NewCategorical("r", rows, nil),
		dataset.NewCategorical("c", cols, nil),
	)

	res, err := e.Contingency("r", "c")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{10, 20}, {30, 40}}, res.Observed)
	assert.True(t, res.YatesCorrected)
	assert.Equal(t, 1, res.DF)
	assert.InDelta(t, 0.446429, res.ChiSquare, 1e-6)
	assert.InDelta(t, 0.504036, res.PValue, 1e-5)
	assert.InDelta(t, -0.890871, res.Residuals[0][0], 1e-6)
	assert.Equal(t, stats.NotSignificant, res.Significance)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Dominance, 2)
	assert.Equal(t, "Y", res.Dominance[0].TopCol)
	assert.Equal(t, stats.DominanceModerate, res.Dominance[0].Level)
}

func TestContingencyMissingCategoryAndDegenerate(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewCategorical("r", []string{"a", "b", "", "a"}, []bool{true, true, false, true}),
		dataset.NewCategorical("c", []string{"x", "y", "x", "y"}, nil),
		dataset.NewCategorical("k", []string{"z", "z", "z", "z"}, nil),
	)

	res, err := e.Contingency("r", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", MissingLabel}, res.RowLevels)
	assert.Equal(t, 2, res.DF)
	assert.False(t, res.YatesCorrected)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, stats.WarningLowExpected, res.Warnings[0].Code)

	_, err = e.Contingency("r", "k")
	assert.ErrorIs(t, err, core.ErrComputation)
}

func TestFrequency(t *testing.T) {
	e := newEngine(t, nil, dataset.NewCategorical("c", []string{"b", "a", "b", ""}, []bool{true, true, true, false}))
	tab, err := e.Frequency("c")
	require.NoError(t, err)
	assert.Equal(t, 4, tab.Total)
	assert.Equal(t, stats.FrequencyRow{Level: "b", Count: 2, Percent: 50}, tab.Rows[0])
	assert.Len(t, tab.Rows, 3)
}

func TestCorrelations(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 5, math.NaN()}),
		dataset.NewNumeric("y", []float64{2, 4, 6, 8, 10.5, 3}),
		dataset.NewNumeric("z", []float64{5, 3, 4, 1, 2, 0}),
	)

	m, err := e.Correlations("x", "y", "z")
	require.NoError(t, err)
	require.Len(t, m.Pairs, 3)
	xy := m.Pairs[0]
	assert.Equal(t, 5, xy.N)
	assert.InDelta(t, 0.998868, xy.Pearson, 1e-5)
	assert.InDelta(t, 1.0, xy.Spearman, 1e-12)
	assert.Equal(t, stats.Significant, xy.Significance)

	_, err = e.Correlations("x")
	assert.True(t, core.IsValidationError(err))
}

func TestPartial(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 5, 6}),
		dataset.NewNumeric("y", []float64{2, 1, 4, 3, 6, 5}),
		dataset.NewNumeric("z", []float64{1, 2, 3, 4, 5, 6}),
		dataset.NewNumeric("short", []float64{1, 2, math.NaN(), math.NaN(), math.NaN(), math.NaN()}),
	)

	res, err := e.Partial("x", "y", "z")
	require.NoError(t, err)
	assert.Equal(t, 6, res.N)
	assert.Greater(t, res.TotalR, 0.8)
	assert.NotEmpty(t, res.Narrative)

	_, err = e.Partial("x", "y", "short")
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestGroupedCorrelation(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 1, 2}),
		dataset.NewNumeric("y", []float64{1, 2, 3, 4, 2, 1}),
		dataset.NewCategorical("g", []string{"a", "a", "a", "a", "b", "b"}, nil),
	)
	res, err := e.Grouped("g", "x", "y")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Groups)
	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 1.0, res.Rows[0].R[0], 1e-12)
	assert.True(t, math.IsNaN(res.Rows[0].R[1]), "fewer than three observations")
}

func oneWay(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return newEngine(t, opts,
		dataset.NewNumeric("y", []float64{1, 2, 3, 2, 1, 5, 6, 7, 6, 5, 9, 10, 11, 10, 9}),
		dataset.NewCategorical("grp", repeat("g1", 5, "g2", 5, "g3", 5), nil),
		dataset.NewCategorical("pair", repeat("p", 7, "q", 8), nil),
	)
}

func TestANOVAOneWayAndPostHocGate(t *testing.T) {
	e := oneWay(t)
	a := e.ANOVA()

	_, err := a.PostHoc("grp", stats.PostHocTukey)
	assert.ErrorIs(t, err, core.ErrInvalidState)

	require.NoError(t, a.Select("y", "grp"))
	res, err := a.Run()
	require.NoError(t, err)
	require.Len(t, res.Terms, 1)
	term := res.Terms[0]
	assert.Equal(t, "grp", term.Term)
	assert.InDelta(t, 160.0, term.SS, 1e-9)
	assert.Equal(t, 2, term.DF)
	assert.Equal(t, 12, res.ResidualDF)
	assert.InDelta(t, 8.4, res.ResidualSS, 1e-9)
	assert.InDelta(t, 160.0/168.4, term.PartialEta2, 1e-9)
	assert.InDelta(t, 80/0.7, term.F, 1e-6)
	assert.True(t, res.Homogeneous)
	assert.Equal(t, stats.PostHocTukey, res.Recommended)
	assert.Equal(t, StatePostHocAvailable, a.State())
	assert.Equal(t, []string{"grp"}, a.Significant())

	ph, err := a.PostHoc("grp", stats.PostHocTukey)
	require.NoError(t, err)
	require.Len(t, ph.Comparisons, 3)
	assert.Equal(t, "g1", ph.Comparisons[0].GroupA)
	assert.InDelta(t, 4.0, ph.Comparisons[0].MeanDiff, 1e-12)
	assert.True(t, ph.Comparisons[0].Reject)
	assert.Less(t, ph.Comparisons[0].Lower, 4.0)
	assert.Empty(t, ph.Warnings)
	assert.Equal(t, StatePostHocDone, a.State())

	gh, err := a.PostHoc("grp", stats.PostHocGamesHowell)
	require.NoError(t, err)
	require.NotEmpty(t, gh.Warnings)
	assert.Equal(t, stats.WarningMethodMismatch, gh.Warnings[0].Code)
	assert.InDelta(t, -4.0, gh.Comparisons[0].MeanDiff, 1e-12)

	require.NoError(t, a.Select("y", "pair"))
	assert.Equal(t, StateUnrun, a.State())
	_, err = a.PostHoc("grp", stats.PostHocTukey)
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestANOVAStrictPostHoc(t *testing.T) {
	e := oneWay(t, WithStrictPostHoc(true))
	a := e.ANOVA()
	require.NoError(t, a.Select("y", "grp"))
	_, err := a.Run()
	require.NoError(t, err)

	_, err = a.PostHoc("grp", stats.PostHocGamesHowell)
	assert.True(t, core.IsValidationError(err))
	assert.Equal(t, StatePostHocAvailable, a.State(), "a rejected post-hoc keeps the fitted model")
}

func TestANOVATwoLevelWarningAndFittedState(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("y", []float64{1, 2, 3, 1, 2, 3}),
		dataset.NewCategorical("g", repeat("a", 3, "b", 3), nil),
	)
	a := e.ANOVA()
	require.NoError(t, a.Select("y", "g"))
	res, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, StateFitted, a.State())
	assert.Zero(t, res.Terms[0].SS)
	assert.Zero(t, res.Terms[0].PartialEta2)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, stats.WarningTwoLevelFactor, res.Warnings[0].Code)

	_, err = a.PostHoc("g", stats.PostHocTukey)
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestANOVARejectsFactorWithOneObservedLevel(t *testing.T) {
	code := dataset.NewCategorical("code_cat", repeat("low", 4, "high", 2), nil).
		WithLevels([]string{"low", "high"})
	e := newEngine(t, nil,
		dataset.NewNumeric("y", []float64{1, 2, 3, 4, math.NaN(), math.NaN()}),
		code,
	)
	a := e.ANOVA()
	require.NoError(t, a.Select("y", "code_cat"))
	_, err := a.Run()
	assert.True(t, core.IsValidationError(err), "got %v", err)
	assert.Equal(t, StateUnrun, a.State())
	_, ok := a.Result()
	assert.False(t, ok)
}

func TestANOVAIgnoresDeclaredLevelsWithoutRows(t *testing.T) {
	grp := dataset.NewCategorical("grp", repeat("a", 3, "b", 3, "c", 3), nil).
		WithLevels([]string{"a", "b", "c", "unused"})
	e := newEngine(t, nil,
		dataset.NewNumeric("y", []float64{1, 2, 3, 1, 2, 3, math.NaN(), math.NaN(), math.NaN()}),
		grp,
	)
	a := e.ANOVA()
	require.NoError(t, a.Select("y", "grp"))
	res, err := a.Run()
	require.NoError(t, err)
	require.Len(t, res.Terms, 1)
	assert.Equal(t, 1, res.Terms[0].DF)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, stats.WarningTwoLevelFactor, res.Warnings[0].Code)
}

func TestANOVATwoWay(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("y", []float64{1, 2, 3, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
		dataset.NewCategorical("A", repeat("a1", 6, "a2", 6), nil),
		dataset.NewCategorical("B", repeat("b1", 3, "b2", 3, "b1", 3, "b2", 3), nil),
	)
	a := e.ANOVA()
	require.NoError(t, a.Select("y", "A", "B"))
	res, err := a.Run()
	require.NoError(t, err)

	require.Len(t, res.Terms, 3)
	names := make([]string, len(res.Terms))
	for i, term := range res.Terms {
		names[i] = term.Term
		assert.GreaterOrEqual(t, term.PartialEta2, 0.0)
		assert.LessOrEqual(t, term.PartialEta2, 1.0)
	}
	assert.Equal(t, []string{"A", "B", "A:B"}, names)
	assert.InDelta(t, 75.0, res.Terms[0].SS, 1e-8)
	assert.InDelta(t, 12.0, res.Terms[1].SS, 1e-8)
	assert.InDelta(t, 3.0, res.Terms[2].SS, 1e-8)
	assert.True(t, res.Terms[2].Interaction)
	assert.InDelta(t, 8.0, res.ResidualSS, 1e-8)
	assert.Equal(t, 8, res.ResidualDF)
	assert.Equal(t, []string{"A", "B"}, a.Significant())
	assert.Empty(t, a.InteractionTerms())
}

func TestANOVAErrorClearsState(t *testing.T) {
	e := oneWay(t)
	a := e.ANOVA()
	require.NoError(t, a.Select("y", "grp"))
	_, err := a.Run()
	require.NoError(t, err)

	require.NoError(t, a.Select("grp", "pair"))
	_, err = a.Run()
	assert.ErrorIs(t, err, core.ErrWrongKind)
	assert.Equal(t, StateUnrun, a.State())
	_, ok := a.Result()
	assert.False(t, ok)
	dv, _ := a.Selection()
	assert.Empty(t, dv)

	_, err = a.Run()
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestDescribe(t *testing.T) {
	e := newEngine(t, nil,
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 10}),
		dataset.NewCategorical("dom", repeat("a", 4, "b", 1)[:5], nil),
		dataset.NewCategorical("const", repeat("k", 5), nil),
	)

	d, err := e.Describe()
	require.NoError(t, err)
	require.Len(t, d.Numeric, 1)
	x := d.Numeric[0]
	assert.Equal(t, 5, x.Count)
	assert.InDelta(t, 1.697056, x.Skewness, 1e-5)
	assert.Equal(t, "right-skewed", x.Shape)
	assert.Equal(t, "leptokurtic", x.Tailedness)
	assert.Equal(t, 9.0, x.Range)

	require.Len(t, d.Categorical, 2)
	assert.Equal(t, stats.DiagnosisBalanced, d.Categorical[0].Diagnosis)
	assert.Equal(t, "a", d.Categorical[0].Mode)
	assert.Equal(t, stats.DiagnosisConstant, d.Categorical[1].Diagnosis)

	_, err = e.Describe("nope")
	assert.True(t, core.IsNotFoundError(err))
}

func TestDescribeDominant(t *testing.T) {
	vals := repeat("yes", 19, "no", 1)
	e := newEngine(t, nil, dataset.NewCategorical("c", vals, nil))
	d, err := e.Describe("c")
	require.NoError(t, err)
	assert.Equal(t, stats.DiagnosisDominant, d.Categorical[0].Diagnosis)
	assert.InDelta(t, 95.0, d.Categorical[0].ModeShare, 1e-12)
	assert.Equal(t, "no", d.Categorical[0].Levels[1].Level)
}
