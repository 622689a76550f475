package inference

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/stats"
	"edabench/internal/errors"
	"edabench/internal/numeric"

	"go.uber.org/zap"
)

// MaxFactors bounds the factorial design
const MaxFactors = 3

// State is the lifecycle position of an ANOVA
type State int

const (
	StateUnrun State = iota
	StateFitted
	StatePostHocAvailable
	StatePostHocDone
)

func (s State) String() string {
	switch s {
	case StateFitted:
		return "fitted"
	case StatePostHocAvailable:
		return "posthoc_available"
	case StatePostHocDone:
		return "posthoc_done"
	default:
		return "unrun"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ANOVA is a factorial analysis of variance whose post-hoc step is gated on
// the outcome of the run. Any change of selection discards prior results.
type ANOVA struct {
	mu     sync.Mutex
	engine *Engine

	state     State
	dependent string
	factors   []string
	result    *stats.ANOVAResult
	posthoc   map[string]stats.PostHocResult

	// cleaned sub-dataset of the last successful run
	y      []float64
	labels map[string][]string
}

func newANOVA(e *Engine) *ANOVA {
	return &ANOVA{engine: e}
}

func (a *ANOVA) reset() {
	a.state = StateUnrun
	a.result = nil
	a.posthoc = nil
	a.y = nil
	a.labels = nil
}

// State returns the current lifecycle state
func (a *ANOVA) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Selection returns the dependent variable and factors currently selected
func (a *ANOVA) Selection() (string, []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dependent, append([]string(nil), a.factors...)
}

// Result returns the effect table of the last run, if any
func (a *ANOVA) Result() (stats.ANOVAResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return stats.ANOVAResult{}, false
	}
	return *a.result, true
}

// Select sets the dependent variable and factors and clears every prior result
func (a *ANOVA) Select(dependent string, factors ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	a.dependent, a.factors = "", nil

	if len(factors) == 0 || len(factors) > MaxFactors {
		return a.engine.fail("anova", core.NewValidationError("factors",
			fmt.Sprintf("select between 1 and %d factors", MaxFactors)))
	}
	if err := distinct(append([]string{dependent}, factors...)); err != nil {
		return a.engine.fail("anova", err)
	}
	a.dependent = dependent
	a.factors = append([]string(nil), factors...)
	return nil
}

// Run validates the selection, checks variance homogeneity and fits the full
// factorial model. Any failure clears the procedure state.
func (a *ANOVA) Run() (res stats.ANOVAResult, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	defer func() {
		if err != nil {
			a.reset()
			a.dependent, a.factors = "", nil
			err = a.engine.fail("anova", err)
		}
	}()

	if a.dependent == "" {
		return stats.ANOVAResult{}, errors.InvalidState("no dependent variable and factors selected")
	}
	ds := a.engine.ds
	y, err := ds.Lookup([]string{a.dependent}, dataset.KindNumeric)
	if err != nil {
		return stats.ANOVAResult{}, err
	}
	fcols, err := ds.Lookup(a.factors, dataset.KindCategorical, dataset.KindBoolean)
	if err != nil {
		return stats.ANOVAResult{}, err
	}

	idx := dataset.CompleteRows(append([]*dataset.Column{y[0]}, fcols...)...)
	if len(idx) == 0 {
		return stats.ANOVAResult{}, core.NewInsufficientDataError("no rows remain after removing missing values")
	}
	yv := y[0].Take(idx).Floats()
	labels := make(map[string][]string, len(a.factors))
	levels := make([][]string, len(a.factors))
	for f, c := range fcols {
		t := c.Take(idx)
		levels[f] = t.ObservedLevels()
		labels[a.factors[f]] = make([]string, len(idx))
		for i := range idx {
			labels[a.factors[f]][i] = t.String(i)
		}
	}

	res = stats.ANOVAResult{Dependent: a.dependent, Factors: append([]string(nil), a.factors...), N: len(idx)}
	for f, lv := range levels {
		if len(lv) < 2 {
			return stats.ANOVAResult{}, core.NewValidationError("factors",
				fmt.Sprintf("%q has %d level(s) after cleaning; at least 2 are required", a.factors[f], len(lv)))
		}
	}
	if len(a.factors) == 1 && len(levels[0]) == 2 {
		res.Warnings = append(res.Warnings, stats.Warning{
			Code:    stats.WarningTwoLevelFactor,
			Message: fmt.Sprintf("%q has only two levels; an independent t-test answers the same question", a.factors[0]),
		})
	}

	a.homogeneity(&res, yv, labels)
	if err := a.fit(&res, yv, labels, levels); err != nil {
		return stats.ANOVAResult{}, err
	}

	a.state = StateFitted
	for _, t := range res.Terms {
		if t.Significance == stats.Significant {
			a.state = StatePostHocAvailable
			break
		}
	}
	a.result = &res
	a.y, a.labels = yv, labels
	a.engine.logger.Info("anova fitted",
		zap.String("dependent", a.dependent),
		zap.Strings("factors", a.factors),
		zap.Int("n", res.N),
		zap.Stringer("state", a.state))
	return res, nil
}

// homogeneity runs Levene's test on the factor, or on the combined key of
// several factors. A failed test is advisory: p is reported as 1.
func (a *ANOVA) homogeneity(res *stats.ANOVAResult, y []float64, labels map[string][]string) {
	keyed := make(map[string][]float64)
	for i, v := range y {
		parts := make([]string, len(a.factors))
		for f, name := range a.factors {
			parts[f] = labels[name][i]
		}
		k := strings.Join(parts, "_")
		keyed[k] = append(keyed[k], v)
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	groups := make([][]float64, len(keys))
	for i, k := range keys {
		groups[i] = keyed[k]
	}

	lev, err := numeric.Levene(groups)
	if err != nil {
		res.LeveneW, res.LeveneP = math.NaN(), 1
		res.Warnings = append(res.Warnings, stats.Warning{
			Code:    stats.WarningLeveneFailed,
			Message: fmt.Sprintf("Levene's test could not run (%v); homogeneity assumed", err),
		})
	} else {
		res.LeveneW, res.LeveneP = lev.W, lev.PValue
	}

	res.Homogeneous = res.LeveneP >= a.engine.alpha
	res.Recommended = stats.PostHocTukey
	if !res.Homogeneous {
		res.Recommended = stats.PostHocGamesHowell
		res.Warnings = append(res.Warnings, stats.Warning{
			Code:    stats.WarningHeterogeneous,
			Message: fmt.Sprintf("group variances differ (Levene p = %.4f); Games-Howell is recommended for post-hoc comparisons", res.LeveneP),
		})
	}
}

// term is one effect of the factorial model, as indices into the factor list
type term []int

func (t term) contains(u term) bool {
	for _, f := range u {
		found := false
		for _, g := range t {
			if g == f {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// factorialTerms lists main effects first, then interactions by order
func factorialTerms(k int) []term {
	var out []term
	for mask := 1; mask < 1<<k; mask++ {
		var t term
		for f := 0; f < k; f++ {
			if mask&(1<<f) != 0 {
				t = append(t, f)
			}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) < len(out[j]) })
	return out
}

// termColumns builds treatment-coded columns of one term: the product of the
// non-reference dummies of each factor in the term.
func termColumns(t term, labels [][]string, levels [][]string) [][]float64 {
	n := len(labels[0])
	cols := [][]float64{nil}
	for _, f := range t {
		var next [][]float64
		for _, prev := range cols {
			for _, lv := range levels[f][1:] {
				c := make([]float64, n)
				for i := 0; i < n; i++ {
					if labels[f][i] != lv {
						continue
					}
					if prev == nil {
						c[i] = 1
					} else {
						c[i] = prev[i]
					}
				}
				next = append(next, c)
			}
		}
		cols = next
	}
	return cols
}

func design(n int, blocks ...[][]float64) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		row := []float64{1}
		for _, b := range blocks {
			for _, c := range b {
				row = append(row, c[i])
			}
		}
		rows[i] = row
	}
	return rows
}

// fit computes the type-II effect table by nested least squares
func (a *ANOVA) fit(res *stats.ANOVAResult, y []float64, labelMap map[string][]string, levels [][]string) error {
	n := len(y)
	labels := make([][]string, len(a.factors))
	for f, name := range a.factors {
		labels[f] = labelMap[name]
	}
	terms := factorialTerms(len(a.factors))
	blocks := make([][][]float64, len(terms))
	for i, t := range terms {
		blocks[i] = termColumns(t, labels, levels)
	}

	full, err := numeric.FitRSS(design(n, blocks...), y)
	if err != nil {
		return core.NewComputationError("ols", err)
	}
	res.ResidualSS = full.RSS
	res.ResidualDF = n - full.Rank
	if res.ResidualDF <= 0 {
		return core.NewComputationError("ols", fmt.Errorf("no residual degrees of freedom (%d rows, rank %d)", n, full.Rank))
	}

	for i, t := range terms {
		var others [][][]float64
		for j, u := range terms {
			if j != i && !u.contains(t) {
				others = append(others, blocks[j])
			}
		}
		reduced, err := numeric.FitRSS(design(n, others...), y)
		if err != nil {
			return core.NewComputationError("ols", err)
		}
		withTerm, err := numeric.FitRSS(design(n, append(others, blocks[i])...), y)
		if err != nil {
			return core.NewComputationError("ols", err)
		}
		ss, df, f, p := numeric.NestedF(reduced, withTerm, full, n)

		names := make([]string, len(t))
		for k, fi := range t {
			names[k] = a.factors[fi]
		}
		row := stats.ANOVATerm{
			Term:         strings.Join(names, ":"),
			Factors:      names,
			SS:           ss,
			DF:           df,
			F:            f,
			PValue:       p,
			PartialEta2:  partialEta2(ss, full.RSS),
			Interaction:  len(t) > 1,
			Significance: stats.Classify(p, a.engine.alpha),
		}
		res.Terms = append(res.Terms, row)
	}
	return nil
}

func partialEta2(ss, residual float64) float64 {
	den := ss + residual
	if den <= 0 || ss <= 0 {
		return 0
	}
	return math.Min(1, ss/den)
}

// Significant lists main factors whose effect is significant
func (a *ANOVA) Significant() []string {
	return a.significantTerms(false)
}

// InteractionTerms lists significant interaction terms, which have no
// automated post-hoc and are left to manual interpretation
func (a *ANOVA) InteractionTerms() []string {
	return a.significantTerms(true)
}

func (a *ANOVA) significantTerms(interaction bool) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return nil
	}
	var out []string
	for _, t := range a.result.Terms {
		if t.Interaction == interaction && t.Significance == stats.Significant {
			out = append(out, t.Term)
		}
	}
	return out
}

// PostHocResults returns the comparisons computed since the last run
func (a *ANOVA) PostHocResults() []stats.PostHocResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]stats.PostHocResult, 0, len(a.posthoc))
	for _, f := range a.factors {
		if r, ok := a.posthoc[f]; ok {
			out = append(out, r)
		}
	}
	return out
}
