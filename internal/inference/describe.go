package inference

import (
	"math"

	"edabench/domain/dataset"
	"edabench/domain/stats"
	"edabench/internal/numeric"
)

// Description holds the summaries produced by Describe
type Description struct {
	Numeric     []stats.NumericDescription     `json:"numeric"`
	Categorical []stats.CategoricalDescription `json:"categorical"`
}

const (
	dominantShare       = 90.0
	highCardinality     = 20
	shapeThreshold      = 0.5
	tailednessThreshold = 0.5
)

// Describe summarizes the named columns, or every column when none are given.
// Numeric columns get moments and quartiles; the other kinds get level counts
// and a distribution diagnosis.
func (e *Engine) Describe(columns ...string) (Description, error) {
	cols := e.ds.Columns()
	if len(columns) > 0 {
		var err error
		if cols, err = e.ds.Lookup(columns); err != nil {
			return Description{}, e.fail("describe", err)
		}
	}

	var d Description
	for _, c := range cols {
		if c.Kind() == dataset.KindNumeric {
			d.Numeric = append(d.Numeric, describeNumeric(c))
		} else {
			d.Categorical = append(d.Categorical, describeCategorical(c))
		}
	}
	return d, nil
}

func describeNumeric(c *dataset.Column) stats.NumericDescription {
	s, err := numeric.Summarize(c.Floats())
	d := stats.NumericDescription{Column: c.Name(), Count: s.Count, Missing: c.MissingCount()}
	if err != nil {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q1, d.Median, d.Q3, d.Max = nan, nan, nan, nan, nan, nan, nan
		d.CoefVar, d.Range, d.Skewness, d.Kurtosis = nan, nan, nan, nan
		d.Shape, d.Tailedness = "undetermined", "undetermined"
		return d
	}
	d.Mean, d.Std = s.Mean, s.Std
	d.Min, d.Q1, d.Median, d.Q3, d.Max = s.Min, s.Q1, s.Median, s.Q3, s.Max
	d.Range = s.Max - s.Min
	d.CoefVar = math.NaN()
	if s.Mean != 0 {
		d.CoefVar = 100 * s.Std / math.Abs(s.Mean)
	}
	d.Skewness, d.Kurtosis = s.Skewness, s.Kurtosis
	d.Shape = shapeOf(s.Skewness)
	d.Tailedness = tailednessOf(s.Kurtosis)
	return d
}

func shapeOf(skew float64) string {
	switch {
	case math.IsNaN(skew):
		return "undetermined"
	case math.Abs(skew) < shapeThreshold:
		return "symmetric"
	case skew > 0:
		return "right-skewed"
	default:
		return "left-skewed"
	}
}

func tailednessOf(kurt float64) string {
	switch {
	case math.IsNaN(kurt):
		return "undetermined"
	case math.Abs(kurt) < tailednessThreshold:
		return "mesokurtic"
	case kurt > tailednessThreshold:
		return "leptokurtic"
	default:
		return "platykurtic"
	}
}

func describeCategorical(c *dataset.Column) stats.CategoricalDescription {
	counts := make(map[string]int)
	present := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		counts[c.String(i)]++
		present++
	}
	d := stats.CategoricalDescription{
		Column:  c.Name(),
		Count:   present,
		Missing: c.Len() - present,
		Unique:  len(counts),
		Levels:  frequencyRows(counts, present),
	}
	if len(d.Levels) > 0 {
		d.Mode, d.ModeShare = d.Levels[0].Level, d.Levels[0].Percent
	}
	switch {
	case d.Unique <= 1:
		d.Diagnosis = stats.DiagnosisConstant
	case d.ModeShare > dominantShare:
		d.Diagnosis = stats.DiagnosisDominant
	case d.Unique > highCardinality:
		d.Diagnosis = stats.DiagnosisHighCardinality
	default:
		d.Diagnosis = stats.DiagnosisBalanced
	}
	return d
}
