package features

import (
	"fmt"
	"math"
	"strings"
	"time"

	"edabench/domain/core"
	"edabench/domain/dataset"
)

// TemporalComponent is one calendar field that can be extracted
type TemporalComponent string

const (
	ComponentYear    TemporalComponent = "year"
	ComponentMonth   TemporalComponent = "month"
	ComponentDay     TemporalComponent = "day"
	ComponentWeekday TemporalComponent = "weekday"
	ComponentHour    TemporalComponent = "hour"
	ComponentMinute  TemporalComponent = "minute"
)

var componentFuncs = map[TemporalComponent]func(time.Time) float64{
	ComponentYear:  func(t time.Time) float64 { return float64(t.Year()) },
	ComponentMonth: func(t time.Time) float64 { return float64(t.Month()) },
	ComponentDay:   func(t time.Time) float64 { return float64(t.Day()) },
	// Monday is 0
	ComponentWeekday: func(t time.Time) float64 { return float64((int(t.Weekday()) + 6) % 7) },
	ComponentHour:    func(t time.Time) float64 { return float64(t.Hour()) },
	ComponentMinute:  func(t time.Time) float64 { return float64(t.Minute()) },
}

// TemporalParams selects calendar fields to extract
type TemporalParams struct {
	Column     string              `json:"column" yaml:"column"`
	Components []TemporalComponent `json:"components" yaml:"components"`
}

// ExtractTemporal adds one numeric column per component, named
// {column}_{component}. Text columns are parsed as dates; any unparseable
// present value rejects the call.
func (e *Engine) ExtractTemporal(p TemporalParams) (Result, error) {
	const op = "temporal extraction"
	if len(p.Components) == 0 {
		return Result{}, e.fail(op, core.NewValidationError("components", "select at least one component"))
	}
	names := make([]string, len(p.Components))
	for i, c := range p.Components {
		if _, ok := componentFuncs[c]; !ok {
			return Result{}, e.fail(op, core.NewValidationError("components", fmt.Sprintf("unknown component %q", c)))
		}
		names[i] = fmt.Sprintf("%s_%s", p.Column, c)
	}
	if err := e.requireTargets(names...); err != nil {
		return Result{}, e.fail(op, err)
	}
	src, err := e.ds.Lookup([]string{p.Column}, dataset.KindTemporal, dataset.KindCategorical)
	if err != nil {
		return Result{}, e.fail(op, err)
	}
	times, valid, err := parseTimes(src[0])
	if err != nil {
		return Result{}, e.fail(op, err)
	}

	out := make([]*dataset.Column, len(p.Components))
	for j, c := range p.Components {
		f := componentFuncs[c]
		vals := make([]float64, len(times))
		for i, t := range times {
			if valid[i] {
				vals[i] = f(t)
			} else {
				vals[i] = math.NaN()
			}
		}
		out[j] = dataset.NewNumeric(names[j], vals)
	}

	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = string(c)
	}
	desc := fmt.Sprintf("Extracted %s from '%s'", strings.Join(parts, ", "), p.Column)
	return e.commit(op, desc, out...)
}

func parseTimes(c *dataset.Column) ([]time.Time, []bool, error) {
	times := make([]time.Time, c.Len())
	valid := make([]bool, c.Len())
	for i := range times {
		if c.IsMissing(i) {
			continue
		}
		if t, ok := c.Time(i); ok {
			times[i], valid[i] = t, true
			continue
		}
		t, ok := dataset.ParseTime(c.String(i))
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q in %q is not a date", core.ErrCoercion, c.String(i), c.Name())
		}
		times[i], valid[i] = t, true
	}
	return times, valid, nil
}
