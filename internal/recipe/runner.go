package recipe

import (
	"context"
	"fmt"

	"edabench/domain/stats"
	"edabench/internal/errors"
	"edabench/internal/features"
	"edabench/internal/logging"
	"edabench/internal/session"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Outcome is the result of one step
type Outcome struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Result any    `json:"result,omitempty"`
	Err    error  `json:"-"`
	Error  string `json:"error,omitempty"`
}

type handler func(ctx context.Context, s *session.Session, params *yaml.Node) (any, error)

func decode(node *yaml.Node, into any) error {
	if node.Kind == 0 {
		return nil
	}
	if err := node.Decode(into); err != nil {
		return errors.Wrap(errors.InvalidInput(err.Error()), "invalid step parameters")
	}
	return nil
}

// derive adapts a session derivation method to a handler
func derive[P any](fn func(*session.Session, P) (features.Result, error)) handler {
	return func(_ context.Context, s *session.Session, node *yaml.Node) (any, error) {
		var p P
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fn(s, p)
	}
}

// analyze adapts a parameter struct and a call into a handler
func analyze[P any](call func(context.Context, *session.Session, P) (any, error)) handler {
	return func(ctx context.Context, s *session.Session, node *yaml.Node) (any, error) {
		var p P
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return call(ctx, s, p)
	}
}

type columnsParams struct {
	Columns []string `yaml:"columns"`
}

type columnParams struct {
	Column string `yaml:"column"`
}

type pairParams struct {
	Row string `yaml:"row"`
	Col string `yaml:"col"`
}

type partialParams struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
	Z string `yaml:"z"`
}

type groupedParams struct {
	Group   string   `yaml:"group"`
	Columns []string `yaml:"columns"`
}

type oneSampleParams struct {
	Column string  `yaml:"column"`
	Mu     float64 `yaml:"mu"`
}

type independentParams struct {
	Value string `yaml:"value"`
	Group string `yaml:"group"`
}

type pairedParams struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

type anovaParams struct {
	Dependent string   `yaml:"dependent"`
	Factors   []string `yaml:"factors"`
	PostHoc   []struct {
		Factor string              `yaml:"factor"`
		Method stats.PostHocMethod `yaml:"method"`
	} `yaml:"posthoc"`
}

type anovaOutcome struct {
	Result  stats.ANOVAResult     `json:"result"`
	PostHoc []stats.PostHocResult `json:"posthoc,omitempty"`
}

type clusterParams struct {
	Features []string `yaml:"features"`
	K        int      `yaml:"k"`
	Persist  string   `yaml:"persist"` // column name; empty skips persisting
}

type clusterOutcome struct {
	Elbow      []session.ElbowPoint `json:"elbow"`
	Assignment any                  `json:"assignment,omitempty"`
	Means      any                  `json:"means,omitempty"`
	Persisted  any                  `json:"persisted,omitempty"`
}

var handlers = map[string]handler{
	"combine":       derive((*session.Session).Combine),
	"dummies":       derive((*session.Session).Dummies),
	"binarize":      derive((*session.Session).Binarize),
	"filter":        derive((*session.Session).Filter),
	"transform":     derive((*session.Session).Transform),
	"invert_likert": derive((*session.Session).InvertLikert),
	"interaction":   derive((*session.Session).Interaction),
	"discretize":    derive((*session.Session).Discretize),
	"pca":           derive((*session.Session).PCA),
	"relabel":       derive((*session.Session).Relabel),
	"temporal":      derive((*session.Session).ExtractTemporal),
	"remove": analyze(func(_ context.Context, s *session.Session, p columnsParams) (any, error) {
		return s.RemoveColumns(p.Columns...)
	}),

	"describe": analyze(func(_ context.Context, s *session.Session, p columnsParams) (any, error) {
		return s.Describe(p.Columns...)
	}),
	"frequency": analyze(func(_ context.Context, s *session.Session, p columnParams) (any, error) {
		return s.Frequency(p.Column)
	}),
	"contingency": analyze(func(_ context.Context, s *session.Session, p pairParams) (any, error) {
		return s.Contingency(p.Row, p.Col)
	}),
	"correlations": analyze(func(_ context.Context, s *session.Session, p columnsParams) (any, error) {
		return s.Correlations(p.Columns...)
	}),
	"partial": analyze(func(_ context.Context, s *session.Session, p partialParams) (any, error) {
		return s.Partial(p.X, p.Y, p.Z)
	}),
	"grouped_correlation": analyze(func(_ context.Context, s *session.Session, p groupedParams) (any, error) {
		return s.Grouped(p.Group, p.Columns...)
	}),
	"one_sample": analyze(func(_ context.Context, s *session.Session, p oneSampleParams) (any, error) {
		return s.OneSample(p.Column, p.Mu)
	}),
	"independent": analyze(func(_ context.Context, s *session.Session, p independentParams) (any, error) {
		return s.Independent(p.Value, p.Group)
	}),
	"paired": analyze(func(_ context.Context, s *session.Session, p pairedParams) (any, error) {
		return s.Paired(p.A, p.B)
	}),
	"anova":   analyze(runANOVA),
	"cluster": analyze(runCluster),
}

func runANOVA(_ context.Context, s *session.Session, p anovaParams) (any, error) {
	if err := s.ANOVASelect(p.Dependent, p.Factors...); err != nil {
		return nil, err
	}
	res, err := s.ANOVARun()
	if err != nil {
		return nil, err
	}
	out := anovaOutcome{Result: res}
	for _, ph := range p.PostHoc {
		r, err := s.ANOVAPostHoc(ph.Factor, ph.Method)
		if err != nil {
			return out, err
		}
		out.PostHoc = append(out.PostHoc, r)
	}
	return out, nil
}

func runCluster(ctx context.Context, s *session.Session, p clusterParams) (any, error) {
	if _, err := s.ClusterPrepare(p.Features...); err != nil {
		return nil, err
	}
	var out clusterOutcome
	var err error
	if out.Elbow, err = s.ClusterSweep(ctx); err != nil {
		return nil, err
	}
	if p.K == 0 {
		return out, nil
	}
	if out.Assignment, err = s.ClusterFit(ctx, p.K); err != nil {
		return out, err
	}
	if out.Means, err = s.ClusterMeans(); err != nil {
		return out, err
	}
	if p.Persist != "" {
		if out.Persisted, err = s.ClusterPersist(p.Persist); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Runner executes recipes against a session
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a runner
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{logger: logging.OrNop(logger).Named("recipe")}
}

// Run executes the steps in order. It stops at the first failing step unless
// the recipe continues on error; the returned error is the first failure.
func (r *Runner) Run(ctx context.Context, s *session.Session, rec *Recipe) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(rec.Steps))
	var first error
	for i := range rec.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		step := &rec.Steps[i]
		h, ok := handlers[step.Op]
		if !ok {
			return outcomes, errors.ValidationError(fmt.Sprintf("step %d: unknown op %q", i+1, step.Op))
		}

		res, err := h(ctx, s, &step.Params)
		o := Outcome{Index: i + 1, Op: step.Op, Result: res, Err: err}
		if err != nil {
			o.Error = err.Error()
			r.logger.Warn("step failed", zap.Int("step", i+1), zap.String("op", step.Op), zap.Error(err))
			if first == nil {
				first = errors.Wrapf(err, "step %d (%s) failed", i+1, step.Op)
			}
		} else {
			r.logger.Debug("step done", zap.Int("step", i+1), zap.String("op", step.Op))
		}
		outcomes = append(outcomes, o)
		if err != nil && !rec.ContinueOnError {
			break
		}
	}
	return outcomes, first
}
