package core

import (
	"context"
	"strings"

	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/core/numeric"
	"github.com/huangsam/indiscore/schema"
)

// Scorer turns raw readings and an optional formula into results.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	evaluator *formula.Evaluator
	formatter *numeric.Formatter
}

// NewScorer returns a Scorer. A nil evaluator or formatter falls back to the
// defaults: formula.DefaultOptions and the en-US locale.
func NewScorer(ev *formula.Evaluator, f *numeric.Formatter) *Scorer {
	if ev == nil {
		ev = formula.NewEvaluator(formula.DefaultOptions())
	}
	if f == nil {
		f = numeric.NewFormatter(numeric.DefaultLocale)
	}
	return &Scorer{evaluator: ev, formatter: f}
}

var defaultScorer = NewScorer(nil, nil)

// ComputeScore computes the ratio between current and previous and, when
// script is not blank, evaluates it. Evaluation failures are reported in
// ComputedScore.Error and never returned or raised.
func (s *Scorer) ComputeScore(ctx context.Context, script string, current, previous *float64) schema.ComputedScore {
	ratio := numeric.ComputeRatio(current, previous)
	if !formula.ShouldEvaluate(script) {
		return schema.ComputedScore{Ratio: ratio}
	}

	out := schema.ComputedScore{Ratio: ratio, UsesFormula: true}
	score, err := s.evaluator.Evaluate(ctx, script, formula.Inputs{Current: current, Previous: previous, Ratio: ratio})
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Score = &score
	return out
}

// Recompute derives the calculated values for one indicator from scratch.
// It is a pure function of (script, values): equal inputs give equal results.
func (s *Scorer) Recompute(ctx context.Context, script string, values schema.IndicatorValues) schema.CalculatedIndicatorValues {
	usesFormula := formula.ShouldEvaluate(script)
	switch {
	case !values.Loaded:
		return schema.CalculatedIndicatorValues{UsesFormula: usesFormula}
	case values.Failed:
		return schema.CalculatedIndicatorValues{Loaded: true, LoadFailed: true, UsesFormula: usesFormula}
	}

	computed := s.ComputeScore(ctx, script, values.Current, values.Previous)
	out := schema.CalculatedIndicatorValues{
		Loaded:                 true,
		Calculated:             true,
		CalculateFailed:        strings.TrimSpace(computed.Error) != "",
		CalculateFailureReason: computed.Error,
		Current:                s.pair(values.Current, numeric.DefaultFractionDigits),
		Previous:               s.pair(values.Previous, numeric.DefaultFractionDigits),
		Ratio:                  s.pair(&computed.Ratio, numeric.DefaultFractionDigits),
		Score:                  s.pair(computed.Score, numeric.ScoreFractionDigits),
		UsesFormula:            computed.UsesFormula,
	}
	return out
}

func (s *Scorer) pair(v *float64, digits int) *schema.ValuePair {
	if v == nil {
		return nil
	}
	return &schema.ValuePair{Value: *v, Formatted: s.formatter.Format(*v, digits)}
}

// ComputeScore scores one pair of readings with ev. A nil ev uses the default bounds.
func ComputeScore(ev *formula.Evaluator, script string, current, previous *float64) schema.ComputedScore {
	if ev == nil {
		return defaultScorer.ComputeScore(context.Background(), script, current, previous)
	}
	return NewScorer(ev, defaultScorer.formatter).ComputeScore(context.Background(), script, current, previous)
}

// Recompute derives calculated values with the default evaluator and formatter.
func Recompute(script string, values schema.IndicatorValues) schema.CalculatedIndicatorValues {
	return defaultScorer.Recompute(context.Background(), script, values)
}
