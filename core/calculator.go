package core

import (
	"context"

	"github.com/huangsam/indiscore/schema"
)

// Sink receives every result produced by a recompute.
type Sink func(schema.ScoreComputed)

// Calculator tracks the formula and latest result of one formula owner.
// It is not safe for concurrent use; Hub serializes access to it.
type Calculator struct {
	owner   string
	scorer  *Scorer
	sink    Sink
	formula string
	values  schema.IndicatorValues
	current schema.CalculatedIndicatorValues
}

// NewCalculator returns a Calculator in the NotLoaded state for owner with
// the initial formula script. sink may be nil.
func NewCalculator(owner, script string, scorer *Scorer, sink Sink) *Calculator {
	if scorer == nil {
		scorer = defaultScorer
	}
	return &Calculator{
		owner:   owner,
		scorer:  scorer,
		sink:    sink,
		formula: script,
		current: scorer.Recompute(context.Background(), script, schema.IndicatorValues{}),
	}
}

// Owner returns the formula owner id.
func (c *Calculator) Owner() string {
	return c.owner
}

// Formula returns the latest formula text.
func (c *Calculator) Formula() string {
	return c.formula
}

// Current returns a copy of the latest result.
func (c *Calculator) Current() schema.CalculatedIndicatorValues {
	return c.current.Clone()
}

// ValuesChanged recomputes from scratch with new raw values.
func (c *Calculator) ValuesChanged(ctx context.Context, values schema.IndicatorValues) schema.CalculatedIndicatorValues {
	c.values = schema.IndicatorValues{
		Loaded:   values.Loaded,
		Failed:   values.Failed,
		Current:  copyReading(values.Current),
		Previous: copyReading(values.Previous),
	}
	return c.recompute(ctx, c.values)
}

// FormulaChanged stores script and recomputes with the last known readings.
// Nothing is recomputed unless the latest result was loaded without a load
// failure; the second return value reports whether a recompute happened.
func (c *Calculator) FormulaChanged(ctx context.Context, script string) (schema.CalculatedIndicatorValues, bool) {
	c.formula = script
	if !c.current.Loaded || c.current.LoadFailed {
		return c.current.Clone(), false
	}
	values := schema.IndicatorValues{
		Loaded:   true,
		Current:  c.values.Current,
		Previous: c.values.Previous,
	}
	return c.recompute(ctx, values), true
}

func (c *Calculator) recompute(ctx context.Context, values schema.IndicatorValues) schema.CalculatedIndicatorValues {
	c.current = c.scorer.Recompute(ctx, c.formula, values)
	if c.sink != nil {
		c.sink(schema.ScoreComputed{Owner: c.owner, Values: c.current.Clone()})
	}
	return c.current.Clone()
}

func copyReading(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
