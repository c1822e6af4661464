// Package schema has the models shared by every part of indiscore.
package schema

import (
	"bytes"
	"encoding/json"

	"github.com/huangsam/indiscore/core/numeric"
)

// IndicatorValues is the upstream load outcome for one indicator's raw readings.
// Current and Previous are nil when the reading is absent.
type IndicatorValues struct {
	Loaded   bool     `json:"loaded"`
	Failed   bool     `json:"failed"`
	Current  *float64 `json:"current,omitempty"`
	Previous *float64 `json:"previous,omitempty"`
}

// UnmarshalJSON accepts numbers or numeric strings for current and previous.
// Anything else decodes as an absent reading.
func (v *IndicatorValues) UnmarshalJSON(data []byte) error {
	var raw struct {
		Loaded   bool `json:"loaded"`
		Failed   bool `json:"failed"`
		Current  any  `json:"current"`
		Previous any  `json:"previous"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = IndicatorValues{
		Loaded:   raw.Loaded,
		Failed:   raw.Failed,
		Current:  numeric.Optional(raw.Current),
		Previous: numeric.Optional(raw.Previous),
	}
	return nil
}

// ValuePair holds a number together with its display string.
type ValuePair struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// ComputedScore is the outcome of scoring one pair of readings.
// Error is set only when a formula was present and failed; Score is nil
// whenever Error is set or no formula is present.
type ComputedScore struct {
	Ratio       float64  `json:"ratio"`
	Score       *float64 `json:"score,omitempty"`
	UsesFormula bool     `json:"usesFormula"`
	Error       string   `json:"error,omitempty"`
}

// CalculatedIndicatorValues is the result handed to presentation collaborators.
// A new value replaces the previous one on every recompute.
type CalculatedIndicatorValues struct {
	Loaded                 bool       `json:"loaded"`
	LoadFailed             bool       `json:"loadFailed"`
	Calculated             bool       `json:"calculated"`
	CalculateFailed        bool       `json:"calculateFailed"`
	CalculateFailureReason string     `json:"calculateFailureReason,omitempty"`
	Current                *ValuePair `json:"current,omitempty"`
	Previous               *ValuePair `json:"previous,omitempty"`
	Ratio                  *ValuePair `json:"ratio,omitempty"`
	Score                  *ValuePair `json:"score,omitempty"`
	UsesFormula            bool       `json:"usesFormula"`
}

// Clone returns a copy of c that shares no value pairs with it.
func (c CalculatedIndicatorValues) Clone() CalculatedIndicatorValues {
	c.Current = c.Current.clone()
	c.Previous = c.Previous.clone()
	c.Ratio = c.Ratio.clone()
	c.Score = c.Score.clone()
	return c
}

func (p *ValuePair) clone() *ValuePair {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// State derives the lifecycle state from the result flags.
func (c CalculatedIndicatorValues) State() State {
	switch {
	case !c.Loaded:
		return NotLoadedState
	case c.LoadFailed:
		return LoadFailedState
	case c.CalculateFailed:
		return CalculateFailedState
	case c.Calculated:
		return CalculatedState
	default:
		return NotLoadedState
	}
}
