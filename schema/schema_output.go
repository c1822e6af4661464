package schema

import "github.com/huangsam/indiscore/core/numeric"

// IndicatorRecord is one indicator read from a values source.
// Current and Previous keep the raw upstream reading; they are normalized
// when converted to IndicatorValues.
type IndicatorRecord struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Formula  string `json:"formula,omitempty" yaml:"formula,omitempty"`
	Current  any    `json:"current,omitempty" yaml:"current,omitempty"`
	Previous any    `json:"previous,omitempty" yaml:"previous,omitempty"`
	Failed   bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Values converts the record into a loaded IndicatorValues.
func (r IndicatorRecord) Values() IndicatorValues {
	return IndicatorValues{
		Loaded:   true,
		Failed:   r.Failed,
		Current:  numeric.Optional(r.Current),
		Previous: numeric.Optional(r.Previous),
	}
}

// IndicatorResult pairs a record with its calculated values.
type IndicatorResult struct {
	Rank    int                       `json:"rank"`
	ID      string                    `json:"id"`
	Name    string                    `json:"name,omitempty"`
	Formula string                    `json:"formula,omitempty"`
	State   State                     `json:"state"`
	Label   string                    `json:"label"`
	Result  CalculatedIndicatorValues `json:"result"`
}

// GetPlainLabel returns a plain text label for a state.
func GetPlainLabel(state State) string {
	switch state {
	case CalculatedState:
		return "Calculated"
	case CalculateFailedState:
		return "Failed"
	case LoadFailedState:
		return "Load failed"
	default:
		return "Not loaded"
	}
}

// EnrichResults adds rank, state and label to calculated values. records and
// values must have the same length and order.
func EnrichResults(records []IndicatorRecord, values []CalculatedIndicatorValues) []IndicatorResult {
	output := make([]IndicatorResult, len(values))
	for i, v := range values {
		state := v.State()
		output[i] = IndicatorResult{
			Rank:    i + 1,
			ID:      records[i].ID,
			Name:    records[i].Name,
			Formula: records[i].Formula,
			State:   state,
			Label:   GetPlainLabel(state),
			Result:  v,
		}
	}
	return output
}
