package schema

// Message is one notification delivered to the scoring hub.
// Values is used by ValuesMessage and Formula by FormulaMessage;
// AskMessage only needs Owner.
type Message struct {
	Type    MessageType      `json:"type"`
	Owner   string           `json:"owner"`
	Values  *IndicatorValues `json:"values,omitempty"`
	Formula string           `json:"formula,omitempty"`
}

// ScoreComputed carries the latest result for one formula owner.
type ScoreComputed struct {
	Owner  string                    `json:"owner"`
	Values CalculatedIndicatorValues `json:"values"`
}
