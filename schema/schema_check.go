package schema

// FormulaCheck holds the outcome of compiling one record's formula.
type FormulaCheck struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Formula string `json:"formula,omitempty"`
	Empty   bool   `json:"empty"`
	Passed  bool   `json:"passed"`
	Error   string `json:"error,omitempty"`
}

// CheckResult summarizes a formula check over a whole source.
type CheckResult struct {
	Passed bool           `json:"passed"`
	Total  int            `json:"total"`
	Failed int            `json:"failed"`
	Checks []FormulaCheck `json:"checks"`
}

// NewCheckResult summarizes checks.
func NewCheckResult(checks []FormulaCheck) CheckResult {
	failed := 0
	for _, c := range checks {
		if !c.Passed {
			failed++
		}
	}
	return CheckResult{
		Passed: failed == 0,
		Total:  len(checks),
		Failed: failed,
		Checks: checks,
	}
}
