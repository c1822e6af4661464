// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteResults prints batch scoring results using the configured output format.
func (ow *OutWriter) WriteResults(results []schema.IndicatorResult, cfg *contract.Config, duration time.Duration) error {
	return WriteIndicatorResults(results, cfg, duration)
}

// WriteScore prints a single scored indicator using the configured output format.
func (ow *OutWriter) WriteScore(result schema.CalculatedIndicatorValues, cfg *contract.Config) error {
	return WriteScoreResult(result, cfg)
}

// WriteChecks prints formula check results using the configured output format.
func (ow *OutWriter) WriteChecks(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCheckResult(result, cfg, duration)
}

// WriteFunctions prints the names available to formulas using the configured output format.
func (ow *OutWriter) WriteFunctions(symbols []formula.Symbol, cfg *contract.Config) error {
	return WriteSymbols(symbols, cfg)
}

// GetMaxTableFormulaWidth calculates the maximum width for formulas in table output
// based on terminal width and table configuration.
func GetMaxTableFormulaWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + ID + Current + Previous + Ratio + Score + Label with borders/padding
	baseWidth := 85

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
