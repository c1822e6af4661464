package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/indiscore/core"
	"github.com/spf13/cobra"
)

// scoreCmd scores a single pair of readings.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one current/previous pair with an optional formula",
	Long: `Compute the ratio between a current and previous reading and, when a formula
is given, evaluate it to produce a score.

Formulas see c (current), p (previous), r (ratio as a fraction), the math
library and interpolation. The last line is the result; earlier lines may
declare bindings with const, let or var.

Examples:
  # Ratio only
  indiscore score --current 130 --previous 100

  # Piecewise-linear score between 10 and 100
  indiscore score --current 130 --previous 100 -f "return interpolation(r, 0.1, 10, 0.5, 100)"

  # Formula from a file, formatted for Germany
  indiscore score --current 1234.5 --previous 1000 --formula-file revenue.js --locale de-DE`,
	Args:    cobra.NoArgs,
	PreRunE: plainSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		script, err := readFormula(cmd)
		if err != nil {
			return err
		}
		current, _ := cmd.Flags().GetString("current")
		previous, _ := cmd.Flags().GetString("previous")
		return core.ExecuteScore(rootCtx, cfg, script, current, previous)
	},
}

// readFormula returns the formula given inline or by file.
func readFormula(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("formula-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read formula file: %w", err)
		}
		return string(data), nil
	}
	script, _ := cmd.Flags().GetString("formula")
	return script, nil
}
