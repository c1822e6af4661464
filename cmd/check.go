package cmd

import (
	"github.com/huangsam/indiscore/core"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/internal/source"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD formula validation.
var checkCmd = &cobra.Command{
	Use:   "check [source]",
	Short: "Compile every formula in a source (fails build on errors)",
	Long: `Compile the formula of every indicator without running it and report syntax
and name errors. Exits with a non-zero code when any formula is broken.

Indicators without a formula pass and are reported as using the default ratio.

Examples:
  # Gate a pull request that edits indicator definitions
  indiscore check indicators.yaml

  # Machine-readable report
  indiscore check kpis.db --source-backend sqlite --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sourceSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		src, err := source.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := src.Close(); err != nil {
				contract.LogWarn("Error closing source", err)
			}
		}()
		return core.ExecuteCheck(rootCtx, cfg, src)
	},
}
