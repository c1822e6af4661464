package cmd

import (
	"github.com/huangsam/indiscore/core"
	"github.com/spf13/cobra"
)

// functionsCmd lists the scoring context.
var functionsCmd = &cobra.Command{
	Use:     "functions",
	Short:   "List the variables, constants and functions available to formulas",
	Args:    cobra.NoArgs,
	PreRunE: plainSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteFunctions(rootCtx, cfg)
	},
}
