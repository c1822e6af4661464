package cmd

import (
	"runtime"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of indiscore.",
	Long: `Display version information including build details and the default
formula evaluation bounds compiled into this binary.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("indiscore CLI\n")
		cmd.Printf("  Version:   %s\n", version)
		cmd.Printf("  Commit:    %s\n", commit)
		cmd.Printf("  Built:     %s\n", date)
		cmd.Printf("  Runtime:   %s\n", runtime.Version())
		cmd.Printf("  Eval:      %s timeout, %d steps\n", contract.DefaultEvalTimeout, contract.DefaultMaxSteps)
	},
}
