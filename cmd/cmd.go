// Package cmd defines the command-line interface for indiscore.
package cmd

import (
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("locale", contract.DefaultLocale, "BCP 47 locale used to format numbers (e.g. en-US, de-DE)")
	rootCmd.PersistentFlags().String("eval-timeout", contract.DefaultEvalTimeout.String(), "Wall-clock limit for one formula evaluation")
	rootCmd.PersistentFlags().Int("max-steps", contract.DefaultMaxSteps, "Step budget for one formula evaluation")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print failure reasons and progress to stderr")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("source-backend", string(schema.FileBackend), "Values source: file or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("source-table", contract.DefaultSourceTable, "Table holding indicator records")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// scoreCmd flags are read directly, not through Viper
	scoreCmd.Flags().String("current", "", "Current value (empty means absent)")
	scoreCmd.Flags().String("previous", "", "Previous value (empty means absent)")
	scoreCmd.Flags().StringP("formula", "f", "", "Scoring formula")
	scoreCmd.Flags().String("formula-file", "", "Read the scoring formula from a file")
	scoreCmd.MarkFlagsMutuallyExclusive("formula", "formula-file")
}
