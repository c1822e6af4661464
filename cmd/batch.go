package cmd

import (
	"github.com/huangsam/indiscore/core"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/internal/source"
	"github.com/spf13/cobra"
)

// batchCmd scores every indicator in a values source.
var batchCmd = &cobra.Command{
	Use:   "batch [source]",
	Short: "Score every indicator in a file or database table",
	Long: `Load indicator records and score each one with its own formula.

Sources:
  file        A .json, .yaml, .yml or .csv file given as the argument
  sqlite      A database file given as the argument or --source-db-connect
  mysql       --source-db-connect user:pass@tcp(host:port)/dbname
  postgresql  --source-db-connect "host=... dbname=..." or a postgres:// URL

Database sources read id, name, formula, current_value and previous_value
from --source-table (default: indicators).

Examples:
  # Score a YAML file as a table
  indiscore batch indicators.yaml

  # Export a SQLite table to Parquet
  indiscore batch kpis.db --source-backend sqlite --output parquet --output-file scores.parquet`,
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
		return core.ExecuteBatch(rootCtx, cfg, src)
	},
}
