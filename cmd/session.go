package cmd

import (
	"os"

	"github.com/huangsam/indiscore/core"
	"github.com/spf13/cobra"
)

// sessionCmd runs the live scoring hub over stdio.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Keep scores current from a stream of JSON messages",
	Long: `Read one JSON message per line from stdin and write one JSON result per line
to stdout whenever a score is recomputed or asked for.

Messages:
  {"type":"values","owner":"kpi","values":{"loaded":true,"current":130,"previous":100}}
  {"type":"formula","owner":"kpi","formula":"return r * 100"}
  {"type":"ask","owner":"kpi"}

A formula change before any values only stores the formula. Malformed lines
are skipped; an unknown message type ends the session with an error.`,
	Args:    cobra.NoArgs,
	PreRunE: plainSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteSession(rootCtx, cfg, os.Stdin, os.Stdout)
	},
}
