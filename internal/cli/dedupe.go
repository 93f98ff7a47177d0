package cli

import (
	"context"
	"os"
	"os/signal"

	"crosseco/internal/engine"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Re-run the cross-count pass over existing results",
	Long: `Read every {n}_ecosystems/*.csv under --output for the selected ecosystems,
drop packages that also appear in a larger combination, rewrite or delete the
affected files and regenerate summary.csv and summary.txt.

Input statistics are included when the --input tables are still available.
Running dedupe on its own output changes nothing.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.Validate(); err != nil {
			log.Errorf("invalid configuration: %v", err)
			os.Exit(engine.ExitFatal)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		code := engine.Dedupe(ctx, cfg)
		stop()
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
	addOutputFlags(dedupeCmd)
}
