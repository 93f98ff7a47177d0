package cli

import (
	"context"
	"os"
	"os/signal"

	"crosseco/internal/engine"
	"crosseco/internal/flags"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match all ecosystem combinations and write the results",
	Long: `Load {input}/{Ecosystem}.csv for every selected ecosystem, match every
combination of two or more ecosystems by normalized GitHub repository, keep each
package only under the largest combination it matched, and write:

	{output}/{n}_ecosystems/{A}_{B}....csv   one file per non-empty combination
	{output}/summary.csv                      one row per combination
	{output}/summary.txt                      input and per-ecosystem statistics

A missing input file drops that ecosystem with a warning. The run fails when
fewer than two ecosystems remain.

Events:
	--events writes lifecycle events (run.started, table.loaded,
	combination.matched, combination.pruned, dedupe.finished, run.finished) as
	a JSON array or NDJSON stream.

Exit codes:
	0 = all artifacts written
	1 = fatal error`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.Validate(); err != nil {
			log.Errorf("invalid configuration: %v", err)
			os.Exit(engine.ExitFatal)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		code := engine.Run(ctx, cfg)
		stop()
		os.Exit(code)
	},
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Output.Events, flags.FlagEvents, "", "Write lifecycle events to this path")
	cmd.Flags().StringVar(&cfg.Output.EventsFormat, flags.FlagEventsFormat, "", "Event format for --events: json|ndjson (default: inferred from file extension)")
	cmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|ndjson (default: text)")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output")
}

func init() {
	rootCmd.AddCommand(runCmd)
	addOutputFlags(runCmd)
}
