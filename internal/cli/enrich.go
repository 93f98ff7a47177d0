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

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch GitHub metadata for the matched repositories",
	Long: `Look up every repository kept in the results directory on GitHub and write
its canonical name, stars, forks, archived and fork flags to enriched.csv.
Combination files are not modified.

Authentication (in order):
	1) --token or CROSSECO_GITHUB_TOKEN
	2) GITHUB_TOKEN
	3) GitHub CLI (gh auth token), if installed and logged in
Without a token the unauthenticated rate limit applies.

Lookups that fail are recorded in the Error column; only cancellation or the
--timeout aborts the command.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.Validate(); err != nil {
			log.Errorf("invalid configuration: %v", err)
			os.Exit(engine.ExitFatal)
		}
		if err := cfg.ValidateEnrich(); err != nil {
			log.Errorf("invalid configuration: %v", err)
			os.Exit(engine.ExitFatal)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		code := engine.Enrich(ctx, cfg)
		stop()
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	f := enrichCmd.Flags()
	f.StringVar(&cfg.Enrich.Token, flags.FlagToken, "", "GitHub token (default: CROSSECO_GITHUB_TOKEN, GITHUB_TOKEN or gh auth token)")
	f.StringVar(&cfg.Enrich.Out, flags.FlagEnrichOut, "", "Output path (default: {output}/enriched.csv)")
	f.IntVar(&cfg.Enrich.Concurrency, flags.FlagEnrichConcurrency, cfg.Enrich.Concurrency, "Concurrent GitHub requests")
	f.IntVar(&cfg.Enrich.CacheSize, flags.FlagCacheSize, cfg.Enrich.CacheSize, "Repository lookups kept in memory")
	f.IntVar(&cfg.Enrich.MaxRequests, flags.FlagMaxRequests, 0, "Maximum GitHub requests (0 = unlimited)")
	f.DurationVar(&cfg.Enrich.Timeout, flags.FlagTimeout, cfg.Enrich.Timeout, "Overall timeout")
	f.BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output")
}
