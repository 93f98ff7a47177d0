package cli

import (
	"fmt"
	"os"

	"crosseco/internal/config"
	"crosseco/internal/flags"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "crosseco",
	Short: "Find packages published to more than one language ecosystem",
	Long: `crosseco matches package exports of several registries (Crates, Go, Maven,
NPM, PHP, PyPI, Ruby, ...) by their GitHub source repository and reports the
packages that are published to more than one ecosystem.

Each package is reported once, under the largest set of ecosystems it was
found in.

Examples:
	# Match the default ecosystems under data/packages into results/
	crosseco run

	# Match three ecosystems from another directory
	crosseco run --input exports --ecosystems NPM,PyPI,Crates

	# Re-run the cross-count pass over existing results
	crosseco dedupe --output results

	# Print build info
	crosseco version

Environment:
	A .env file in the working directory and the CROSSECO_INPUT_DIR,
	CROSSECO_OUTPUT_DIR, CROSSECO_ECOSYSTEMS, CROSSECO_CONCURRENCY and
	CROSSECO_GITHUB_TOKEN variables provide defaults. Flags take precedence.

Output:
	Logs go to stderr; progress and the summary go to stdout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyEnv(cmd, cfg); err != nil {
			return err
		}
		initLogging(cfg)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable debug logging (including every GitHub API call)")
	pf.BoolVar(&cfg.Runtime.Quiet, flags.FlagQuiet, false, "Only log errors")
	pf.StringVar(&cfg.Input.Dir, flags.FlagInput, cfg.Input.Dir, "Directory holding one {Ecosystem}.csv per ecosystem")
	pf.StringVar(&cfg.Output.Dir, flags.FlagOutput, cfg.Output.Dir, "Results directory")
	pf.StringSliceVar(&cfg.Input.Ecosystems, flags.FlagEcosystems, cfg.Input.Ecosystems, "Ecosystems to match (repeatable; comma-separated accepted)")
	pf.IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent workers (default: number of CPUs)")
}

func initLogging(c *config.Config) {
	level := log.InfoLevel
	if c.Runtime.Verbose {
		level = log.DebugLevel
	}
	if c.Runtime.Quiet {
		level = log.ErrorLevel
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
