package cli

import (
	"crosseco/internal/config"
	"crosseco/internal/flags"

	"github.com/spf13/cobra"
)

// applyEnv fills c from .env and CROSSECO_* variables for every setting whose
// flag was not given on the command line.
func applyEnv(cmd *cobra.Command, c *config.Config) error {
	env := config.New()
	if err := env.LoadEnv(); err != nil {
		return err
	}

	fl := cmd.Flags()
	if !fl.Changed(flags.FlagInput) {
		c.Input.Dir = env.Input.Dir
	}
	if !fl.Changed(flags.FlagOutput) {
		c.Output.Dir = env.Output.Dir
	}
	if !fl.Changed(flags.FlagEcosystems) {
		c.Input.Ecosystems = env.Input.Ecosystems
	}
	if !fl.Changed(flags.FlagConcurrency) {
		c.Runtime.Concurrency = env.Runtime.Concurrency
	}
	if !fl.Changed(flags.FlagToken) && env.Enrich.Token != "" {
		c.Enrich.Token = env.Enrich.Token
	}
	return nil
}
