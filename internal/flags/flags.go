package flags

// Package flags defines canonical CLI flag names shared across the CLI
// commands. IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Input.Dir, flags.FlagInput, "", "...")
//	arg := "--" + flags.FlagInput
const (
	// Input
	FlagInput      = "input"
	FlagEcosystems = "ecosystems"

	// Output
	FlagOutput        = "output"
	FlagEvents        = "events"
	FlagEventsFormat  = "events-format"
	FlagConsoleFormat = "console-format"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagVerbose     = "verbose"
	FlagQuiet       = "quiet"

	// Enrich
	FlagToken             = "token"
	FlagEnrichOut         = "enrich-out"
	FlagEnrichConcurrency = "enrich-concurrency"
	FlagCacheSize         = "cache-size"
	FlagMaxRequests       = "max-requests"
	FlagTimeout           = "timeout"
)
