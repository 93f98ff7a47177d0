package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEcosystems are the registries exported by the package crawlers.
var DefaultEcosystems = []string{"Crates", "Go", "Maven", "NPM", "PHP", "PyPI", "Ruby"}

// Environment variables read by LoadEnv. Flags override them.
const (
	EnvInputDir    = "CROSSECO_INPUT_DIR"
	EnvOutputDir   = "CROSSECO_OUTPUT_DIR"
	EnvEcosystems  = "CROSSECO_ECOSYSTEMS"
	EnvConcurrency = "CROSSECO_CONCURRENCY"
	EnvGitHubToken = "CROSSECO_GITHUB_TOKEN"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep the CLI
	// flags in internal/cli and the env names above in sync.
	Input   Input
	Output  Output
	Runtime Runtime
	Enrich  Enrich
}

type Input struct {
	// Dir holds one {Ecosystem}.csv per ecosystem (see --input).
	Dir string

	// Ecosystems to load (see --ecosystems). Values may be provided as
	// repeated flags and/or comma-separated lists. Sorted and deduplicated by
	// Validate.
	Ecosystems []string
}

type Output struct {
	// Dir is the results root (see --output).
	Dir string

	// Events writes a structured event log to this path (see --events).
	Events string

	// EventsFormat selects the format for --events (see --events-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the file extension.
	EventsFormat string

	// ConsoleFormat controls the console sink format (see --console-format).
	// Allowed values: text, ndjson.
	ConsoleFormat string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Concurrency bounds the matching and pruning workers (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// Verbose enables debug logging (see --verbose).
	Verbose bool

	// Quiet limits logging to errors (see --quiet).
	Quiet bool
}

type Enrich struct {
	// Token authenticates GitHub API calls (see --token).
	Token string

	// Out is the enriched CSV path; defaults to {Output.Dir}/enriched.csv (see --enrich-out).
	Out string

	// Concurrency bounds in-flight GitHub requests (see --enrich-concurrency).
	Concurrency int

	// CacheSize is the number of repository lookups kept in memory (see --cache-size).
	CacheSize int

	// MaxRequests caps API calls for one enrichment run; 0 means unlimited (see --max-requests).
	MaxRequests int

	// Timeout bounds the whole enrichment run (see --timeout).
	Timeout time.Duration
}

func New() *Config {
	return &Config{
		Input: Input{
			Dir:        "data/packages",
			Ecosystems: slices.Clone(DefaultEcosystems),
		},
		Output: Output{
			Dir:           "results",
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: runtime.GOMAXPROCS(0),
		},
		Enrich: Enrich{
			Concurrency: 4,
			CacheSize:   4096,
			Timeout:     30 * time.Minute,
		},
	}
}

// LoadEnv applies values from an optional .env file and the process
// environment. Call it before flags are parsed so flags win.
func (c *Config) LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv(EnvInputDir)); v != "" {
		c.Input.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		c.Output.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEcosystems)); v != "" {
		c.Input.Ecosystems = splitCommaList([]string{v})
	}
	if v := strings.TrimSpace(os.Getenv(EnvConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvConcurrency, v, err)
		}
		c.Runtime.Concurrency = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvGitHubToken)); v != "" {
		c.Enrich.Token = v
	}
	return nil
}

func (c *Config) Validate() error {
	c.Input.Dir = strings.TrimSpace(c.Input.Dir)
	if c.Input.Dir == "" {
		return errors.New("--input must not be empty")
	}
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	if c.Output.Dir == "" {
		return errors.New("--output must not be empty")
	}

	// Normalize comma-delimited list inputs.
	ecos := splitCommaList(c.Input.Ecosystems)
	for _, e := range ecos {
		if strings.ContainsAny(e, `_/\`) {
			return fmt.Errorf("invalid ecosystem name %q: must not contain '_' or path separators", e)
		}
	}
	slices.Sort(ecos)
	c.Input.Ecosystems = slices.Compact(ecos)
	if len(c.Input.Ecosystems) < 2 {
		return errors.New("--ecosystems must name at least two ecosystems")
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, ndjson)", c.Output.ConsoleFormat)
	}

	if c.Output.Events != "" {
		c.Output.EventsFormat = normalizeEnumValue(c.Output.EventsFormat)
		if c.Output.EventsFormat != "" && c.Output.EventsFormat != "json" && c.Output.EventsFormat != "ndjson" {
			return fmt.Errorf("unsupported --events-format: %s (must be one of: json, ndjson)", c.Output.EventsFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Verbose && c.Runtime.Quiet {
		return errors.New("--verbose and --quiet are mutually exclusive")
	}

	return nil
}

// ValidateEnrich checks the settings used only by the enrich command.
func (c *Config) ValidateEnrich() error {
	if c.Enrich.Concurrency <= 0 {
		return errors.New("--enrich-concurrency must be >= 1")
	}
	if c.Enrich.CacheSize <= 0 {
		return errors.New("--cache-size must be >= 1")
	}
	if c.Enrich.MaxRequests < 0 {
		return errors.New("--max-requests must be >= 0")
	}
	if c.Enrich.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}
	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
