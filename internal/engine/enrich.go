package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"crosseco/internal/combo"
	"crosseco/internal/config"
	"crosseco/internal/enrich"
	gh "crosseco/internal/github"

	log "github.com/sirupsen/logrus"
)

// EnrichedName is the default enrichment output under the results root.
const EnrichedName = "enriched.csv"

// EnrichDir looks up GitHub metadata for every key stored under root for the
// subsets of groups and writes the rows to out. It never modifies the
// combination files.
func EnrichDir(ctx context.Context, root string, groups combo.Groups, client *gh.Client, cfg config.Enrich, concurrency int, out string) ([]enrich.Repo, error) {
	e, err := NewEngine(root, nil, concurrency)
	if err != nil {
		return nil, err
	}
	results, err := e.LoadAll(ctx, groups)
	if err != nil {
		return nil, err
	}
	targets := enrich.Targets(results)
	log.Infof("enriching %d repositories", len(targets))

	budget := enrich.NewBudget(cfg.MaxRequests)
	en, err := enrich.New(client, budget, cfg.CacheSize, cfg.Concurrency)
	if err != nil {
		return nil, err
	}
	repos, err := en.Run(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	log.Infof("enrichment used %d GitHub requests", budget.Used())

	if err := enrich.WriteCSV(out, repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// Enrich runs EnrichDir for cfg and reports an exit code.
func Enrich(ctx context.Context, cfg *config.Config) int {
	if _, err := os.Stat(cfg.Output.Dir); err != nil {
		log.Errorf("results directory: %v", err)
		return ExitFatal
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Enrich.Timeout)
	defer cancel()

	token, source, err := gh.ResolveAuthToken(ctx, cfg.Enrich.Token)
	if err != nil {
		log.Errorf("resolve GitHub token: %v", err)
		return ExitFatal
	}
	if token == "" {
		log.Warn("no GitHub token found; using the unauthenticated rate limit")
	} else {
		log.Debugf("using GitHub token from %s", source)
	}

	client, err := gh.NewClient(ctx, token)
	if err != nil {
		log.Error(err)
		return ExitFatal
	}

	out := cfg.Enrich.Out
	if out == "" {
		out = filepath.Join(cfg.Output.Dir, EnrichedName)
	}
	repos, err := EnrichDir(ctx, cfg.Output.Dir, combo.Generate(cfg.Input.Ecosystems), client, cfg.Enrich, cfg.Runtime.Concurrency, out)
	if err != nil {
		log.Error(err)
		return ExitFatal
	}
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stdout, "Enriched %d repositories -> %s\n", len(repos), out)
	}
	return ExitOK
}
