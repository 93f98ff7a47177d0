package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"crosseco/internal/combo"
	"crosseco/internal/config"
	"crosseco/internal/ecosystem"
	"crosseco/internal/index"
	"crosseco/internal/match"
	"crosseco/internal/output"
	"crosseco/internal/stats"

	log "github.com/sirupsen/logrus"
)

// Exit code contract:
// 0 = run completed and every artifact was written
// 1 = fatal error (bad input set, I/O failure or cancellation)
const (
	ExitOK    = 0
	ExitFatal = 1
)

func exitCodeForRun(err error) int {
	if err != nil {
		return ExitFatal
	}
	return ExitOK
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		cs, err := output.NewConsoleSink(nil, cfg.Output.ConsoleFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(cs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Event Sink
	if cfg.Output.Events != "" {
		es, err := output.NewEventFileSink(cfg.Output.Events, cfg.Output.EventsFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Summary artifacts
	ss, err := output.NewSummarySink(cfg.Output.Dir)
	if err != nil {
		outMgr.Close()
		return nil, err
	}
	rs, err := output.NewReportSink(cfg.Output.Dir)
	if err != nil {
		outMgr.Close()
		return nil, err
	}
	for _, s := range []output.Sink{ss, rs} {
		if err := outMgr.AddSink(s); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// Engine matches and prunes combination results under one results root.
type Engine struct {
	// Root is the results directory.
	Root string

	out   *output.Manager
	sched *Scheduler
}

// NewEngine returns an engine writing under root. out may be nil.
func NewEngine(root string, out *output.Manager, concurrency int) (*Engine, error) {
	sched, err := NewScheduler(concurrency)
	if err != nil {
		return nil, err
	}
	return &Engine{Root: root, out: out, sched: sched}, nil
}

// emit forwards an event to the output sinks. Events are best effort.
func (e *Engine) emit(ev output.Event) {
	if e.out == nil {
		return
	}
	if err := e.out.Write(ev); err != nil {
		log.WithError(err).Debugf("emit %s", ev.Type)
	}
}

// MatchAll matches every subset of groups against indices on the worker pool
// and persists each non-empty result. A stale file left by an earlier run for
// a subset that no longer matches is removed. Results are returned in
// generator order; the call returns once every worker has finished.
func (e *Engine) MatchAll(ctx context.Context, groups combo.Groups, indices index.Set) ([]*match.Result, error) {
	subsets := groups.All()
	results := make([]*match.Result, len(subsets))

	err := e.sched.Each(ctx, len(subsets), func(_ context.Context, i int) error {
		subset := subsets[i]
		res, err := match.Match(subset, indices)
		if err != nil {
			return err
		}
		results[i] = res

		ev := output.Event{Type: output.EventCombinationMatched, Combination: subset.Label(), Rows: res.Len()}
		if res.Empty() {
			if err := output.RemoveCombination(e.Root, subset); err != nil {
				return err
			}
		} else {
			path, err := output.WriteCombination(e.Root, res)
			if err != nil {
				return err
			}
			ev.Path = path
		}
		log.WithField("combination", subset.Name()).Debugf("matched %d packages", res.Len())
		e.emit(ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("match combinations: %w", err)
	}
	return results, nil
}

// LoadAll reads the persisted result of every subset of groups from the
// results root. Subsets without a file come back empty.
func (e *Engine) LoadAll(ctx context.Context, groups combo.Groups) ([]*match.Result, error) {
	subsets := groups.All()
	results := make([]*match.Result, len(subsets))

	err := e.sched.Each(ctx, len(subsets), func(_ context.Context, i int) error {
		res, ok, err := output.ReadCombination(e.Root, subsets[i])
		if err != nil {
			return err
		}
		if !ok {
			res = &match.Result{Subset: subsets[i]}
		}
		results[i] = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read combinations: %w", err)
	}
	return results, nil
}

// Prune is the cross-count deduplication pass. It must only be called once
// every result of every size is materialized. Each key survives only in the
// results of the largest size it matched at; a pruned result's file is
// rewritten, or removed when no rows are left. Results are modified in place.
func (e *Engine) Prune(ctx context.Context, results []*match.Result) (match.DedupeReport, error) {
	report := match.DedupeReport{Removed: make(map[string]int)}

	keys := match.CollectKeys(results)
	blocked := make(map[int]match.KeySet, len(keys))
	for size := range keys {
		blocked[size] = keys.Blocked(size)
	}

	var mu sync.Mutex
	err := e.sched.Each(ctx, len(results), func(_ context.Context, i int) error {
		r := results[i]
		if r == nil || r.Empty() {
			return nil
		}
		removed := match.Filter(r, blocked[r.Subset.Size()])
		if removed == 0 {
			return nil
		}

		ev := output.Event{Type: output.EventCombinationPruned, Combination: r.Subset.Label(), Removed: removed, Rows: r.Len()}
		if r.Empty() {
			if err := output.RemoveCombination(e.Root, r.Subset); err != nil {
				return err
			}
			ev.Deleted = true
		} else {
			path, err := output.WriteCombination(e.Root, r)
			if err != nil {
				return err
			}
			ev.Path = path
		}

		mu.Lock()
		report.Removed[r.Subset.Name()] = removed
		if r.Empty() {
			report.Emptied = append(report.Emptied, r.Subset.Name())
		}
		mu.Unlock()

		log.WithField("combination", r.Subset.Name()).Debugf("removed %d packages matched at a larger size", removed)
		e.emit(ev)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("prune combinations: %w", err)
	}
	slices.Sort(report.Emptied)

	e.emit(output.Event{Type: output.EventDedupeFinished, Removed: report.Total()})
	return report, nil
}

// DedupeDir runs the cross-count pass over the results already stored under
// root for the subsets of groups. Row keys are recomputed from each file's
// first ecosystem.
func DedupeDir(ctx context.Context, root string, groups combo.Groups, concurrency int) ([]*match.Result, match.DedupeReport, error) {
	e, err := NewEngine(root, nil, concurrency)
	if err != nil {
		return nil, match.DedupeReport{}, err
	}
	results, err := e.LoadAll(ctx, groups)
	if err != nil {
		return nil, match.DedupeReport{}, err
	}
	report, err := e.Prune(ctx, results)
	return results, report, err
}

func loadTables(cfg *config.Config) ([]*ecosystem.Table, error) {
	tables, err := ecosystem.LoadAll(cfg.Input.Dir, cfg.Input.Ecosystems)
	if err != nil {
		return nil, err
	}
	if len(tables) < 2 {
		return tables, fmt.Errorf("need at least two ecosystems with input under %s, found %d", cfg.Input.Dir, len(tables))
	}
	return tables, nil
}

// Pipeline loads the input tables, matches every combination, prunes across
// sizes and returns the statistics of what survived.
func Pipeline(ctx context.Context, cfg *config.Config, out *output.Manager) (*stats.Report, error) {
	tables, err := loadTables(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", cfg.Output.Dir, err)
	}

	e, err := NewEngine(cfg.Output.Dir, out, cfg.Runtime.Concurrency)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		e.emit(output.Event{Type: output.EventTableLoaded, Ecosystem: t.Name, Packages: t.Len(), Skipped: t.Skipped})
	}

	indices := index.BuildAll(tables)
	for _, name := range index.Names(tables) {
		idx := indices[name]
		log.WithField("ecosystem", name).Infof("indexed %d repositories (%d duplicates)", idx.Len(), idx.Duplicates())
	}

	groups := combo.Generate(index.Names(tables))
	e.emit(output.Event{Type: output.EventRunStarted, Ecosystems: len(tables), Combinations: groups.Count()})

	results, err := e.MatchAll(ctx, groups, indices)
	if err != nil {
		return nil, err
	}
	if _, err := e.Prune(ctx, results); err != nil {
		return nil, err
	}
	return stats.Compute(tables, indices, results), nil
}

// Run executes the full pipeline for cfg and writes the summary artifacts.
func Run(ctx context.Context, cfg *config.Config) int {
	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		log.Errorf("create output sinks: %v", err)
		return ExitFatal
	}

	err = finish(outMgr, func() (*stats.Report, error) {
		return Pipeline(ctx, cfg, outMgr)
	})
	if err != nil {
		log.Error(err)
	}
	return exitCodeForRun(err)
}

// Dedupe re-runs the cross-count pass over cfg.Output.Dir and regenerates the
// summary artifacts. Input statistics are included when the input tables can
// still be loaded.
func Dedupe(ctx context.Context, cfg *config.Config) int {
	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		log.Errorf("create output sinks: %v", err)
		return ExitFatal
	}

	err = finish(outMgr, func() (*stats.Report, error) {
		if _, err := os.Stat(cfg.Output.Dir); err != nil {
			return nil, fmt.Errorf("results directory: %w", err)
		}

		tables, err := loadTables(cfg)
		if err != nil {
			log.Warnf("input statistics unavailable: %v", err)
			tables = nil
		}
		names := cfg.Input.Ecosystems

		e, err := NewEngine(cfg.Output.Dir, outMgr, cfg.Runtime.Concurrency)
		if err != nil {
			return nil, err
		}
		groups := combo.Generate(names)
		e.emit(output.Event{Type: output.EventRunStarted, Ecosystems: len(names), Combinations: groups.Count()})

		results, err := e.LoadAll(ctx, groups)
		if err != nil {
			return nil, err
		}
		if _, err := e.Prune(ctx, results); err != nil {
			return nil, err
		}
		return stats.Compute(tables, index.BuildAll(tables), results), nil
	})
	if err != nil {
		log.Error(err)
	}
	return exitCodeForRun(err)
}

// finish runs produce, hands its report to the sinks, then closes them. Any
// failure along the way is returned.
func finish(outMgr *output.Manager, produce func() (*stats.Report, error)) error {
	report, err := produce()
	if err == nil {
		err = outMgr.Write(report)
	}
	_ = outMgr.Write(output.Event{Type: output.EventRunFinished, ExitCode: exitCodeForRun(err)})
	if closeErr := outMgr.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}
