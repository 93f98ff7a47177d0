// Package enrich looks up GitHub metadata for the repositories that survived
// cross-ecosystem matching.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "crosseco/internal/github"
	"crosseco/internal/match"
	"crosseco/internal/normalize"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Metadata is what GitHub reports about one repository.
type Metadata struct {
	// Found is false when GitHub answered 404 (deleted or private).
	Found    bool
	FullName string
	Stars    int
	Forks    int
	Archived bool
	Fork     bool
}

// Target is a surviving key and the combinations it survived in.
type Target struct {
	Key          normalize.Key
	Combinations []string
}

// Repo is one enriched output row.
type Repo struct {
	Target
	Metadata
	// Err is set when the lookup failed; Metadata is then empty.
	Err string
}

// Targets lists the distinct keys of results in first-seen order.
func Targets(results []*match.Result) []Target {
	var out []Target
	pos := make(map[normalize.Key]int)
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, row := range r.Rows {
			i, ok := pos[row.Key]
			if !ok {
				i = len(out)
				pos[row.Key] = i
				out = append(out, Target{Key: row.Key})
			}
			out[i].Combinations = append(out[i].Combinations, r.Subset.Label())
		}
	}
	return out
}

// Enricher resolves keys to Metadata. Concurrent lookups of one key share a
// single request and answers are kept in an LRU cache.
type Enricher struct {
	client      *gh.Client
	budget      *Budget
	cache       *lru.Cache[normalize.Key, Metadata]
	group       singleflight.Group
	concurrency int
}

func New(client *gh.Client, budget *Budget, cacheSize, concurrency int) (*Enricher, error) {
	if client == nil {
		return nil, errors.New("github client is nil")
	}
	if budget == nil {
		return nil, errors.New("request budget is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	cache, err := lru.New[normalize.Key, Metadata](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Enricher{client: client, budget: budget, cache: cache, concurrency: concurrency}, nil
}

// Lookup returns the metadata of the repository behind key.
func (e *Enricher) Lookup(ctx context.Context, key normalize.Key) (Metadata, error) {
	if md, ok := e.cache.Get(key); ok {
		return md, nil
	}
	owner, name, ok := key.OwnerRepo()
	if !ok {
		return Metadata{}, fmt.Errorf("not a repository key: %q", key)
	}

	v, err, _ := e.group.Do(string(key), func() (any, error) {
		if md, ok := e.cache.Get(key); ok {
			return md, nil
		}
		if err := e.budget.Acquire(ctx); err != nil {
			return Metadata{}, err
		}
		repo, resp, err := e.client.Repository(ctx, owner, name)
		e.budget.Observe(resp, err)
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			md := Metadata{}
			e.cache.Add(key, md)
			return md, nil
		}
		if err != nil {
			return Metadata{}, err
		}
		md := Metadata{
			Found:    true,
			FullName: repo.GetFullName(),
			Stars:    repo.GetStargazersCount(),
			Forks:    repo.GetForksCount(),
			Archived: repo.GetArchived(),
			Fork:     repo.GetFork(),
		}
		e.cache.Add(key, md)
		return md, nil
	})
	if err != nil {
		return Metadata{}, err
	}
	return v.(Metadata), nil
}

// Run looks up every target with bounded concurrency. A failed lookup is
// recorded on its row; only cancellation aborts the run.
func (e *Enricher) Run(ctx context.Context, targets []Target) ([]Repo, error) {
	out := make([]Repo, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, t := range targets {
		g.Go(func() error {
			out[i].Target = t
			md, err := e.Lookup(gctx, t.Key)
			switch {
			case err == nil:
				out[i].Metadata = md
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				log.WithField("repository", t.Key).WithError(err).Warn("lookup failed")
				out[i].Err = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
