package match

import (
	"fmt"

	"crosseco/internal/combo"
	"crosseco/internal/index"
	"crosseco/internal/normalize"
)

// Match returns the rows whose key is indexed by every ecosystem in subset.
//
// Keys are taken from the primary ecosystem's index in its order, so row order
// follows the primary table. Rows are then deduplicated by the primary member's
// raw repository URL, keeping the first; rows without a repository URL (keyed
// through the homepage fallback) are never treated as duplicates of each other.
func Match(subset combo.Subset, indices index.Set) (*Result, error) {
	if subset.Size() < 2 {
		return nil, fmt.Errorf("match: subset %q needs at least two ecosystems", subset.Name())
	}
	lookups := make([]*index.Index, subset.Size())
	for i, name := range subset {
		idx, ok := indices[name]
		if !ok || idx == nil {
			return nil, fmt.Errorf("match: no index for ecosystem %q", name)
		}
		lookups[i] = idx
	}

	res := &Result{Subset: subset}
	for _, key := range lookups[0].Keys() {
		if row, ok := probe(key, lookups); ok {
			res.Rows = append(res.Rows, row)
		}
	}
	res.Rows = dedupeByPrimaryRepo(res.Rows)
	return res, nil
}

// probe builds the row for key, stopping at the first ecosystem that lacks it.
func probe(key normalize.Key, lookups []*index.Index) (Row, bool) {
	members := make([]Member, 0, len(lookups))
	for _, idx := range lookups {
		rec, ok := idx.Lookup(key)
		if !ok {
			return Row{}, false
		}
		members = append(members, memberOf(rec))
	}
	return Row{Key: key, Members: members}, true
}

func dedupeByPrimaryRepo(rows []Row) []Row {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		repo := row.Primary().Repo
		if repo != "" {
			if _, dup := seen[repo]; dup {
				continue
			}
			seen[repo] = struct{}{}
		}
		out = append(out, row)
	}
	return out
}
