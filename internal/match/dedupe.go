package match

import (
	"slices"

	"crosseco/internal/normalize"
)

// KeySet is a set of normalized keys.
type KeySet map[normalize.Key]struct{}

// KeysBySize is the union of row keys of all results of each subset size.
type KeysBySize map[int]KeySet

// CollectKeys computes, for every subset size, the union of keys over all
// results of that size. Sizes are visited from largest to smallest.
func CollectKeys(results []*Result) KeysBySize {
	bySize := make(map[int][]*Result)
	for _, r := range results {
		if r == nil {
			continue
		}
		bySize[r.Subset.Size()] = append(bySize[r.Subset.Size()], r)
	}

	out := make(KeysBySize, len(bySize))
	for _, size := range descending(bySize) {
		set := make(KeySet)
		for _, r := range bySize[size] {
			for _, row := range r.Rows {
				set[row.Key] = struct{}{}
			}
		}
		out[size] = set
	}
	return out
}

// Blocked returns the union of keys matched at any size larger than size.
func (k KeysBySize) Blocked(size int) KeySet {
	blocked := make(KeySet)
	for s, keys := range k {
		if s <= size {
			continue
		}
		for key := range keys {
			blocked[key] = struct{}{}
		}
	}
	return blocked
}

// Filter removes the rows of r whose key is blocked, keeping row order, and
// returns how many rows were removed.
func Filter(r *Result, blocked KeySet) int {
	if r == nil || len(blocked) == 0 {
		return 0
	}
	before := len(r.Rows)
	kept := r.Rows[:0]
	for _, row := range r.Rows {
		if _, ok := blocked[row.Key]; ok {
			continue
		}
		kept = append(kept, row)
	}
	clear(r.Rows[len(kept):])
	r.Rows = kept
	return before - len(kept)
}

// DedupeReport describes what a cross-size deduplication pass changed.
type DedupeReport struct {
	// Removed maps a subset name to the rows removed from its result.
	Removed map[string]int
	// Emptied lists the subsets left without rows, in processing order.
	Emptied []string
}

// Total returns the number of removed rows.
func (d DedupeReport) Total() int {
	n := 0
	for _, v := range d.Removed {
		n += v
	}
	return n
}

// Dedupe makes every key survive only in the results of the largest subset
// size it matched at. Results are filtered in place from the smallest size to
// the largest. Every result must be materialized before calling Dedupe.
// Running it again over its own output changes nothing.
func Dedupe(results []*Result) DedupeReport {
	keys := CollectKeys(results)
	report := DedupeReport{Removed: make(map[string]int)}

	sizes := make(map[int][]*Result)
	for _, r := range results {
		if r != nil {
			sizes[r.Subset.Size()] = append(sizes[r.Subset.Size()], r)
		}
	}
	for _, size := range ascending(sizes) {
		blocked := keys.Blocked(size)
		for _, r := range sizes[size] {
			if n := Filter(r, blocked); n > 0 {
				report.Removed[r.Subset.Name()] = n
				if r.Empty() {
					report.Emptied = append(report.Emptied, r.Subset.Name())
				}
			}
		}
	}
	return report
}

func ascending[V any](m map[int]V) []int {
	sizes := make([]int, 0, len(m))
	for s := range m {
		sizes = append(sizes, s)
	}
	slices.Sort(sizes)
	return sizes
}

func descending[V any](m map[int]V) []int {
	sizes := ascending(m)
	slices.Reverse(sizes)
	return sizes
}
