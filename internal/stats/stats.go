// Package stats aggregates input totals, surviving match counts and
// per-ecosystem participation for a finished run.
package stats

import (
	"cmp"
	"math"
	"slices"

	"crosseco/internal/ecosystem"
	"crosseco/internal/index"
	"crosseco/internal/match"
	"crosseco/internal/normalize"
)

// SummaryRow describes one surviving combination output.
type SummaryRow struct {
	EcosystemCount int
	Ecosystems     []string
	PackageCount   int
	// OutputFile is relative to the results root.
	OutputFile string
}

// EcosystemStats is the participation of one ecosystem.
type EcosystemStats struct {
	Ecosystem string
	// Packages is the number of rows loaded.
	Packages int
	// Skipped is the number of malformed rows dropped on load.
	Skipped int
	// ValidRows is the number of rows that produced a key.
	ValidRows int
	// IndexedKeys is the number of distinct keys.
	IndexedKeys int
	// CrossEcosystem is the number of distinct keys of this ecosystem present
	// in any surviving combination.
	CrossEcosystem int
	// Percentage is CrossEcosystem relative to IndexedKeys.
	Percentage float64
}

// CountStats aggregates PackageCount over the combinations of one size.
type CountStats struct {
	EcosystemCount int
	Total          int
	Mean           float64
	Max            int
	Min            int
	Combinations   int
}

// Report is everything written to the summary artifacts.
type Report struct {
	// TotalPackages is the number of rows loaded across all ecosystems.
	TotalPackages int
	// ValidKeys is the number of distinct keys across all ecosystems.
	ValidKeys int
	// CrossEcosystem is the sum of PackageCount over Summary.
	CrossEcosystem int
	// Percentage is CrossEcosystem relative to ValidKeys.
	Percentage float64

	Ecosystems []EcosystemStats
	Summary    []SummaryRow
	ByCount    []CountStats
}

// Compute builds the report. It must be called after cross-size
// deduplication; empty results are ignored.
func Compute(tables []*ecosystem.Table, indices index.Set, results []*match.Result) *Report {
	r := &Report{
		ValidKeys: indices.UnionKeys(),
		Summary:   Summarize(results),
	}
	for _, t := range tables {
		r.TotalPackages += t.Len()
	}
	for _, row := range r.Summary {
		r.CrossEcosystem += row.PackageCount
	}
	r.Percentage = percent(r.CrossEcosystem, r.ValidKeys)
	r.Ecosystems = perEcosystem(tables, indices, results)
	r.ByCount = ByCount(r.Summary)
	return r
}

// Summarize returns one row per non-empty result, ordered by ecosystem count
// and then by the order of results.
func Summarize(results []*match.Result) []SummaryRow {
	var rows []SummaryRow
	for _, res := range results {
		if res.Empty() {
			continue
		}
		rows = append(rows, SummaryRow{
			EcosystemCount: res.Subset.Size(),
			Ecosystems:     slices.Clone(res.Subset),
			PackageCount:   res.Len(),
			OutputFile:     res.Subset.File(),
		})
	}
	slices.SortStableFunc(rows, func(a, b SummaryRow) int {
		return cmp.Compare(a.EcosystemCount, b.EcosystemCount)
	})
	return rows
}

func perEcosystem(tables []*ecosystem.Table, indices index.Set, results []*match.Result) []EcosystemStats {
	out := make([]EcosystemStats, 0, len(tables))
	for _, t := range tables {
		es := EcosystemStats{
			Ecosystem: t.Name,
			Packages:  t.Len(),
			Skipped:   t.Skipped,
		}
		if idx := indices[t.Name]; idx != nil {
			es.ValidRows = idx.ValidRows
			es.IndexedKeys = idx.Len()
		}

		cross := make(map[normalize.Key]struct{})
		for _, res := range results {
			if !res.Subset.Contains(t.Name) {
				continue
			}
			for _, row := range res.Rows {
				cross[row.Key] = struct{}{}
			}
		}
		es.CrossEcosystem = len(cross)
		es.Percentage = percent(es.CrossEcosystem, es.IndexedKeys)
		out = append(out, es)
	}

	slices.SortStableFunc(out, func(a, b EcosystemStats) int {
		if c := cmp.Compare(b.CrossEcosystem, a.CrossEcosystem); c != 0 {
			return c
		}
		return cmp.Compare(a.Ecosystem, b.Ecosystem)
	})
	return out
}

// ByCount groups summary rows by ecosystem count, ascending.
func ByCount(rows []SummaryRow) []CountStats {
	groups := make(map[int]*CountStats)
	var order []int
	for _, row := range rows {
		g, ok := groups[row.EcosystemCount]
		if !ok {
			g = &CountStats{EcosystemCount: row.EcosystemCount, Min: row.PackageCount, Max: row.PackageCount}
			groups[row.EcosystemCount] = g
			order = append(order, row.EcosystemCount)
		}
		g.Total += row.PackageCount
		g.Combinations++
		g.Max = max(g.Max, row.PackageCount)
		g.Min = min(g.Min, row.PackageCount)
	}
	slices.Sort(order)

	out := make([]CountStats, 0, len(order))
	for _, n := range order {
		g := groups[n]
		g.Mean = round2(float64(g.Total) / float64(g.Combinations))
		out = append(out, *g)
	}
	return out
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
