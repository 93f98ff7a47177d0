// Package combo enumerates the ecosystem subsets that are checked for shared
// repositories.
package combo

import (
	"fmt"
	"slices"
	"strings"
)

// Subset is an ordered list of ecosystems. The first element is the subset's
// primary ecosystem: matching iterates its index and row deduplication uses its
// repository URL.
type Subset []string

// Size returns the number of ecosystems in s.
func (s Subset) Size() int { return len(s) }

// Primary returns the first ecosystem.
func (s Subset) Primary() string { return s[0] }

// Name joins the ecosystems with "_"; it is used as the output file stem.
func (s Subset) Name() string { return strings.Join(s, "_") }

// Label joins the ecosystems with " + " for human-facing output.
func (s Subset) Label() string { return strings.Join(s, " + ") }

// Contains reports whether ecosystem is part of s.
func (s Subset) Contains(ecosystem string) bool { return slices.Contains(s, ecosystem) }

// Dir returns the bucket directory name for subsets of size n.
func Dir(n int) string { return fmt.Sprintf("%d_ecosystems", n) }

// File returns the output path of s relative to the results root.
func (s Subset) File() string { return Dir(s.Size()) + "/" + s.Name() + ".csv" }

// Groups holds subsets bucketed by size.
type Groups map[int][]Subset

// Generate returns every subset of size 2..len(ecosystems), grouped by size.
// The input is sorted (on a copy) so that subset order and the primary role
// are deterministic; within a size subsets are in lexicographic order.
func Generate(ecosystems []string) Groups {
	names := slices.Clone(ecosystems)
	slices.Sort(names)
	names = slices.Compact(names)

	groups := make(Groups)
	for size := 2; size <= len(names); size++ {
		groups[size] = choose(names, size)
	}
	return groups
}

func choose(names []string, k int) []Subset {
	var out []Subset
	picked := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			s := make(Subset, k)
			for i, p := range picked {
				s[i] = names[p]
			}
			out = append(out, s)
			return
		}
		for i := start; i <= len(names)-(k-depth); i++ {
			picked[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return out
}

// Sizes returns the subset sizes present in g, ascending.
func (g Groups) Sizes() []int {
	sizes := make([]int, 0, len(g))
	for n := range g {
		sizes = append(sizes, n)
	}
	slices.Sort(sizes)
	return sizes
}

// All flattens g, smallest subsets first.
func (g Groups) All() []Subset {
	var out []Subset
	for _, n := range g.Sizes() {
		out = append(out, g[n]...)
	}
	return out
}

// Count returns the total number of subsets.
func (g Groups) Count() int {
	n := 0
	for _, subsets := range g {
		n += len(subsets)
	}
	return n
}
