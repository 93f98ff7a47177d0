// Package match finds packages that share a repository identity across a set of
// ecosystems and removes matches that are superseded by larger ecosystem sets.
package match

import (
	"crosseco/internal/combo"
	"crosseco/internal/ecosystem"
	"crosseco/internal/normalize"
)

// Member is one ecosystem's package inside a match row.
type Member struct {
	Ecosystem string
	ID        int64
	Name      string
	Homepage  string
	Repo      string
}

func memberOf(rec ecosystem.Record) Member {
	return Member{
		Ecosystem: rec.Ecosystem,
		ID:        rec.ID,
		Name:      rec.Name,
		Homepage:  rec.HomepageURL,
		Repo:      rec.RepositoryURL,
	}
}

// Row is one repository present in every ecosystem of a subset. Members are
// in subset order.
type Row struct {
	Key     normalize.Key
	Members []Member
}

// Primary returns the member of the subset's first ecosystem.
func (r Row) Primary() Member { return r.Members[0] }

// Result is the set of rows for one subset.
type Result struct {
	Subset combo.Subset
	Rows   []Row
}

// Len returns the number of rows.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty reports whether r has no rows.
func (r *Result) Empty() bool { return r.Len() == 0 }
