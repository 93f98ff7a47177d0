// Package index builds per-ecosystem lookup indices keyed by normalized
// repository identity.
package index

import (
	"crosseco/internal/ecosystem"
	"crosseco/internal/normalize"
)

// Index maps normalized keys to the first record in table order that produced
// them. It is read-only after Build and safe for concurrent readers.
type Index struct {
	Ecosystem string

	// ValidRows counts records that produced a key, including those discarded
	// because an earlier record already claimed the key.
	ValidRows int

	byKey map[normalize.Key]ecosystem.Record
	keys  []normalize.Key
}

// Build indexes t. Records without a key are skipped; when several records
// share a key the earliest one wins.
func Build(t *ecosystem.Table) *Index {
	idx := &Index{
		Ecosystem: t.Name,
		byKey:     make(map[normalize.Key]ecosystem.Record, len(t.Records)),
	}
	for _, rec := range t.Records {
		k := normalize.WithFallback(rec.RepositoryURL, rec.HomepageURL)
		if k.IsZero() {
			continue
		}
		idx.ValidRows++
		if _, seen := idx.byKey[k]; seen {
			continue
		}
		idx.byKey[k] = rec
		idx.keys = append(idx.keys, k)
	}
	return idx
}

// Lookup returns the representative record for k.
func (idx *Index) Lookup(k normalize.Key) (ecosystem.Record, bool) {
	rec, ok := idx.byKey[k]
	return rec, ok
}

// Has reports whether k is indexed.
func (idx *Index) Has(k normalize.Key) bool {
	_, ok := idx.byKey[k]
	return ok
}

// Keys returns the indexed keys in first-seen table order. Callers must not
// modify the returned slice.
func (idx *Index) Keys() []normalize.Key {
	return idx.keys
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Duplicates returns how many valid records lost to an earlier record with the
// same key.
func (idx *Index) Duplicates() int {
	return idx.ValidRows - len(idx.keys)
}

// Set holds one index per ecosystem.
type Set map[string]*Index

// BuildAll indexes every table.
func BuildAll(tables []*ecosystem.Table) Set {
	s := make(Set, len(tables))
	for _, t := range tables {
		s[t.Name] = Build(t)
	}
	return s
}

// Names returns the indexed ecosystem names in the order of tables.
func Names(tables []*ecosystem.Table) []string {
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names
}

// UnionKeys returns the number of distinct keys across all indices.
func (s Set) UnionKeys() int {
	seen := make(map[normalize.Key]struct{})
	for _, idx := range s {
		for _, k := range idx.keys {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}
