// Package ecosystem loads per-ecosystem package tables.
//
// A table is a CSV file named after its ecosystem (for example NPM.csv) with
// the header:
//
//	ID,Platform,Name,Homepage URL,Repository URL
//
// Records are kept in file order. Empty strings are the only representation of
// a missing URL; explicit "not available" sentinels are mapped to "" on load.
package ecosystem

import (
	"errors"
	"strings"
)

// Column names of the input contract.
const (
	ColumnID            = "ID"
	ColumnPlatform      = "Platform"
	ColumnName          = "Name"
	ColumnHomepageURL   = "Homepage URL"
	ColumnRepositoryURL = "Repository URL"
)

// Header is the canonical input header.
var Header = []string{ColumnID, ColumnPlatform, ColumnName, ColumnHomepageURL, ColumnRepositoryURL}

var (
	// ErrMissingInput is returned when an ecosystem's table file does not exist.
	ErrMissingInput = errors.New("input table not found")
	// ErrBadHeader is returned when a table lacks a required column.
	ErrBadHeader = errors.New("input header missing required column")
)

// Record is one package row. It is immutable once loaded.
type Record struct {
	ID            int64
	Ecosystem     string
	Name          string
	HomepageURL   string
	RepositoryURL string
}

// Table holds one ecosystem's records in input order.
type Table struct {
	Name    string
	Records []Record

	// Skipped counts malformed rows that were dropped during loading.
	Skipped int
}

// Len returns the number of loaded records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

var missingSentinels = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
	"na":   {},
}

// cleanField trims v and maps "not available" sentinels to "".
func cleanField(v string) string {
	v = strings.TrimSpace(v)
	if _, ok := missingSentinels[strings.ToLower(v)]; ok {
		return ""
	}
	return v
}
