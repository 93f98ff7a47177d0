package ecosystem

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const utf8BOM = "\ufeff"

// Path returns the conventional location of an ecosystem table inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".csv")
}

// Load reads the table for ecosystem name from dir.
//
// A missing file yields an error wrapping ErrMissingInput; a header without one
// of the required columns yields an error wrapping ErrBadHeader. Malformed rows
// are skipped and counted in Table.Skipped.
func Load(dir, name string) (*Table, error) {
	path := Path(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrMissingInput)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read parses a table from r. Columns are located by header name, so column
// order and extra columns do not matter.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table: %w", ErrBadHeader)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	t := &Table{Name: name}
	line := 1
	for {
		row, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.WithFields(log.Fields{"ecosystem": name, "line": line}).Debugf("skipping unparsable row: %v", perr.Err)
				t.Skipped++
				continue
			}
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		rec, ok := cols.record(row, name)
		if !ok {
			log.WithFields(log.Fields{"ecosystem": name, "line": line}).Debug("skipping malformed row")
			t.Skipped++
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

type columns struct {
	id, name, homepage, repo int
	width                    int
}

func locateColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	lookup := func(col string) int {
		i, ok := pos[col]
		if !ok {
			missing = append(missing, col)
		}
		return i
	}
	c := columns{
		id:       lookup(ColumnID),
		name:     lookup(ColumnName),
		homepage: lookup(ColumnHomepageURL),
		repo:     lookup(ColumnRepositoryURL),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrBadHeader, strings.Join(missing, ", "))
	}
	c.width = max(c.id, c.name, c.homepage, c.repo) + 1
	return c, nil
}

func (c columns) record(row []string, ecosystem string) (Record, bool) {
	if len(row) < c.width {
		return Record{}, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[c.id]), 10, 64)
	if err != nil {
		return Record{}, false
	}
	return Record{
		ID:            id,
		Ecosystem:     ecosystem,
		Name:          strings.TrimSpace(row[c.name]),
		HomepageURL:   cleanField(row[c.homepage]),
		RepositoryURL: cleanField(row[c.repo]),
	}, true
}

// LoadAll loads the named ecosystems from dir in the given order.
//
// Missing or unusable tables are logged and left out; the returned slice only
// contains tables that loaded. Other I/O failures are returned.
func LoadAll(dir string, names []string) ([]*Table, error) {
	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := Load(dir, name)
		switch {
		case errors.Is(err, ErrMissingInput), errors.Is(err, ErrBadHeader):
			log.WithField("ecosystem", name).Warnf("skipping ecosystem: %v", err)
			continue
		case err != nil:
			return nil, err
		}
		if t.Skipped > 0 {
			log.WithField("ecosystem", name).Warnf("skipped %d malformed rows", t.Skipped)
		}
		log.WithField("ecosystem", name).Infof("loaded %d packages", t.Len())
		tables = append(tables, t)
	}
	return tables, nil
}
