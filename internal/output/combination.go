package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"crosseco/internal/combo"
	"crosseco/internal/match"
	"crosseco/internal/normalize"
)

// Per-ecosystem column suffixes of a combination file.
var memberColumns = []string{"ID", "Name", "Homepage", "Repo"}

// CombinationHeader returns the header of subset's output file: the columns
// {E}_ID, {E}_Name, {E}_Homepage, {E}_Repo repeated per ecosystem in subset order.
func CombinationHeader(subset combo.Subset) []string {
	header := make([]string, 0, len(memberColumns)*subset.Size())
	for _, eco := range subset {
		for _, col := range memberColumns {
			header = append(header, eco+"_"+col)
		}
	}
	return header
}

// CombinationPath returns where subset's output lives under root.
func CombinationPath(root string, subset combo.Subset) string {
	return filepath.Join(root, filepath.FromSlash(subset.File()))
}

// WriteCombination writes r to its file under root, replacing any previous
// content, and returns the path. The file is written to a temporary name and
// renamed so readers never observe a partial file.
func WriteCombination(root string, r *match.Result) (string, error) {
	path := CombinationPath(root, r.Subset)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, fmt.Errorf("create output directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+r.Subset.Name()+"-*.csv")
	if err != nil {
		return path, fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := encodeCombination(tmp, r); err != nil {
		_ = tmp.Close()
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return path, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return path, fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}

func encodeCombination(w io.Writer, r *match.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CombinationHeader(r.Subset)); err != nil {
		return err
	}
	record := make([]string, 0, len(memberColumns)*r.Subset.Size())
	for _, row := range r.Rows {
		record = record[:0]
		for _, m := range row.Members {
			record = append(record, strconv.FormatInt(m.ID, 10), m.Name, m.Homepage, m.Repo)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RemoveCombination deletes subset's file under root. A file that does not
// exist is not an error.
func RemoveCombination(root string, subset combo.Subset) error {
	path := CombinationPath(root, subset)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// ReadCombination loads subset's file from root. Row keys are recomputed from
// the primary ecosystem's repository URL with homepage fallback. ok is false
// when the file does not exist.
func ReadCombination(root string, subset combo.Subset) (res *match.Result, ok bool, err error) {
	path := CombinationPath(root, subset)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err = decodeCombination(f, subset)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return res, true, nil
}

func decodeCombination(r io.Reader, subset combo.Subset) (*match.Result, error) {
	cr := csv.NewReader(r)
	want := CombinationHeader(subset)
	cr.FieldsPerRecord = len(want)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range want {
		if header[i] != want[i] {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", header[i], i, want[i])
		}
	}

	res := &match.Result{Subset: subset}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := match.Row{Members: make([]match.Member, subset.Size())}
		for i, eco := range subset {
			base := i * len(memberColumns)
			id, err := strconv.ParseInt(rec[base], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s_ID %q: %w", eco, rec[base], err)
			}
			row.Members[i] = match.Member{
				Ecosystem: eco,
				ID:        id,
				Name:      rec[base+1],
				Homepage:  rec[base+2],
				Repo:      rec[base+3],
			}
		}
		p := row.Primary()
		row.Key = normalize.WithFallback(p.Repo, p.Homepage)
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
