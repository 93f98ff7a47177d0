package enrich

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Header is the header of the enriched CSV.
var Header = []string{"Repository", "Combinations", "Found", "Full Name", "Stars", "Forks", "Archived", "Fork", "Error"}

// WriteCSV writes repos to path, creating parent directories.
func WriteCSV(path string, repos []Repo) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	_ = cw.Write(Header)
	for _, r := range repos {
		_ = cw.Write([]string{
			r.Key.String(),
			strings.Join(r.Combinations, "; "),
			strconv.FormatBool(r.Found),
			r.FullName,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			strconv.FormatBool(r.Archived),
			strconv.FormatBool(r.Fork),
			r.Err,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
