package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"crosseco/internal/stats"
)

// SummaryHeader is the header of summary.csv.
var SummaryHeader = []string{"Ecosystem Count", "Ecosystems", "Package Count", "Output File"}

func summaryRecord(row stats.SummaryRow) []string {
	return []string{
		strconv.Itoa(row.EcosystemCount),
		strings.Join(row.Ecosystems, " + "),
		strconv.Itoa(row.PackageCount),
		row.OutputFile,
	}
}

// SummarySink writes summary.csv under the results root when it receives the
// final report.
type SummarySink struct {
	root string
	mu   sync.Mutex
}

func NewSummarySink(root string) (*SummarySink, error) {
	if root == "" {
		return nil, fmt.Errorf("summary root required")
	}
	return &SummarySink{root: root}, nil
}

func (s *SummarySink) Write(v any) error {
	r, ok := v.(*stats.Report)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteSummary(filepath.Join(s.root, SummaryCSVName), r.Summary)
}

func (s *SummarySink) Close() error {
	return nil
}

// WriteSummary writes rows to path as CSV.
func WriteSummary(path string, rows []stats.SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	cw := csv.NewWriter(f)
	_ = cw.Write(SummaryHeader)
	for _, row := range rows {
		_ = cw.Write(summaryRecord(row))
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
