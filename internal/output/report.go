package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"crosseco/internal/stats"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

const (
	SummaryCSVName  = "summary.csv"
	SummaryTextName = "summary.txt"
	rule            = "================================================================================"
)

// ReportSink writes summary.txt under the results root when it receives the
// final report.
type ReportSink struct {
	root string
	mu   sync.Mutex
}

func NewReportSink(root string) (*ReportSink, error) {
	if root == "" {
		return nil, fmt.Errorf("report root required")
	}
	return &ReportSink{root: root}, nil
}

func (s *ReportSink) Write(v any) error {
	r, ok := v.(*stats.Report)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.root, SummaryTextName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderReport(f, r, s.root); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (s *ReportSink) Close() error {
	return nil
}

// RenderReport writes the human-readable run summary.
func RenderReport(w io.Writer, r *stats.Report, root string) error {
	var b strings.Builder

	section := func(title string) {
		b.WriteString(title + "\n")
		b.WriteString(rule + "\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString("CROSS-ECOSYSTEM PACKAGE ANALYSIS SUMMARY\n")
	b.WriteString(rule + "\n\n")

	section("INPUT STATISTICS")
	fmt.Fprintf(&b, "Total Packages Inputted: %s\n", humanize.Comma(int64(r.TotalPackages)))
	fmt.Fprintf(&b, "Total Valid Repositories (unique normalized GitHub repository URLs across all input packages): %s\n", humanize.Comma(int64(r.ValidKeys)))
	fmt.Fprintf(&b, "Total Cross-Ecosystem Packages: %s\n", humanize.Comma(int64(r.CrossEcosystem)))
	fmt.Fprintf(&b, "Percentage of Cross-Ecosystem Packages: %.2f%%\n", r.Percentage)
	if skipped := totalSkipped(r); skipped > 0 {
		fmt.Fprintf(&b, "Malformed Rows Skipped: %s\n", humanize.Comma(int64(skipped)))
	}
	b.WriteString("\n")

	section("PER-ECOSYSTEM STATISTICS")
	if err := renderEcosystemTable(&b, r.Ecosystems); err != nil {
		return err
	}
	b.WriteString("\n")

	section("SUMMARY")
	if err := renderSummaryTable(&b, r.Summary); err != nil {
		return err
	}
	b.WriteString("\n")

	b.WriteString(rule + "\n")
	section("STATISTICS BY ECOSYSTEM COUNT")
	if err := renderCountTable(&b, r.ByCount); err != nil {
		return err
	}
	b.WriteString("\n")

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "All results saved to: %s\n", root)
	fmt.Fprintf(&b, "Summary CSV saved to: %s\n", filepath.Join(root, SummaryCSVName))
	fmt.Fprintf(&b, "Summary TXT saved to: %s\n", filepath.Join(root, SummaryTextName))
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func totalSkipped(r *stats.Report) int {
	n := 0
	for _, es := range r.Ecosystems {
		n += es.Skipped
	}
	return n
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetHeaderLine(true)
	t.SetColumnSeparator(" ")
	t.SetCenterSeparator(" ")
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func renderEcosystemTable(w io.Writer, rows []stats.EcosystemStats) error {
	t := newTable(w, []string{"Ecosystem", "Total Packages", "Valid Indexed Repos", "Cross-Ecosystem Packages", "Percentage"})
	for _, es := range rows {
		t.Append([]string{
			es.Ecosystem,
			humanize.Comma(int64(es.Packages)),
			humanize.Comma(int64(es.IndexedKeys)),
			humanize.Comma(int64(es.CrossEcosystem)),
			fmt.Sprintf("%.2f%%", es.Percentage),
		})
	}
	t.Render()
	return nil
}

func renderSummaryTable(w io.Writer, rows []stats.SummaryRow) error {
	if len(rows) == 0 {
		_, err := io.WriteString(w, "No cross-ecosystem packages found.\n")
		return err
	}
	t := newTable(w, SummaryHeader)
	for _, row := range rows {
		t.Append(summaryRecord(row))
	}
	t.Render()
	return nil
}

func renderCountTable(w io.Writer, rows []stats.CountStats) error {
	if len(rows) == 0 {
		_, err := io.WriteString(w, "No combinations with matches.\n")
		return err
	}
	t := newTable(w, []string{"Ecosystem Count", "Total Packages", "Avg Packages", "Max Packages", "Min Packages", "Combinations"})
	for _, c := range rows {
		t.Append([]string{
			strconv.Itoa(c.EcosystemCount),
			strconv.Itoa(c.Total),
			strconv.FormatFloat(c.Mean, 'f', 2, 64),
			strconv.Itoa(c.Max),
			strconv.Itoa(c.Min),
			strconv.Itoa(c.Combinations),
		})
	}
	t.Render()
	return nil
}
