package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"crosseco/internal/stats"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// ConsoleSink renders run progress and the final report for humans ("text")
// or streams events as NDJSON ("ndjson").
type ConsoleSink struct {
	writer io.Writer
	format string
	mu     sync.Mutex
}

func NewConsoleSink(w io.Writer, format string) (*ConsoleSink, error) {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported console format: %s", format)
	}
	return &ConsoleSink{writer: w, format: format}, nil
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "ndjson" {
		e, ok := v.(Event)
		if !ok {
			return nil
		}
		if err := json.NewEncoder(s.writer).Encode(e); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}

	var err error
	switch t := v.(type) {
	case Event:
		err = s.writeEvent(t)
	case *stats.Report:
		err = s.writeReport(t)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) writeEvent(e Event) error {
	var err error
	switch e.Type {
	case EventRunStarted:
		_, err = fmt.Fprintf(s.writer, "Matching %d ecosystems across %d combinations...\n", e.Ecosystems, e.Combinations)
	case EventCombinationMatched:
		if e.Rows == 0 {
			_, err = fmt.Fprintf(s.writer, "  %s: no matches\n", e.Combination)
			return err
		}
		_, err = fmt.Fprintf(s.writer, "  %s: %s packages\n", e.Combination, humanize.Comma(int64(e.Rows)))
	case EventCombinationPruned:
		suffix := ""
		if e.Deleted {
			suffix = " (now empty, deleted)"
		}
		_, err = fmt.Fprintf(s.writer, "  %s: removed %s packages found in larger combinations%s\n", e.Combination, humanize.Comma(int64(e.Removed)), suffix)
	case EventDedupeFinished:
		_, err = fmt.Fprintf(s.writer, "Removed %s packages from lower ecosystem counts.\n", humanize.Comma(int64(e.Removed)))
	}
	return err
}

func (s *ConsoleSink) writeReport(r *stats.Report) error {
	bold := color.New(color.Bold)
	highlight := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(s.writer)
	bold.Fprintln(s.writer, "CROSS-ECOSYSTEM PACKAGES")
	fmt.Fprintf(s.writer, "Packages loaded:        %s\n", humanize.Comma(int64(r.TotalPackages)))
	fmt.Fprintf(s.writer, "Distinct repositories:  %s\n", humanize.Comma(int64(r.ValidKeys)))
	fmt.Fprint(s.writer, "Cross-ecosystem:        ")
	highlight.Fprintf(s.writer, "%s (%.2f%%)\n", humanize.Comma(int64(r.CrossEcosystem)), r.Percentage)
	fmt.Fprintln(s.writer)

	if err := renderEcosystemTable(s.writer, r.Ecosystems); err != nil {
		return err
	}
	fmt.Fprintln(s.writer)
	return renderCountTable(s.writer, r.ByCount)
}

func (s *ConsoleSink) Close() error {
	return nil
}
