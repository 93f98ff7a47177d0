package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// EventFileSink records lifecycle events to a file.
//
// Formats:
//   - json: aggregates events and writes a single JSON array on Close
//   - ndjson: streams one event per line
type EventFileSink struct {
	path   string
	format string
	file   *os.File
	mu     sync.Mutex
	events []Event
}

// InferEventFormat maps a file extension to an event format.
func InferEventFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return "json", nil
	case ".ndjson", ".jsonl":
		return "ndjson", nil
	case "":
		return "", fmt.Errorf("cannot infer event format from file extension (missing extension)")
	default:
		return "", fmt.Errorf("cannot infer event format from file extension %q", ext)
	}
}

func NewEventFileSink(path string, format string) (*EventFileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("event file path required")
	}
	if format == "" {
		f, err := InferEventFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported event format: %s", format)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create event file directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event file: %w", err)
	}
	return &EventFileSink{path: path, format: format, file: f}, nil
}

func (s *EventFileSink) Write(v any) error {
	e, ok := v.(Event)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		s.events = append(s.events, e)
		return nil
	}
	return json.NewEncoder(s.file).Encode(e)
}

func (s *EventFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.format == "json" {
		enc := json.NewEncoder(s.file)
		enc.SetIndent("", "  ")
		events := s.events
		if events == nil {
			events = []Event{}
		}
		err = enc.Encode(events)
	}
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("event file %s: %w", s.path, err)
	}
	return nil
}
