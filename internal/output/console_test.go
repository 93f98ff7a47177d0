package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSink_Text(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewConsoleSink(&buf, "text")
	require.NoError(t, err)

	require.NoError(t, s.Write(Event{Type: EventRunStarted, Ecosystems: 3, Combinations: 4}))
	require.NoError(t, s.Write(Event{Type: EventCombinationMatched, Combination: "NPM + PyPI", Rows: 1500}))
	require.NoError(t, s.Write(Event{Type: EventCombinationMatched, Combination: "Go + NPM", Rows: 0}))
	require.NoError(t, s.Write(Event{Type: EventCombinationPruned, Combination: "Go + PyPI", Removed: 2, Deleted: true}))
	require.NoError(t, s.Write(sampleReport()))
	require.NoError(t, s.Write("ignored"))

	out := buf.String()
	assert.Contains(t, out, "Matching 3 ecosystems across 4 combinations")
	assert.Contains(t, out, "NPM + PyPI: 1,500 packages")
	assert.Contains(t, out, "Go + NPM: no matches")
	assert.Contains(t, out, "removed 2 packages found in larger combinations (now empty, deleted)")
	assert.Contains(t, out, "CROSS-ECOSYSTEM PACKAGES")
	assert.Contains(t, out, "1,203 (12.03%)")
}

func TestConsoleSink_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewConsoleSink(&buf, "ndjson")
	require.NoError(t, err)

	require.NoError(t, s.Write(Event{Type: EventTableLoaded, Ecosystem: "NPM", Packages: 10}))
	require.NoError(t, s.Write(sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "reports are not streamed as events")

	var e Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, EventTableLoaded, e.Type)
	assert.Equal(t, "NPM", e.Ecosystem)
}

func TestNewConsoleSink_RejectsUnknownFormat(t *testing.T) {
	_, err := NewConsoleSink(&bytes.Buffer{}, "xml")
	assert.Error(t, err)
}
