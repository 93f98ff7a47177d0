package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferEventFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "events.json", want: "json"},
		{path: "events.NDJSON", want: "ndjson"},
		{path: "events.jsonl", want: "ndjson"},
		{path: "events", wantErr: true},
		{path: "events.csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := InferEventFormat(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventFileSink_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.json")
	s, err := NewEventFileSink(path, "")
	require.NoError(t, err)

	require.NoError(t, s.Write(Event{Type: EventRunStarted, Ecosystems: 2}))
	require.NoError(t, s.Write(sampleReport()))
	require.NoError(t, s.Write(Event{Type: EventRunFinished}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var events []Event
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 2)
	assert.Equal(t, EventRunStarted, events[0].Type)
	assert.Equal(t, EventRunFinished, events[1].Type)
}

func TestEventFileSink_EmptyJSONIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	s, err := NewEventFileSink(path, "json")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestEventFileSink_NDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")
	s, err := NewEventFileSink(path, "")
	require.NoError(t, err)

	require.NoError(t, s.Write(Event{Type: EventCombinationMatched, Combination: "Go + NPM", Rows: 3}))
	require.NoError(t, s.Write(Event{Type: EventCombinationPruned, Combination: "Go + NPM", Removed: 1}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
}
