package output

// Event is a lifecycle record of a run, streamed to the console and event
// sinks.
//
// Types emitted by the engine:
//   - run.started
//   - table.loaded
//   - combination.matched
//   - combination.pruned
//   - dedupe.finished
//   - run.finished
type Event struct {
	Type         string `json:"type"`
	Ecosystem    string `json:"ecosystem,omitempty"`
	Combination  string `json:"combination,omitempty"`
	Path         string `json:"path,omitempty"`
	Packages     int    `json:"packages,omitempty"`
	Skipped      int    `json:"skipped,omitempty"`
	Rows         int    `json:"rows,omitempty"`
	Removed      int    `json:"removed,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`
	Ecosystems   int    `json:"ecosystems,omitempty"`
	Combinations int    `json:"combinations,omitempty"`
	ExitCode     int    `json:"exit_code,omitempty"`
}

const (
	EventRunStarted         = "run.started"
	EventTableLoaded        = "table.loaded"
	EventCombinationMatched = "combination.matched"
	EventCombinationPruned  = "combination.pruned"
	EventDedupeFinished     = "dedupe.finished"
	EventRunFinished        = "run.finished"
)
