package undiff

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntryKind discriminates timeline entries.
type EntryKind string

// Entry kinds.
const (
	StateEntry  EntryKind = "state"
	ActionEntry EntryKind = "action"
)

// TimelineEntry is one retained log line: either a reconstructed state
// snapshot or an action snapshot.
type TimelineEntry struct {
	Kind   EntryKind
	Line   int           // Source line number
	State  Document      // Set for StateEntry
	Action *ActionRecord // Set for ActionEntry
}

// StateSnapshot returns a state entry for the given line.
func StateSnapshot(line int, doc Document) TimelineEntry {
	return TimelineEntry{Kind: StateEntry, Line: line, State: doc}
}

// ActionSnapshot returns an action entry for the given line.
func ActionSnapshot(line int, action ActionRecord) TimelineEntry {
	return TimelineEntry{Kind: ActionEntry, Line: line, Action: &action}
}

type stateJSON struct {
	Kind  EntryKind `json:"kind" yaml:"kind"`
	Line  int       `json:"line" yaml:"line"`
	State Document  `json:"state" yaml:"state"`
}

type actionJSON struct {
	Kind   EntryKind      `json:"kind" yaml:"kind"`
	Line   int            `json:"line" yaml:"line"`
	Action map[string]any `json:"action" yaml:"action"`
}

func (e TimelineEntry) wire() (any, error) {
	switch e.Kind {
	case StateEntry:
		state := e.State
		if state == nil {
			state = Document{}
		}
		return stateJSON{Kind: e.Kind, Line: e.Line, State: state}, nil
	case ActionEntry:
		if e.Action == nil {
			return nil, fmt.Errorf("line %d: action entry without action", e.Line)
		}
		return actionJSON{Kind: e.Kind, Line: e.Line, Action: e.Action.Fields()}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown entry kind %q", e.Line, e.Kind)
	}
}

// MarshalJSON implements json.Marshaler. State entries always carry a
// "state" object, even when empty. Markup in state values is not escaped.
func (e TimelineEntry) MarshalJSON() ([]byte, error) {
	w, err := e.wire()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalYAML implements yaml.Marshaler.
func (e TimelineEntry) MarshalYAML() (any, error) {
	return e.wire()
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *TimelineEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind   EntryKind     `json:"kind"`
		Line   int           `json:"line"`
		State  Document      `json:"state"`
		Action *ActionRecord `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Kind {
	case StateEntry:
		if raw.State == nil {
			raw.State = Document{}
		}
		*e = StateSnapshot(raw.Line, raw.State)
	case ActionEntry:
		if raw.Action == nil {
			return fmt.Errorf("line %d: action entry without action", raw.Line)
		}
		*e = ActionSnapshot(raw.Line, *raw.Action)
	default:
		return fmt.Errorf("line %d: unknown entry kind %q", raw.Line, raw.Kind)
	}
	return nil
}

// Stats counts what happened to every line and operation of a replay.
type Stats struct {
	Lines       int `json:"lines"`       // Total lines in the log
	Irrelevant  int `json:"irrelevant"`  // Lines matching no marker
	Unparseable int `json:"unparseable"` // Classified lines whose payload failed to parse
	Diffs       int `json:"diffs"`       // Diff records applied
	Actions     int `json:"actions"`     // Action records parsed
	Redacted    int `json:"redacted"`    // Entries dropped by a filter
	Retained    int `json:"retained"`    // Entries in the timeline
	OpsApplied  int `json:"ops_applied"` // Diff operations applied
	OpsSkipped  int `json:"ops_skipped"` // Diff operations that failed and were skipped
}

// Dropped returns the number of lines that did not produce a timeline entry.
func (s Stats) Dropped() int {
	return s.Irrelevant + s.Unparseable + s.Redacted
}

// Timeline is the ordered, filtered result of one replay run.
type Timeline struct {
	Entries []TimelineEntry
	Stats   Stats
	Skipped []OperationError // Operations that could not be applied, in log order
}
