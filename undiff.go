// Package undiff provides domain types for replaying diagnostic logs into a
// timeline of reconstructed application state and dispatched actions.
package undiff

import "context"

// LineKind labels a raw log line.
type LineKind int

// Line kinds.
const (
	Irrelevant LineKind = iota
	DiffLine
	ActionLine
)

// String returns the name of the line kind.
func (k LineKind) String() string {
	switch k {
	case DiffLine:
		return "diff"
	case ActionLine:
		return "action"
	default:
		return "irrelevant"
	}
}

// ClassifiedLine is a raw log line together with its classification.
type ClassifiedLine struct {
	Number int    // 1-based position in the source log
	Text   string // Raw text without the line terminator
	Kind   LineKind
}

// Record is the parsed payload of a classified line.
type Record struct {
	Line   int           // Source line number
	Kind   LineKind      // DiffLine or ActionLine
	Diff   DiffRecord    // Set when Kind is DiffLine (may be empty)
	Action *ActionRecord // Set when Kind is ActionLine
}

// Classifier labels log lines using fixed textual markers.
type Classifier interface {
	// Classify returns the kind of the line. Unmatched input is Irrelevant.
	Classify(line string) LineKind
}

// RecordParser extracts a structured payload from a classified line.
type RecordParser interface {
	// Parse returns the record for the line, or an error when the payload
	// is not valid structured data.
	Parse(line ClassifiedLine) (Record, error)
}

// Applier folds diff records into a state document.
type Applier interface {
	// Apply mutates doc in place with every operation of rec, in order, and
	// returns doc. Operations that cannot be applied are skipped and reported.
	Apply(doc Document, rec DiffRecord) (Document, []OperationError)
}

// Replayer turns raw log content into a timeline.
type Replayer interface {
	Replay(log []byte) (*Timeline, error)
}

// Encoder serializes timeline entries to a textual form.
type Encoder interface {
	Encode(entries []TimelineEntry) ([]byte, error)
}

// Decoder restores timeline entries from their textual form.
type Decoder interface {
	Decode(data []byte) ([]TimelineEntry, error)
}

// Exporter persists a timeline to a file.
type Exporter interface {
	Export(path string, tl *Timeline) error
}

// TimelineLoader loads previously exported timeline entries.
type TimelineLoader interface {
	Load(path string) ([]TimelineEntry, error)
}

// Viewer displays a timeline interactively.
type Viewer interface {
	// View displays the timeline and blocks until the user exits.
	View(ctx context.Context, tl *Timeline) error
}

// LiveViewer is a Viewer that also follows a stream of replacement
// timelines, e.g. re-replays of a log that is still being written.
type LiveViewer interface {
	Viewer
	// Follow displays tl, swapping in each timeline received on updates,
	// until the user exits or ctx is done.
	Follow(ctx context.Context, tl *Timeline, updates <-chan *Timeline) error
}

// Watcher reports changes to a watched log.
type Watcher interface {
	// Run calls onChange after each change until ctx is done.
	Run(ctx context.Context, onChange func(context.Context) error) error
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}
