package undiff

// DeltaOp is the kind of a delta line.
type DeltaOp int

// Delta line kinds.
const (
	DeltaContext DeltaOp = iota
	DeltaAdded
	DeltaDeleted
	DeltaHunk
)

// DeltaLine is one line of a rendered difference between two snapshots.
type DeltaLine struct {
	Op   DeltaOp
	Text string
}

// Differ computes a line delta between two state snapshots.
type Differ interface {
	Diff(prev, next Document) ([]DeltaLine, error)
}
