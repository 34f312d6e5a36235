package mock

import "github.com/fwojciec/undiff"

// Compile-time interface verification.
var (
	_ undiff.Classifier   = (*Classifier)(nil)
	_ undiff.RecordParser = (*RecordParser)(nil)
	_ undiff.Applier      = (*Applier)(nil)
	_ undiff.Replayer     = (*Replayer)(nil)
)

// Classifier is a mock implementation of undiff.Classifier.
type Classifier struct {
	ClassifyFn func(line string) undiff.LineKind
}

func (c *Classifier) Classify(line string) undiff.LineKind {
	return c.ClassifyFn(line)
}

// RecordParser is a mock implementation of undiff.RecordParser.
type RecordParser struct {
	ParseFn func(line undiff.ClassifiedLine) (undiff.Record, error)
}

func (p *RecordParser) Parse(line undiff.ClassifiedLine) (undiff.Record, error) {
	return p.ParseFn(line)
}

// Applier is a mock implementation of undiff.Applier.
type Applier struct {
	ApplyFn func(doc undiff.Document, rec undiff.DiffRecord) (undiff.Document, []undiff.OperationError)
}

func (a *Applier) Apply(doc undiff.Document, rec undiff.DiffRecord) (undiff.Document, []undiff.OperationError) {
	return a.ApplyFn(doc, rec)
}

// Replayer is a mock implementation of undiff.Replayer.
type Replayer struct {
	ReplayFn func(log []byte) (*undiff.Timeline, error)
}

func (r *Replayer) Replay(log []byte) (*undiff.Timeline, error) {
	return r.ReplayFn(log)
}
