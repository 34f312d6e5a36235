// Package replay builds a timeline from a diagnostic log in a single pass.
package replay

import (
	"log/slog"
	"strings"

	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/deepdiff"
	"github.com/fwojciec/undiff/logline"
)

// Compile-time interface verification.
var _ undiff.Replayer = (*Builder)(nil)

// Option configures a Builder.
type Option func(*Builder)

// WithClassifier sets the line classifier.
func WithClassifier(c undiff.Classifier) Option {
	return func(b *Builder) {
		b.classifier = c
	}
}

// WithParser sets the record parser.
func WithParser(p undiff.RecordParser) Option {
	return func(b *Builder) {
		b.parser = p
	}
}

// WithApplier sets the diff applier.
func WithApplier(a undiff.Applier) Option {
	return func(b *Builder) {
		b.applier = a
	}
}

// WithStateFilter sets the filter applied to each state snapshot.
// A nil filter keeps the identity default.
func WithStateFilter(f undiff.StateFilter) Option {
	return func(b *Builder) {
		if f != nil {
			b.stateFilter = f
		}
	}
}

// WithActionFilter sets the filter applied to each action snapshot.
// A nil filter keeps the identity default.
func WithActionFilter(f undiff.ActionFilter) Option {
	return func(b *Builder) {
		if f != nil {
			b.actionFilter = f
		}
	}
}

// WithLogger sets the logger for skipped operations and dropped lines.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder turns raw log text into a Timeline. It holds no state between
// calls: every build starts from an empty document, so a Builder may be
// reused and repeated builds of the same input are identical.
type Builder struct {
	classifier   undiff.Classifier
	parser       undiff.RecordParser
	applier      undiff.Applier
	stateFilter  undiff.StateFilter
	actionFilter undiff.ActionFilter
	logger       *slog.Logger
}

// NewBuilder creates a Builder using the default markers, the deep-diff
// applier and identity filters unless overridden by opts.
func NewBuilder(opts ...Option) *Builder {
	markers := logline.DefaultMarkers()
	b := &Builder{
		classifier:   logline.NewClassifier(markers),
		parser:       logline.NewParser(markers),
		applier:      deepdiff.NewApplier(),
		stateFilter:  undiff.IdentityState,
		actionFilter: undiff.IdentityAction,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Replay builds the timeline for log. It never fails; the error return
// lets caching and remote replayers share the interface.
func (b *Builder) Replay(log []byte) (*undiff.Timeline, error) {
	return b.Build(string(log)), nil
}

// Build classifies, parses, applies and filters every line of text in order.
func (b *Builder) Build(text string) *undiff.Timeline {
	tl := &undiff.Timeline{Entries: []undiff.TimelineEntry{}}
	doc := undiff.Document{}

	for i, line := range splitLines(text) {
		num := i + 1
		tl.Stats.Lines++

		kind := b.classifier.Classify(line)
		if kind == undiff.Irrelevant {
			tl.Stats.Irrelevant++
			continue
		}

		rec, err := b.parser.Parse(undiff.ClassifiedLine{Number: num, Text: line, Kind: kind})
		if err == nil && rec.Kind == undiff.ActionLine && rec.Action == nil {
			err = undiff.ErrNoPayload
		}
		if err != nil {
			tl.Stats.Unparseable++
			b.logger.Debug("dropping unparseable line", "line", num, "kind", kind.String(), "error", err)
			continue
		}

		switch rec.Kind {
		case undiff.DiffLine:
			doc = b.applyDiff(tl, doc, num, rec.Diff)
			state, keep := b.stateFilter(doc.Clone())
			if !keep {
				tl.Stats.Redacted++
				continue
			}
			tl.Entries = append(tl.Entries, undiff.StateSnapshot(num, state))

		case undiff.ActionLine:
			tl.Stats.Actions++
			action, keep := b.actionFilter(rec.Action.Clone())
			if !keep {
				tl.Stats.Redacted++
				continue
			}
			tl.Entries = append(tl.Entries, undiff.ActionSnapshot(num, action))

		default:
			tl.Stats.Unparseable++
		}
	}

	tl.Stats.Retained = len(tl.Entries)
	return tl
}

func (b *Builder) applyDiff(tl *undiff.Timeline, doc undiff.Document, num int, rec undiff.DiffRecord) undiff.Document {
	tl.Stats.Diffs++

	next, skipped := b.applier.Apply(doc, rec)
	if next == nil {
		next = doc
	}

	tl.Stats.OpsApplied += len(rec) - len(skipped)
	tl.Stats.OpsSkipped += len(skipped)
	for _, opErr := range skipped {
		opErr.Line = num
		LogSkipped(b.logger, opErr)
		tl.Skipped = append(tl.Skipped, opErr)
	}
	return next
}

// LogSkipped reports a skipped diff operation at warn level.
func LogSkipped(logger *slog.Logger, opErr undiff.OperationError) {
	logger.Warn("skipped diff operation",
		"line", opErr.Line,
		"op", opErr.Op,
		"kind", opErr.Kind.String(),
		"path", opErr.Path.String(),
		"error", opErr.Err)
}

// splitLines splits on newlines and strips carriage returns. A trailing
// newline does not start another line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
