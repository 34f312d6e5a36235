package replay_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/mock"
	"github.com/fwojciec/undiff/redact"
	"github.com/fwojciec/undiff/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	actionLine = `From Keybase: 2016-11-02T10:00:00Z Dispatching action: increment: {"type":"increment","payload":{"n":1}}`
	newLine    = `From Keybase: 2016-11-02T10:00:01Z Diff: [{"kind":"New","path":["counter"],"rhs":1}]`
	editLine   = `From Keybase: 2016-11-02T10:00:02Z Diff: [{"kind":"Edit","path":["counter"],"lhs":1,"rhs":2}]`
)

func logText(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestBuilder_EndToEnd(t *testing.T) {
	t.Parallel()

	b := replay.NewBuilder()

	tl := b.Build(logText(actionLine, newLine, editLine))

	want := []undiff.TimelineEntry{
		undiff.ActionSnapshot(1, undiff.ActionRecord{
			Type:    "increment",
			Payload: map[string]any{"type": "increment", "payload": map[string]any{"n": float64(1)}},
		}),
		undiff.StateSnapshot(2, undiff.Document{"counter": float64(1)}),
		undiff.StateSnapshot(3, undiff.Document{"counter": float64(2)}),
	}
	assert.Equal(t, want, tl.Entries)
	assert.Equal(t, undiff.Stats{
		Lines:      3,
		Diffs:      2,
		Actions:    1,
		Retained:   3,
		OpsApplied: 2,
	}, tl.Stats)
	assert.Empty(t, tl.Skipped)
}

func TestBuilder_MalformedDiffLine(t *testing.T) {
	t.Parallel()

	b := replay.NewBuilder()
	malformed := `From Keybase: 2016-11-02T10:00:01Z Diff: [{"kind":"New","path":["counter"],"rhs":`

	tl := b.Build(logText(actionLine, malformed, editLine))

	require.Len(t, tl.Entries, 2)
	assert.Equal(t, undiff.ActionEntry, tl.Entries[0].Kind)
	assert.Equal(t, undiff.StateSnapshot(3, undiff.Document{}), tl.Entries[1])
	assert.Equal(t, 1, tl.Stats.Unparseable)
	assert.Equal(t, 1, tl.Stats.OpsSkipped)
	require.Len(t, tl.Skipped, 1)
	assert.Equal(t, 3, tl.Skipped[0].Line)
	assert.ErrorIs(t, tl.Skipped[0], undiff.ErrPathNotFound)
}

func TestBuilder_FarArrayIndexIsSkipped(t *testing.T) {
	t.Parallel()

	b := replay.NewBuilder()
	far := `From Keybase:  Diff:  [{"kind":"N","path":["a",20000000],"rhs":1}]`

	tl := b.Build(logText(newLine, far))

	require.Len(t, tl.Entries, 2)
	assert.Equal(t, undiff.StateSnapshot(2, undiff.Document{"counter": float64(1)}), tl.Entries[1])
	assert.Equal(t, 1, tl.Stats.OpsSkipped)
	require.Len(t, tl.Skipped, 1)
	assert.Equal(t, 2, tl.Skipped[0].Line)
	assert.ErrorIs(t, tl.Skipped[0], undiff.ErrIndexOutOfRange)
}

func TestBuilder_FaultContainment(t *testing.T) {
	t.Parallel()

	b := replay.NewBuilder()
	lines := []string{
		actionLine,
		newLine,
		`From Keybase: t Diff: [{"kind":"New","path":["other"],`,
		`From Keybase: t Diff: [{"kind":"New","path":["flag"],"rhs":true}]`,
		editLine,
	}
	valid := append(append([]string{}, lines[:2]...), lines[3:]...)

	withBad := b.Build(logText(lines...))
	withoutBad := b.Build(logText(valid...))

	assert.Len(t, withBad.Entries, 4)
	assert.Equal(t, withoutBad.Stats.OpsApplied, withBad.Stats.OpsApplied)
	assert.Equal(t, undiff.Document{"counter": float64(2), "flag": true}, withBad.Entries[3].State)
}

func TestBuilder_Deterministic(t *testing.T) {
	t.Parallel()

	b := replay.NewBuilder(replay.WithStateFilter(redact.KeepPaths(undiff.ParsePath("counter"))))
	text := logText(actionLine, newLine, "noise", editLine, `From Keybase: t Diff: [{"kind":"D","path":["missing"]}]`)

	first := b.Build(text)
	second := b.Build(text)

	assert.Equal(t, first, second)
}

func TestBuilder_PreservesLineOrder(t *testing.T) {
	t.Parallel()

	b := replay.NewBuilder()
	text := logText("boot", actionLine, newLine, "rpc", actionLine, editLine, actionLine)

	tl := b.Build(text)

	require.Len(t, tl.Entries, 5)
	for i := 1; i < len(tl.Entries); i++ {
		assert.Less(t, tl.Entries[i-1].Line, tl.Entries[i].Line)
	}
	assert.Equal(t, 2, tl.Stats.Irrelevant)
	assert.Equal(t, 7, tl.Stats.Lines)
	assert.Equal(t, 2, tl.Stats.Dropped())
}

func TestBuilder_Filters(t *testing.T) {
	t.Parallel()

	t.Run("dropping every state keeps actions untouched", func(t *testing.T) {
		t.Parallel()

		b := replay.NewBuilder(replay.WithStateFilter(func(undiff.Document) (undiff.Document, bool) {
			return nil, false
		}))

		tl := b.Build(logText(actionLine, newLine, editLine))

		require.Len(t, tl.Entries, 1)
		assert.Equal(t, undiff.ActionEntry, tl.Entries[0].Kind)
		assert.Equal(t, "increment", tl.Entries[0].Action.Type)
		assert.Equal(t, 2, tl.Stats.Redacted)
	})

	t.Run("redacted states still advance the document", func(t *testing.T) {
		t.Parallel()

		calls := 0
		b := replay.NewBuilder(replay.WithStateFilter(func(doc undiff.Document) (undiff.Document, bool) {
			calls++
			return doc, calls > 1
		}))

		tl := b.Build(logText(newLine, editLine))

		require.Len(t, tl.Entries, 1)
		assert.Equal(t, undiff.Document{"counter": float64(2)}, tl.Entries[0].State)
	})

	t.Run("action prefix filter drops matching types", func(t *testing.T) {
		t.Parallel()

		b := replay.NewBuilder(replay.WithActionFilter(redact.DropActionPrefix("incr")))
		other := `From Keybase: t Dispatching action: login: {"type":"login"}`

		tl := b.Build(logText(actionLine, other, newLine))

		require.Len(t, tl.Entries, 2)
		for _, e := range tl.Entries {
			if e.Kind == undiff.ActionEntry {
				assert.False(t, strings.HasPrefix(e.Action.Type, "incr"))
			}
		}
	})

	t.Run("filters cannot mutate the running document", func(t *testing.T) {
		t.Parallel()

		b := replay.NewBuilder(replay.WithStateFilter(func(doc undiff.Document) (undiff.Document, bool) {
			doc["counter"] = float64(100)
			delete(doc, "flag")
			return doc, true
		}))

		tl := b.Build(logText(
			`From Keybase: t Diff: [{"kind":"N","path":["flag"],"rhs":true}]`,
			newLine,
			editLine,
			`From Keybase: t Diff: [{"kind":"E","path":["flag"],"lhs":true,"rhs":false}]`,
		))

		require.Len(t, tl.Entries, 4)
		assert.Empty(t, tl.Skipped, "edit must see the real counter and flag")
	})
}

func TestBuilder_StripsCarriageReturns(t *testing.T) {
	t.Parallel()

	b := replay.NewBuilder()

	tl := b.Build(actionLine + "\r\n" + newLine + "\r\n")

	require.Len(t, tl.Entries, 2)
	assert.Equal(t, undiff.Document{"counter": float64(1)}, tl.Entries[1].State)
}

func TestBuilder_EmptyLog(t *testing.T) {
	t.Parallel()

	tl := replay.NewBuilder().Build("")

	assert.NotNil(t, tl.Entries)
	assert.Empty(t, tl.Entries)
	assert.Zero(t, tl.Stats.Lines)
}

func TestBuilder_LogsSkippedOperations(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	b := replay.NewBuilder(replay.WithLogger(logger))

	b.Build(logText(editLine))

	out := buf.String()
	assert.Contains(t, out, "skipped diff operation")
	assert.Contains(t, out, "line=1")
	assert.Contains(t, out, "path=counter")
}

func TestBuilder_UsesInjectedCollaborators(t *testing.T) {
	t.Parallel()

	classifier := &mock.Classifier{
		ClassifyFn: func(line string) undiff.LineKind {
			if line == "d" {
				return undiff.DiffLine
			}
			return undiff.Irrelevant
		},
	}
	parser := &mock.RecordParser{
		ParseFn: func(line undiff.ClassifiedLine) (undiff.Record, error) {
			return undiff.Record{Line: line.Number, Kind: undiff.DiffLine, Diff: undiff.DiffRecord{{}, {}}}, nil
		},
	}
	applier := &mock.Applier{
		ApplyFn: func(doc undiff.Document, rec undiff.DiffRecord) (undiff.Document, []undiff.OperationError) {
			doc["n"] = float64(len(rec))
			return doc, []undiff.OperationError{{Op: 1, Err: undiff.ErrTypeMismatch}}
		},
	}
	b := replay.NewBuilder(
		replay.WithClassifier(classifier),
		replay.WithParser(parser),
		replay.WithApplier(applier),
	)

	tl, err := b.Replay([]byte("x\nd\n"))

	require.NoError(t, err)
	assert.Equal(t, []undiff.TimelineEntry{undiff.StateSnapshot(2, undiff.Document{"n": float64(2)})}, tl.Entries)
	assert.Equal(t, 1, tl.Stats.OpsApplied)
	assert.Equal(t, 1, tl.Stats.OpsSkipped)
	require.Len(t, tl.Skipped, 1)
	assert.Equal(t, 2, tl.Skipped[0].Line)
}
