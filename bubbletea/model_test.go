package bubbletea_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/bubbletea"
	"github.com/fwojciec/undiff/mock"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trueColorRenderer creates a lipgloss renderer that outputs true colors.
// This is useful for testing color output without affecting global state.
func trueColorRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)
	return r
}

func timeline() []undiff.TimelineEntry {
	return []undiff.TimelineEntry{
		undiff.StateSnapshot(1, undiff.Document{"counter": float64(0)}),
		undiff.ActionSnapshot(2, undiff.ActionRecord{Type: "increment", Payload: map[string]any{"type": "increment", "by": float64(2)}}),
		undiff.StateSnapshot(3, undiff.Document{"counter": float64(2)}),
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m tea.Model, msgs ...tea.Msg) bubbletea.Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	model, ok := m.(bubbletea.Model)
	require.True(t, ok)
	return model
}

func ready(t *testing.T, m bubbletea.Model) bubbletea.Model {
	t.Helper()
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func TestModel_Init(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(timeline())

	assert.Nil(t, m.Init(), "Init should return nil command")
}

func TestModel_ViewBeforeReady(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(timeline())

	assert.Contains(t, m.View(), "Loading")
}

func TestModel_RendersFirstEntry(t *testing.T) {
	t.Parallel()

	m := ready(t, bubbletea.NewModel(timeline()))

	view := m.View()
	assert.Contains(t, view, "state  (line 1)")
	assert.Contains(t, view, `"counter": 0`)
	assert.Contains(t, view, "entry 1/3")
}

func TestModel_EntryNavigation(t *testing.T) {
	t.Parallel()

	m := ready(t, bubbletea.NewModel(timeline()))

	m = update(t, m, keyPress('n'))
	assert.Equal(t, 1, m.Cursor())
	assert.Contains(t, m.View(), "action increment  (line 2)")
	assert.Contains(t, m.View(), `"by": 2`)

	m = update(t, m, keyPress('n'), keyPress('n'), keyPress('n'))
	assert.Equal(t, 2, m.Cursor(), "cursor stops at the last entry")

	m = update(t, m, keyPress('p'), keyPress('p'), keyPress('p'))
	assert.Equal(t, 0, m.Cursor(), "cursor stops at the first entry")
}

func TestModel_StateNavigation(t *testing.T) {
	t.Parallel()

	m := ready(t, bubbletea.NewModel(timeline()))

	m = update(t, m, keyPress('s'))
	assert.Equal(t, 2, m.Cursor(), "skips the action")

	m = update(t, m, keyPress('S'))
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_EmptyTimeline(t *testing.T) {
	t.Parallel()

	m := ready(t, bubbletea.NewModel(nil))
	m = update(t, m, keyPress('n'), keyPress('y'), keyPress('d'))

	assert.Equal(t, 0, m.Cursor())
	assert.Contains(t, m.View(), "empty timeline")
	assert.Contains(t, m.View(), "entry 0/0")
}

func TestModel_ToggleDelta(t *testing.T) {
	t.Parallel()

	t.Run("diffs against the previous state", func(t *testing.T) {
		t.Parallel()

		var gotPrev, gotNext undiff.Document
		differ := &mock.Differ{
			DiffFn: func(prev, next undiff.Document) ([]undiff.DeltaLine, error) {
				gotPrev, gotNext = prev, next
				return []undiff.DeltaLine{
					{Op: undiff.DeltaHunk, Text: "@@ -1,3 +1,3 @@"},
					{Op: undiff.DeltaDeleted, Text: `  "counter": 0`},
					{Op: undiff.DeltaAdded, Text: `  "counter": 2`},
				}, nil
			},
		}

		m := ready(t, bubbletea.NewModel(timeline(), bubbletea.WithDiffer(differ)))
		m = update(t, m, keyPress('s'), keyPress('d'))

		assert.True(t, m.ShowDelta())
		assert.Equal(t, undiff.Document{"counter": float64(0)}, gotPrev)
		assert.Equal(t, undiff.Document{"counter": float64(2)}, gotNext)
		assert.Contains(t, m.View(), `+  "counter": 2`)
		assert.Contains(t, m.View(), `-  "counter": 0`)
		assert.Contains(t, m.View(), "delta")
	})

	t.Run("first state diffs against empty", func(t *testing.T) {
		t.Parallel()

		var gotPrev undiff.Document
		differ := &mock.Differ{
			DiffFn: func(prev, _ undiff.Document) ([]undiff.DeltaLine, error) {
				gotPrev = prev
				return nil, nil
			},
		}

		m := ready(t, bubbletea.NewModel(timeline(), bubbletea.WithDiffer(differ), bubbletea.WithDeltaView()))

		assert.Equal(t, undiff.Document{}, gotPrev)
		assert.Contains(t, m.View(), "(no change)")
	})

	t.Run("differ errors are shown", func(t *testing.T) {
		t.Parallel()

		differ := &mock.Differ{
			DiffFn: func(_, _ undiff.Document) ([]undiff.DeltaLine, error) {
				return nil, errors.New("boom")
			},
		}

		m := ready(t, bubbletea.NewModel(timeline(), bubbletea.WithDiffer(differ), bubbletea.WithDeltaView()))

		assert.Contains(t, m.View(), "cannot compute delta: boom")
	})

	t.Run("no-op without a differ", func(t *testing.T) {
		t.Parallel()

		m := ready(t, bubbletea.NewModel(timeline()))
		m = update(t, m, keyPress('d'))

		assert.False(t, m.ShowDelta())
	})
}

func TestModel_Copy(t *testing.T) {
	t.Parallel()

	t.Run("copies the current entry as JSON", func(t *testing.T) {
		t.Parallel()

		var copied string
		cb := &mock.Clipboard{CopyFn: func(content string) error {
			copied = content
			return nil
		}}

		m := ready(t, bubbletea.NewModel(timeline(), bubbletea.WithClipboard(cb)))
		m = update(t, m, keyPress('n'), keyPress('y'))

		assert.JSONEq(t, `{"kind":"action","line":2,"action":{"type":"increment","by":2}}`, copied)
		assert.Equal(t, "copied line 2", m.Status())
		assert.Contains(t, m.View(), "copied line 2")
	})

	t.Run("reports clipboard errors", func(t *testing.T) {
		t.Parallel()

		cb := &mock.Clipboard{CopyFn: func(string) error { return errors.New("no display") }}

		m := ready(t, bubbletea.NewModel(timeline(), bubbletea.WithClipboard(cb)))
		m = update(t, m, keyPress('y'))

		assert.Equal(t, "copy failed: no display", m.Status())
	})

	t.Run("status clears on navigation", func(t *testing.T) {
		t.Parallel()

		cb := &mock.Clipboard{CopyFn: func(string) error { return nil }}

		m := ready(t, bubbletea.NewModel(timeline(), bubbletea.WithClipboard(cb)))
		m = update(t, m, keyPress('y'), keyPress('n'))

		assert.Empty(t, m.Status())
	})
}

func TestModel_UsesTokenizer(t *testing.T) {
	t.Parallel()

	var gotLanguage string
	tok := &mock.Tokenizer{
		TokenizeLinesFn: func(language, source string) [][]undiff.Token {
			gotLanguage = language
			return [][]undiff.Token{{{Text: "HIGHLIGHTED", Style: undiff.Style{Foreground: "#ff0000"}}}}
		},
	}

	m := ready(t, bubbletea.NewModel(timeline(),
		bubbletea.WithTokenizer(tok),
		bubbletea.WithRenderer(trueColorRenderer()),
	))

	assert.Equal(t, "json", gotLanguage)
	assert.Contains(t, m.View(), "HIGHLIGHTED")
	assert.Contains(t, m.View(), "\x1b[38;2;255;0;0m", "token foreground is rendered")
}

func TestModel_GotoTopOnGG(t *testing.T) {
	t.Parallel()

	doc := undiff.Document{}
	for i := range 100 {
		doc[string(rune('a'+i%26))+string(rune('a'+i/26))] = float64(i)
	}
	entries := []undiff.TimelineEntry{undiff.StateSnapshot(1, doc)}

	m := ready(t, bubbletea.NewModel(entries))
	m = update(t, m, keyPress('G'))
	bottom := m.View()

	m = update(t, m, keyPress('g'), keyPress('g'))

	assert.NotEqual(t, bottom, m.View())
	assert.Contains(t, m.View(), "state  (line 1)")
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	tm := teatest.NewTestModel(t, bubbletea.NewModel(timeline()),
		teatest.WithInitialTermSize(80, 24),
	)

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("state  (line 1)"))
	})

	tm.Send(keyPress('n'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("increment"))
	})

	tm.Send(keyPress('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, ok := tm.FinalModel(t).(bubbletea.Model)
	require.True(t, ok)
	assert.Equal(t, 1, final.Cursor())
}

func TestModel_TimelineMsg(t *testing.T) {
	t.Parallel()

	m := ready(t, bubbletea.NewModel(timeline()))
	m = update(t, m, keyPress('G'), keyPress('n'), keyPress('n'))
	require.Equal(t, 2, m.Cursor())

	shorter := &undiff.Timeline{Entries: timeline()[:1]}
	m = update(t, m, bubbletea.TimelineMsg{Timeline: shorter})

	assert.Equal(t, 0, m.Cursor(), "cursor is clamped to the new timeline")
	assert.Equal(t, "reloaded 1 entries", m.Status())
	assert.Contains(t, m.View(), "entry 1/1")
}
