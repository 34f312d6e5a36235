package jsonl_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_Encode(t *testing.T) {
	t.Parallel()

	t.Run("writes one entry per line", func(t *testing.T) {
		t.Parallel()

		entries := []undiff.TimelineEntry{
			undiff.ActionSnapshot(1, undiff.ActionRecord{Type: "increment"}),
			undiff.StateSnapshot(2, undiff.Document{"counter": float64(1)}),
		}

		data, err := jsonl.NewCodec().Encode(entries)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"kind":"action","line":1,"action":{"type":"increment"}}`, lines[0])
		assert.JSONEq(t, `{"kind":"state","line":2,"state":{"counter":1}}`, lines[1])
	})

	t.Run("does not escape markup", func(t *testing.T) {
		t.Parallel()

		data, err := jsonl.NewCodec().Encode([]undiff.TimelineEntry{
			undiff.StateSnapshot(1, undiff.Document{"html": "<b>"}),
		})

		require.NoError(t, err)
		assert.Contains(t, string(data), `"<b>"`)
	})

	t.Run("empty timeline is empty output", func(t *testing.T) {
		t.Parallel()

		data, err := jsonl.NewCodec().Encode(nil)

		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestCodec_Decode(t *testing.T) {
	t.Parallel()

	t.Run("restores entries and skips blank lines", func(t *testing.T) {
		t.Parallel()

		data := `{"kind":"action","line":1,"action":{"type":"increment"}}

{"kind":"state","line":2,"state":{"counter":1}}
`

		entries, err := jsonl.NewCodec().Decode([]byte(data))

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "increment", entries[0].Action.Type)
		assert.Equal(t, undiff.StateSnapshot(2, undiff.Document{"counter": float64(1)}), entries[1])
	})

	t.Run("reports the failing line", func(t *testing.T) {
		t.Parallel()

		data := `{"kind":"state","line":1,"state":{}}
{"kind":"state",`

		_, err := jsonl.NewCodec().Decode([]byte(data))

		assert.ErrorContains(t, err, "line 2")
	})

	t.Run("round trips encoded entries", func(t *testing.T) {
		t.Parallel()

		c := jsonl.NewCodec()
		entries := []undiff.TimelineEntry{
			undiff.ActionSnapshot(1, undiff.ActionRecord{
				Type:    "login",
				Payload: map[string]any{"type": "login", "user": "mike"},
			}),
			undiff.StateSnapshot(4, undiff.Document{"list": []any{"a", nil}}),
		}

		data, err := c.Encode(entries)
		require.NoError(t, err)
		got, err := c.Decode(data)

		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})
}
