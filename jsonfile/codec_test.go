package jsonfile_test

import (
	"testing"

	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/jsonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_Encode(t *testing.T) {
	t.Parallel()

	t.Run("pretty prints with discriminated entries", func(t *testing.T) {
		t.Parallel()

		entries := []undiff.TimelineEntry{
			undiff.ActionSnapshot(1, undiff.ActionRecord{Type: "increment"}),
			undiff.StateSnapshot(2, undiff.Document{"counter": float64(1)}),
		}

		data, err := jsonfile.NewCodec().Encode(entries)

		require.NoError(t, err)
		want := `[
  {
    "kind": "action",
    "line": 1,
    "action": {
      "type": "increment"
    }
  },
  {
    "kind": "state",
    "line": 2,
    "state": {
      "counter": 1
    }
  }
]
`
		assert.Equal(t, want, string(data))
	})

	t.Run("empty timeline is an empty array", func(t *testing.T) {
		t.Parallel()

		data, err := jsonfile.NewCodec().Encode(nil)

		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(data))
	})

	t.Run("rejects invalid entries", func(t *testing.T) {
		t.Parallel()

		_, err := jsonfile.NewCodec().Encode([]undiff.TimelineEntry{{Kind: "bogus"}})

		assert.Error(t, err)
	})
}

func TestCodec_Decode(t *testing.T) {
	t.Parallel()

	t.Run("round trips encoded entries", func(t *testing.T) {
		t.Parallel()

		c := jsonfile.NewCodec()
		entries := []undiff.TimelineEntry{
			undiff.ActionSnapshot(1, undiff.ActionRecord{
				Type:    "increment",
				Payload: map[string]any{"type": "increment", "payload": map[string]any{"n": float64(1)}},
			}),
			undiff.StateSnapshot(2, undiff.Document{"counter": float64(1)}),
			undiff.StateSnapshot(3, undiff.Document{}),
		}

		data, err := c.Encode(entries)
		require.NoError(t, err)
		got, err := c.Decode(data)

		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("null decodes to an empty timeline", func(t *testing.T) {
		t.Parallel()

		got, err := jsonfile.NewCodec().Decode([]byte("null"))

		require.NoError(t, err)
		assert.Equal(t, []undiff.TimelineEntry{}, got)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()

		_, err := jsonfile.NewCodec().Decode([]byte(`[{"kind":"state"`))

		assert.Error(t, err)
	})
}
