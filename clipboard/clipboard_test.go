package clipboard_test

import (
	"errors"
	"testing"

	atotto "github.com/atotto/clipboard"
	"github.com/fwojciec/undiff/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_Copy(t *testing.T) {
	// Not parallel: the system clipboard is shared state.
	cb := clipboard.NewSystem()
	content := `{"counter":2}`

	err := cb.Copy(content)
	if atotto.Unsupported {
		assert.ErrorIs(t, err, clipboard.ErrUnavailable)
		return
	}
	if err != nil {
		// Utilities may be installed without a display to talk to.
		t.Skipf("system clipboard not usable: %v", err)
	}

	got, err := atotto.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSystem_CopyWrapsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cb := clipboard.NewSystemWith(func(string) error { return boom })

	err := cb.Copy("x")

	assert.ErrorIs(t, err, boom)
}
