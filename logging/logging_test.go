package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/undiff/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := logging.ParseLevel(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: slog.LevelWarn, Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "line", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "line=3")
}

func TestNew_JSONConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{JSON: true, Output: &buf})
	require.NoError(t, err)

	logger.Info("replayed", "retained", 2)

	assert.Contains(t, buf.String(), `"msg":"replayed"`)
	assert.Contains(t, buf.String(), `"retained":2`)
}

func TestNew_WritesDailyFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer
	logger, err := logging.New(logging.Config{Dir: dir, Output: &console})
	require.NoError(t, err)

	logger.With("run", "abc").Info("replayed")
	require.NoError(t, logger.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run":"abc"`)
	assert.Contains(t, console.String(), "run=abc")
}

func TestNew_QuietWithoutDirDiscards(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(logging.Config{Quiet: true})
	require.NoError(t, err)

	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
	assert.NoError(t, logger.Close())
}
