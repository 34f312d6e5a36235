package bubbletea_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestViewer_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Custom IO avoids the TTY requirement.
	var in bytes.Buffer
	var out bytes.Buffer
	viewer := bubbletea.NewViewer(
		bubbletea.WithProgramOptions(
			tea.WithInput(&in),
			tea.WithOutput(&out),
		),
	)

	done := make(chan error, 1)
	go func() {
		done <- viewer.View(ctx, &undiff.Timeline{Entries: timeline()})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("viewer did not exit after context cancellation")
	}
}

func TestViewer_ContextAlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	viewer := bubbletea.NewViewer()

	err := viewer.View(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestViewer_FollowStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var in, out bytes.Buffer
	viewer := bubbletea.NewViewer(
		bubbletea.WithProgramOptions(
			tea.WithInput(&in),
			tea.WithOutput(&out),
		),
	)

	updates := make(chan *undiff.Timeline, 1)
	done := make(chan error, 1)
	go func() {
		done <- viewer.Follow(ctx, &undiff.Timeline{Entries: timeline()}, updates)
	}()

	updates <- &undiff.Timeline{Entries: timeline()[:1]}
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("viewer did not exit after context cancellation")
	}
}
