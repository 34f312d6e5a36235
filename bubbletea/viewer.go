// Package bubbletea provides a terminal UI for browsing replay timelines
// using the Bubble Tea framework.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var _ undiff.LiveViewer = (*Viewer)(nil)

// Viewer implements undiff.Viewer using a Bubble Tea TUI.
type Viewer struct {
	programOpts []tea.ProgramOption
	modelOpts   []ModelOption
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithProgramOptions appends Bubble Tea program options, e.g. custom IO
// for running without a TTY.
func WithProgramOptions(opts ...tea.ProgramOption) ViewerOption {
	return func(v *Viewer) {
		v.programOpts = append(v.programOpts, opts...)
	}
}

// WithModelOptions configures the Model each View call creates.
func WithModelOptions(opts ...ModelOption) ViewerOption {
	return func(v *Viewer) {
		v.modelOpts = append(v.modelOpts, opts...)
	}
}

// NewViewer creates a new Viewer.
func NewViewer(opts ...ViewerOption) *Viewer {
	v := &Viewer{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// View displays the timeline and blocks until the user exits or ctx is done.
func (v *Viewer) View(ctx context.Context, tl *undiff.Timeline) error {
	return v.Follow(ctx, tl, nil)
}

// Follow displays tl and swaps in every timeline received on updates. A
// nil updates channel behaves like View.
func (v *Viewer) Follow(ctx context.Context, tl *undiff.Timeline, updates <-chan *undiff.Timeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var entries []undiff.TimelineEntry
	if tl != nil {
		entries = tl.Entries
	}

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	p := tea.NewProgram(NewModel(entries, v.modelOpts...), append(opts, v.programOpts...)...)

	if updates != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case next, ok := <-updates:
					if !ok {
						return
					}
					p.Send(TimelineMsg{Timeline: next})
				}
			}
		}()
	}

	_, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
