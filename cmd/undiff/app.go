package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/fs"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownFormat is returned when a timeline file's format cannot be
// determined or has no loader.
var ErrUnknownFormat = errors.New("unknown timeline format")

// App encapsulates the application logic for testing.
type App struct {
	ReadLog  func(path string) ([]byte, error) // Defaults to fs.ReadLog
	Replayer undiff.Replayer
	Exporter undiff.Exporter
	Store    undiff.RunStore // Optional run history
	Viewer   undiff.LiveViewer

	// View command
	Detect  func(path string) string
	Loaders map[string]undiff.TimelineLoader

	Logger *slog.Logger
	Out    io.Writer
	Now    func() time.Time
}

// ReplayRequest describes one replay run.
type ReplayRequest struct {
	LogPath    string
	OutputPath string
	Format     string
	View       bool
}

// Replay reads the log, rebuilds its timeline, exports it and reports the
// outcome. Only an unreadable log or an unwritable output abort the run.
func (a *App) Replay(ctx context.Context, req ReplayRequest) (*undiff.Timeline, error) {
	tl, err := a.replay(ctx, req, a.Out)
	if err != nil {
		return nil, err
	}
	if req.View {
		if err := a.Viewer.View(ctx, tl); err != nil {
			return tl, fmt.Errorf("viewing timeline: %w", err)
		}
	}
	return tl, nil
}

func (a *App) replay(ctx context.Context, req ReplayRequest, out io.Writer) (*undiff.Timeline, error) {
	started := a.now()

	read := a.ReadLog
	if read == nil {
		read = fs.ReadLog
	}
	data, err := read(req.LogPath)
	if err != nil {
		return nil, err
	}

	tl, err := a.Replayer.Replay(data)
	if err != nil {
		return nil, fmt.Errorf("replaying %s: %w", req.LogPath, err)
	}

	if err := a.Exporter.Export(req.OutputPath, tl); err != nil {
		return nil, err
	}

	run := undiff.Run{
		LogPath:    req.LogPath,
		OutputPath: req.OutputPath,
		Format:     req.Format,
		Stats:      tl.Stats,
		StartedAt:  started,
		Duration:   a.now().Sub(started),
	}
	if a.Store != nil {
		// History is best-effort: the export already succeeded.
		if err := a.Store.Record(ctx, run); err != nil {
			a.logger().Warn("recording run history", "error", err)
		}
	}

	a.logger().Info("replay complete",
		"log", req.LogPath,
		"output", req.OutputPath,
		"retained", tl.Stats.Retained,
		"dropped", tl.Stats.Dropped(),
		"skipped_ops", tl.Stats.OpsSkipped,
	)
	writeReport(out, req, tl.Stats)
	return tl, nil
}

// Watch replays once, then again after every change the watcher reports.
// With req.View the timeline is shown live; closing the viewer stops the
// watch.
func (a *App) Watch(ctx context.Context, req ReplayRequest, w undiff.Watcher) error {
	if !req.View {
		if _, err := a.replay(ctx, req, a.Out); err != nil {
			return err
		}
		return w.Run(ctx, func(ctx context.Context) error {
			_, err := a.replay(ctx, req, a.Out)
			return err
		})
	}

	// The viewer owns the terminal; reports would corrupt the screen.
	tl, err := a.replay(ctx, req, io.Discard)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	updates := make(chan *undiff.Timeline, 1)

	g.Go(func() error {
		defer close(updates)
		return w.Run(gctx, func(ctx context.Context) error {
			next, err := a.replay(ctx, req, io.Discard)
			if err != nil {
				return err
			}
			select {
			case updates <- next:
			case <-ctx.Done():
			}
			return nil
		})
	})
	g.Go(func() error {
		defer cancel()
		if err := a.Viewer.Follow(gctx, tl, updates); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("viewing timeline: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// View loads a previously exported timeline and displays it.
func (a *App) View(ctx context.Context, path string) error {
	format := a.Detect(path)
	loader, ok := a.Loaders[format]
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	entries, err := loader.Load(path)
	if err != nil {
		return err
	}
	return a.Viewer.View(ctx, &undiff.Timeline{Entries: entries})
}

// History prints the most recent runs, newest first.
func (a *App) History(ctx context.Context, limit int) error {
	if a.Store == nil {
		return errors.New("run history is disabled")
	}

	runs, err := a.Store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.Out, "No runs recorded.")
		return nil
	}

	t := table.New().
		Headers("STARTED", "LOG", "OUTPUT", "RETAINED", "DROPPED", "SKIPPED", "DURATION")
	for _, r := range runs {
		t.Row(
			r.StartedAt.Local().Format(time.DateTime),
			r.LogPath,
			r.OutputPath,
			strconv.Itoa(r.Stats.Retained),
			strconv.Itoa(r.Stats.Dropped()),
			strconv.Itoa(r.Stats.OpsSkipped),
			r.Duration.Round(time.Millisecond).String(),
		)
	}
	fmt.Fprintln(a.Out, t.Render())
	return nil
}

func writeReport(w io.Writer, req ReplayRequest, s undiff.Stats) {
	fmt.Fprintf(w, "Replayed %s -> %s (%s)\n", req.LogPath, req.OutputPath, req.Format)
	fmt.Fprintf(w, "  lines:    %d retained, %d dropped (%d irrelevant, %d unparseable, %d redacted)\n",
		s.Retained, s.Dropped(), s.Irrelevant, s.Unparseable, s.Redacted)
	fmt.Fprintf(w, "  diff ops: %d applied, %d skipped\n", s.OpsApplied, s.OpsSkipped)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}
