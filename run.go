package undiff

import (
	"context"
	"time"
)

// Run records one completed replay for the history.
type Run struct {
	ID         string
	LogPath    string
	OutputPath string
	Format     string
	Stats      Stats
	StartedAt  time.Time
	Duration   time.Duration
}

// RunStore persists and lists completed runs.
type RunStore interface {
	Record(ctx context.Context, run Run) error
	// List returns the most recent runs first, at most limit of them.
	List(ctx context.Context, limit int) ([]Run, error)
}
