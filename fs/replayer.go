package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/replay"
)

// Compile-time interface verification.
var _ undiff.Replayer = (*Replayer)(nil)

// Replayer wraps a Replayer with file-based caching. Entries are keyed by
// the log content and a fingerprint of the settings that shape the
// timeline, so changing markers or filters never hits a stale entry.
type Replayer struct {
	inner       undiff.Replayer
	cacheDir    string
	fingerprint string
	logger      *slog.Logger
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// WithLogger sets the logger that reports skipped operations of cached
// timelines. Fresh replays are logged by the inner replayer.
func WithLogger(logger *slog.Logger) ReplayerOption {
	return func(r *Replayer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReplayer creates a new caching replayer.
func NewReplayer(inner undiff.Replayer, cacheDir, fingerprint string, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		inner:       inner,
		cacheDir:    cacheDir,
		fingerprint: fingerprint,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Replay returns a cached timeline or delegates to the inner replayer.
func (r *Replayer) Replay(log []byte) (*undiff.Timeline, error) {
	hash := r.hashInput(log)

	// Check cache
	if cached, err := r.loadFromCache(hash); err == nil {
		for _, opErr := range cached.Skipped {
			replay.LogSkipped(r.logger, opErr)
		}
		return cached, nil
	}

	// Cache miss - delegate to inner
	tl, err := r.inner.Replay(log)
	if err != nil {
		return nil, err
	}

	// Store in cache (best-effort)
	_ = r.saveToCache(hash, tl)

	return tl, nil
}

func (r *Replayer) hashInput(log []byte) string {
	h := sha256.New()
	h.Write([]byte(r.fingerprint))
	h.Write([]byte{0})
	h.Write(log)
	return hex.EncodeToString(h.Sum(nil))
}

func (r *Replayer) cachePath(hash string) string {
	return filepath.Join(r.cacheDir, hash+".json")
}

// cachedTimeline is the on-disk form of a Timeline. Skipped operation
// causes are kept as text.
type cachedTimeline struct {
	Entries []undiff.TimelineEntry `json:"entries"`
	Stats   undiff.Stats           `json:"stats"`
	Skipped []cachedSkip           `json:"skipped,omitempty"`
}

type cachedSkip struct {
	Line  int             `json:"line"`
	Op    int             `json:"op"`
	Kind  undiff.DiffKind `json:"kind"`
	Path  undiff.Path     `json:"path"`
	Error string          `json:"error"`
}

func (r *Replayer) loadFromCache(hash string) (*undiff.Timeline, error) {
	data, err := os.ReadFile(r.cachePath(hash))
	if err != nil {
		return nil, err
	}

	var cached cachedTimeline
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	if cached.Entries == nil {
		cached.Entries = []undiff.TimelineEntry{}
	}

	tl := &undiff.Timeline{Entries: cached.Entries, Stats: cached.Stats}
	for _, s := range cached.Skipped {
		tl.Skipped = append(tl.Skipped, undiff.OperationError{
			Line: s.Line,
			Op:   s.Op,
			Kind: s.Kind,
			Path: s.Path,
			Err:  errors.New(s.Error),
		})
	}
	return tl, nil
}

func (r *Replayer) saveToCache(hash string, tl *undiff.Timeline) error {
	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return err
	}

	cached := cachedTimeline{Entries: tl.Entries, Stats: tl.Stats}
	for _, e := range tl.Skipped {
		s := cachedSkip{Line: e.Line, Op: e.Op, Kind: e.Kind, Path: e.Path}
		if e.Err != nil {
			s.Error = e.Err.Error()
		}
		cached.Skipped = append(cached.Skipped, s)
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	return WriteFileAtomic(r.cachePath(hash), data, 0o644)
}
