package fs

import (
	"fmt"
	"os"

	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var (
	_ undiff.Exporter       = (*Exporter)(nil)
	_ undiff.TimelineLoader = (*Loader)(nil)
)

// Exporter encodes a timeline in memory and writes it atomically.
type Exporter struct {
	encoder undiff.Encoder
}

// NewExporter creates an Exporter for the given encoding.
func NewExporter(encoder undiff.Encoder) *Exporter {
	return &Exporter{encoder: encoder}
}

// Export writes the timeline entries to path. Failures wrap
// undiff.ErrOutputWrite and leave any existing file untouched.
func (e *Exporter) Export(path string, tl *undiff.Timeline) error {
	var entries []undiff.TimelineEntry
	if tl != nil {
		entries = tl.Entries
	}

	data, err := e.encoder.Encode(entries)
	if err != nil {
		return fmt.Errorf("%w: encoding timeline: %w", undiff.ErrOutputWrite, err)
	}
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", undiff.ErrOutputWrite, err)
	}
	return nil
}

// Loader reads exported timelines back.
type Loader struct {
	decoder undiff.Decoder
}

// NewLoader creates a Loader for the given encoding.
func NewLoader(decoder undiff.Decoder) *Loader {
	return &Loader{decoder: decoder}
}

// Load reads and decodes the timeline at path.
func (l *Loader) Load(path string) ([]undiff.TimelineEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", undiff.ErrInputMissing, err)
	}
	entries, err := l.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return entries, nil
}
