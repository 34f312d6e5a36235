package mock

import "github.com/fwojciec/undiff"

// Compile-time interface verification.
var (
	_ undiff.Encoder        = (*Encoder)(nil)
	_ undiff.Decoder        = (*Decoder)(nil)
	_ undiff.Exporter       = (*Exporter)(nil)
	_ undiff.TimelineLoader = (*TimelineLoader)(nil)
)

// Encoder is a mock implementation of undiff.Encoder.
type Encoder struct {
	EncodeFn func(entries []undiff.TimelineEntry) ([]byte, error)
}

func (e *Encoder) Encode(entries []undiff.TimelineEntry) ([]byte, error) {
	return e.EncodeFn(entries)
}

// Decoder is a mock implementation of undiff.Decoder.
type Decoder struct {
	DecodeFn func(data []byte) ([]undiff.TimelineEntry, error)
}

func (d *Decoder) Decode(data []byte) ([]undiff.TimelineEntry, error) {
	return d.DecodeFn(data)
}

// Exporter is a mock implementation of undiff.Exporter.
type Exporter struct {
	ExportFn func(path string, tl *undiff.Timeline) error
}

func (e *Exporter) Export(path string, tl *undiff.Timeline) error {
	return e.ExportFn(path, tl)
}

// TimelineLoader is a mock implementation of undiff.TimelineLoader.
type TimelineLoader struct {
	LoadFn func(path string) ([]undiff.TimelineEntry, error)
}

func (l *TimelineLoader) Load(path string) ([]undiff.TimelineEntry, error) {
	return l.LoadFn(path)
}
