// Package jsonfile encodes timelines as a single pretty-printed JSON array.
package jsonfile

import (
	"bytes"
	"encoding/json"

	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var (
	_ undiff.Encoder = (*Codec)(nil)
	_ undiff.Decoder = (*Codec)(nil)
)

// Codec encodes and decodes timeline entries as an indented JSON array.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Encode returns the entries as a two-space indented array with a
// trailing newline. An empty timeline encodes as "[]".
func (c *Codec) Encode(entries []undiff.TimelineEntry) ([]byte, error) {
	if entries == nil {
		entries = []undiff.TimelineEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses an array of entries.
func (c *Codec) Decode(data []byte) ([]undiff.TimelineEntry, error) {
	entries := []undiff.TimelineEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []undiff.TimelineEntry{}
	}
	return entries, nil
}
