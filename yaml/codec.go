// Package yaml encodes timelines as a YAML sequence.
package yaml

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/undiff"
	"gopkg.in/yaml.v3"
)

// Compile-time interface verification.
var (
	_ undiff.Encoder = (*Codec)(nil)
	_ undiff.Decoder = (*Codec)(nil)
)

// Codec encodes and decodes timeline entries as YAML.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Encode returns the entries as a two-space indented YAML sequence.
func (c *Codec) Encode(entries []undiff.TimelineEntry) ([]byte, error) {
	if entries == nil {
		entries = []undiff.TimelineEntry{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a YAML sequence of entries. Values go through their JSON
// form so decoded documents hold the same types as replayed ones.
func (c *Codec) Decode(data []byte) ([]undiff.TimelineEntry, error) {
	var raw []any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make([]undiff.TimelineEntry, 0, len(raw))
	for i, r := range raw {
		js, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		var e undiff.TimelineEntry
		if err := json.Unmarshal(js, &e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
