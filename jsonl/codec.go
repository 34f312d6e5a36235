// Package jsonl encodes timelines as JSON Lines, one entry per line.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var (
	_ undiff.Encoder = (*Codec)(nil)
	_ undiff.Decoder = (*Codec)(nil)
)

// maxLineSize is the maximum size for a single JSONL line (16MB).
// A state snapshot carries the whole document, so lines get large.
const maxLineSize = 16 * 1024 * 1024

// Codec encodes and decodes timeline entries as JSONL.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Encode writes one compact JSON object per entry, each newline-terminated.
func (c *Codec) Encode(entries []undiff.TimelineEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Decode reads entries line by line, skipping blank lines.
func (c *Codec) Decode(data []byte) ([]undiff.TimelineEntry, error) {
	entries := []undiff.TimelineEntry{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var e undiff.TimelineEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
