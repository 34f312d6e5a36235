// Package logline classifies diagnostic log lines and parses their payloads.
package logline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var (
	_ undiff.Classifier   = (*Classifier)(nil)
	_ undiff.RecordParser = (*Parser)(nil)
)

// Markers are the stable substrings that identify record lines. Log lines
// carry timestamps and other prefixes, so markers are matched anywhere in
// the line rather than against the whole line.
type Markers struct {
	Origin string // Must also appear on diff lines; empty disables the check
	Diff   string // Precedes a JSON array of diff operations
	Action string // Precedes "<name>: <json object>"
}

// DefaultMarkers returns the markers written by the desktop client's log send.
func DefaultMarkers() Markers {
	return Markers{
		Origin: "From Keybase: ",
		Diff:   " Diff: ",
		Action: " Dispatching action: ",
	}
}

// Classifier labels lines by marker. Diff markers take priority over
// action markers.
type Classifier struct {
	markers Markers
}

// NewClassifier creates a Classifier for the given markers.
func NewClassifier(markers Markers) *Classifier {
	return &Classifier{markers: markers}
}

// Classify returns the kind of the line.
func (c *Classifier) Classify(line string) undiff.LineKind {
	m := c.markers
	if m.Diff != "" && strings.Contains(line, m.Diff) &&
		(m.Origin == "" || strings.Contains(line, m.Origin)) {
		return undiff.DiffLine
	}
	if m.Action != "" && strings.Contains(line, m.Action) {
		return undiff.ActionLine
	}
	return undiff.Irrelevant
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used to report action type mismatches.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// Parser extracts diff and action records from classified lines.
type Parser struct {
	markers Markers
	action  *regexp.Regexp
	logger  *slog.Logger
}

// NewParser creates a Parser for the given markers.
func NewParser(markers Markers, opts ...Option) *Parser {
	p := &Parser{
		markers: markers,
		// The name ends at the first colon followed by whitespace and an
		// object, so namespaced names like "tracker:update" survive.
		action: regexp.MustCompile(regexp.QuoteMeta(markers.Action) + `(.+?):\s+(\{.*\})\s*$`),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the record carried by the line.
func (p *Parser) Parse(line undiff.ClassifiedLine) (undiff.Record, error) {
	switch line.Kind {
	case undiff.DiffLine:
		diff, err := p.parseDiff(line.Text)
		if err != nil {
			return undiff.Record{}, fmt.Errorf("line %d: diff: %w", line.Number, err)
		}
		return undiff.Record{Line: line.Number, Kind: undiff.DiffLine, Diff: diff}, nil
	case undiff.ActionLine:
		action, err := p.parseAction(line)
		if err != nil {
			return undiff.Record{}, fmt.Errorf("line %d: action: %w", line.Number, err)
		}
		return undiff.Record{Line: line.Number, Kind: undiff.ActionLine, Action: action}, nil
	default:
		return undiff.Record{}, fmt.Errorf("line %d: %s line has no record", line.Number, line.Kind)
	}
}

var null = []byte("null")

func (p *Parser) parseDiff(text string) (undiff.DiffRecord, error) {
	idx := strings.Index(text, p.markers.Diff)
	if idx < 0 || p.markers.Diff == "" {
		return nil, ErrNoMarker
	}
	payload := bytes.TrimSpace([]byte(text[idx+len(p.markers.Diff):]))
	if len(payload) == 0 || bytes.Equal(payload, null) {
		return nil, undiff.ErrNoPayload
	}

	// A lone object is a batch of one.
	if payload[0] == '{' {
		var op undiff.DiffOperation
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, err
		}
		return undiff.DiffRecord{op}, nil
	}

	var diff undiff.DiffRecord
	if err := json.Unmarshal(payload, &diff); err != nil {
		return nil, err
	}
	if diff == nil {
		diff = undiff.DiffRecord{}
	}
	return diff, nil
}

func (p *Parser) parseAction(line undiff.ClassifiedLine) (*undiff.ActionRecord, error) {
	m := p.action.FindStringSubmatch(line.Text)
	if m == nil {
		return nil, undiff.ErrNoPayload
	}
	name := strings.TrimSpace(m[1])

	var payload map[string]any
	if err := json.Unmarshal([]byte(m[2]), &payload); err != nil {
		return nil, err
	}

	action := &undiff.ActionRecord{Type: name, Payload: payload}
	if t, ok := payload["type"].(string); ok && t != "" {
		if t != name {
			p.logger.Debug("action type differs from logged name",
				"line", line.Number, "name", name, "type", t)
		}
		action.Type = t
	}
	if action.Type == "" {
		return nil, ErrNoActionType
	}
	return action, nil
}

// Parse errors specific to log lines.
var (
	ErrNoMarker     = errors.New("marker not found")
	ErrNoActionType = errors.New("action has no type")
)
