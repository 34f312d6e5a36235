package chroma

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// Detector maps exported timeline files to their format name.
type Detector struct{}

// NewDetector creates a new chroma-based format detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFormat returns "json", "jsonl" or "yaml" for the given path, or
// an empty string if the format cannot be determined.
func (d *Detector) DetectFormat(path string) string {
	filename := filepath.Base(path)

	// Line-delimited JSON has no lexer of its own.
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jsonl", ".ndjson":
		return "jsonl"
	}

	lexer := lexers.Match(filename)
	if lexer == nil {
		return ""
	}

	switch lexer.Config().Name {
	case "JSON":
		return "json"
	case "YAML":
		return "yaml"
	default:
		return ""
	}
}
