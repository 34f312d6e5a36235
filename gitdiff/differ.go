// Package gitdiff computes line deltas between state snapshots using
// go-udiff to write a unified patch and bluekeyes/go-gitdiff to read it.
package gitdiff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var _ undiff.Differ = (*Differ)(nil)

// Differ renders both snapshots as indented JSON and diffs the text.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff returns the delta from prev to next. Identical snapshots yield no
// lines. A nil prev is treated as an empty document.
func (d *Differ) Diff(prev, next undiff.Document) ([]undiff.DeltaLine, error) {
	before, err := render(prev)
	if err != nil {
		return nil, fmt.Errorf("rendering previous state: %w", err)
	}
	after, err := render(next)
	if err != nil {
		return nil, fmt.Errorf("rendering next state: %w", err)
	}

	patch := udiff.Unified("before", "after", before, after)
	if patch == "" {
		return nil, nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return nil, fmt.Errorf("parsing delta: %w", err)
	}

	var lines []undiff.DeltaLine
	for _, f := range files {
		for _, frag := range f.TextFragments {
			lines = append(lines, convertFragment(frag)...)
		}
	}
	return lines, nil
}

// Render returns the indented JSON text used for diffing a snapshot.
func Render(doc undiff.Document) (string, error) {
	return render(doc)
}

func render(doc undiff.Document) (string, error) {
	if doc == nil {
		doc = undiff.Document{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func convertFragment(frag *gitdiff.TextFragment) []undiff.DeltaLine {
	lines := make([]undiff.DeltaLine, 0, len(frag.Lines)+1)
	lines = append(lines, undiff.DeltaLine{
		Op: undiff.DeltaHunk,
		Text: fmt.Sprintf("@@ -%d,%d +%d,%d @@",
			frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines),
	})

	for _, l := range frag.Lines {
		line := undiff.DeltaLine{Text: strings.TrimSuffix(l.Line, "\n")}
		switch l.Op {
		case gitdiff.OpAdd:
			line.Op = undiff.DeltaAdded
		case gitdiff.OpDelete:
			line.Op = undiff.DeltaDeleted
		default:
			line.Op = undiff.DeltaContext
		}
		lines = append(lines, line)
	}
	return lines
}
