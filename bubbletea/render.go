package bubbletea

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/undiff"
)

// renderContent renders the entry under the cursor.
func (m Model) renderContent() string {
	if len(m.entries) == 0 {
		return "\n(empty timeline)\n"
	}

	e := m.entries[m.cursor]
	var b strings.Builder
	b.WriteString(m.entryHeader(e))
	b.WriteString("\n\n")

	if m.showDelta && e.Kind == undiff.StateEntry {
		b.WriteString(m.renderDelta(e))
		return b.String()
	}

	body, err := bodyJSON(e)
	if err != nil {
		fmt.Fprintf(&b, "(cannot render entry: %v)\n", err)
		return b.String()
	}
	b.WriteString(m.renderJSON(body))
	return b.String()
}

func (m Model) entryHeader(e undiff.TimelineEntry) string {
	if e.Kind == undiff.ActionEntry && e.Action != nil {
		return m.apply(m.styles.Action).Render(fmt.Sprintf("action %s  (line %d)", e.Action.Type, e.Line))
	}
	return m.apply(m.styles.State).Render(fmt.Sprintf("state  (line %d)", e.Line))
}

// renderJSON highlights source line by line, falling back to plain text
// when no tokenizer is configured.
func (m Model) renderJSON(source string) string {
	var lines [][]undiff.Token
	if m.tokenizer != nil {
		lines = m.tokenizer.TokenizeLines("json", source)
	}
	if lines == nil {
		return source + "\n"
	}

	var b strings.Builder
	for _, line := range lines {
		for _, tok := range line {
			if tok.Style.Foreground == "" && !tok.Style.Bold {
				b.WriteString(tok.Text)
				continue
			}
			s := m.newStyle().Bold(tok.Style.Bold)
			if tok.Style.Foreground != "" {
				s = s.Foreground(lipgloss.Color(tok.Style.Foreground))
			}
			b.WriteString(s.Render(tok.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDelta(e undiff.TimelineEntry) string {
	lines, err := m.differ.Diff(m.previousState(m.cursor), e.State)
	if err != nil {
		return fmt.Sprintf("(cannot compute delta: %v)\n", err)
	}
	if len(lines) == 0 {
		return m.apply(m.styles.Context).Render("(no change)") + "\n"
	}

	var b strings.Builder
	for _, l := range lines {
		var prefix string
		switch l.Op {
		case undiff.DeltaAdded:
			prefix = "+"
		case undiff.DeltaDeleted:
			prefix = "-"
		case undiff.DeltaContext:
			prefix = " "
		}
		b.WriteString(m.apply(m.styles.DeltaStyle(l.Op)).Render(prefix + l.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// statusBarView renders the status bar with position info.
func (m Model) statusBarView() string {
	bar := m.apply(m.styles.StatusBar)
	sep := bar.Render(" │ ")

	pos := fmt.Sprintf("entry %d/%d", min(m.cursor+1, len(m.entries)), len(m.entries))
	content := bar.Render(pos) + sep

	if m.showDelta {
		content += bar.Render("delta") + sep
	}
	if m.status != "" {
		content += m.apply(m.styles.StatusFlash).Render(" "+m.status+" ") + sep
	}
	content += bar.Render("n/p:entry  s/S:state  j/k:scroll  d:delta  y:copy  q:quit")

	if m.width > 0 {
		return m.newStyle().MaxWidth(m.width).Render(content)
	}
	return content
}

// newStyle creates a new lipgloss style using the model's renderer.
func (m Model) newStyle() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

// apply rebinds a theme style to the model's renderer.
func (m Model) apply(s lipgloss.Style) lipgloss.Style {
	if m.renderer == nil {
		return s
	}
	return m.renderer.NewStyle().Inherit(s)
}

// bodyJSON renders the state or action of an entry as indented JSON.
func bodyJSON(e undiff.TimelineEntry) (string, error) {
	var v any
	switch {
	case e.Kind == undiff.StateEntry:
		v = e.State
		if e.State == nil {
			v = undiff.Document{}
		}
	case e.Action != nil:
		v = e.Action.Fields()
	default:
		return "", fmt.Errorf("line %d: action entry without action", e.Line)
	}
	return indentJSON(v)
}

// entryJSON renders a whole entry as it appears in an exported timeline.
func entryJSON(e undiff.TimelineEntry) (string, error) {
	return indentJSON(e)
}

func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
