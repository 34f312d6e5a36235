// Package lipgloss provides theme implementations using the Lipgloss styling library.
package lipgloss

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var _ undiff.Theme = (*Theme)(nil)

// Theme implements undiff.Theme with Lipgloss-compatible colors.
type Theme struct {
	palette undiff.Palette
}

// Palette returns the semantic color palette for this theme.
func (t *Theme) Palette() undiff.Palette {
	return t.palette
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds
// (Catppuccin Mocha).
func DarkTheme() *Theme {
	return &Theme{
		palette: undiff.Palette{
			Background: "#1e1e2e",
			Foreground: "#cdd6f4",

			State:  "#89b4fa",
			Action: "#f9e2af",

			Added:   "#a6e3a1",
			Deleted: "#f38ba8",
			Context: "#6c7086",

			Key:         "#89b4fa",
			String:      "#a6e3a1",
			Number:      "#fab387",
			Keyword:     "#cba6f7",
			Punctuation: "#9399b2",

			UIBackground: "#313244",
			UIForeground: "#a6adc8",
			UIAccent:     "#89b4fa",
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds
// (Catppuccin Latte).
func LightTheme() *Theme {
	return &Theme{
		palette: undiff.Palette{
			Background: "#eff1f5",
			Foreground: "#4c4f69",

			State:  "#1e66f5",
			Action: "#df8e1d",

			Added:   "#40a02b",
			Deleted: "#d20f39",
			Context: "#9ca0b0",

			Key:         "#1e66f5",
			String:      "#40a02b",
			Number:      "#fe640b",
			Keyword:     "#8839ef",
			Punctuation: "#6c6f85",

			UIBackground: "#e6e9ef",
			UIForeground: "#6c6f85",
			UIAccent:     "#1e66f5",
		},
	}
}

// ThemeByName returns the named theme: "dark", "light", or "" for the default.
func ThemeByName(name string) (*Theme, bool) {
	switch name {
	case "", "dark":
		return DarkTheme(), true
	case "light":
		return LightTheme(), true
	default:
		return nil, false
	}
}

// Styles holds the lipgloss styles the timeline viewer renders with.
type Styles struct {
	State       lipgloss.Style
	Action      lipgloss.Style
	Selected    lipgloss.Style
	Added       lipgloss.Style
	Deleted     lipgloss.Style
	Context     lipgloss.Style
	Hunk        lipgloss.Style
	StatusBar   lipgloss.Style
	StatusFlash lipgloss.Style
}

// NewStyles derives viewer styles from a palette.
func NewStyles(p undiff.Palette) Styles {
	return Styles{
		State:    lipgloss.NewStyle().Foreground(color(p.State)),
		Action:   lipgloss.NewStyle().Foreground(color(p.Action)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(color(p.UIAccent)).Background(color(p.UIBackground)),
		Added:    lipgloss.NewStyle().Foreground(color(p.Added)),
		Deleted:  lipgloss.NewStyle().Foreground(color(p.Deleted)),
		Context:  lipgloss.NewStyle().Foreground(color(p.Context)),
		Hunk:     lipgloss.NewStyle().Foreground(color(p.UIAccent)),
		StatusBar: lipgloss.NewStyle().
			Foreground(color(p.UIForeground)).
			Background(color(p.UIBackground)),
		StatusFlash: lipgloss.NewStyle().
			Bold(true).
			Foreground(color(p.Background)).
			Background(color(p.UIAccent)),
	}
}

// DeltaStyle returns the style for a delta line of the given kind.
func (s Styles) DeltaStyle(op undiff.DeltaOp) lipgloss.Style {
	switch op {
	case undiff.DeltaAdded:
		return s.Added
	case undiff.DeltaDeleted:
		return s.Deleted
	case undiff.DeltaHunk:
		return s.Hunk
	default:
		return s.Context
	}
}

func color(c undiff.Color) lipgloss.TerminalColor {
	if c == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(string(c))
}
