package bubbletea

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the timeline viewer.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	GotoTop      key.Binding
	GotoBottom   key.Binding
	NextEntry    key.Binding
	PrevEntry    key.Binding
	NextState    key.Binding
	PrevState    key.Binding
	ToggleDelta  key.Binding
	Copy         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "half page down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		NextEntry: key.NewBinding(
			key.WithKeys("n", "l", "right"),
			key.WithHelp("n/l", "next entry"),
		),
		PrevEntry: key.NewBinding(
			key.WithKeys("p", "h", "left"),
			key.WithHelp("p/h", "previous entry"),
		),
		NextState: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next state"),
		),
		PrevState: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "previous state"),
		),
		ToggleDelta: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle delta"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy entry"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
