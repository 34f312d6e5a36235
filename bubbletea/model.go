package bubbletea

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/undiff"
	theme "github.com/fwojciec/undiff/lipgloss"
)

// TimelineMsg replaces the timeline on screen, keeping the cursor position
// where the new timeline allows it.
type TimelineMsg struct {
	Timeline *undiff.Timeline
}

// Model is the Bubble Tea model for browsing a timeline one entry at a time.
type Model struct {
	entries []undiff.TimelineEntry
	cursor  int

	tokenizer undiff.Tokenizer
	differ    undiff.Differ
	clipboard undiff.Clipboard

	// UI state
	viewport   viewport.Model
	keymap     KeyMap
	styles     theme.Styles
	renderer   *lipgloss.Renderer
	showDelta  bool
	status     string
	width      int
	ready      bool
	pendingKey string
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	renderer  *lipgloss.Renderer
	theme     undiff.Theme
	tokenizer undiff.Tokenizer
	differ    undiff.Differ
	clipboard undiff.Clipboard
	showDelta bool
}

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.renderer = r
	}
}

// WithTheme sets the theme for the model.
func WithTheme(t undiff.Theme) ModelOption {
	return func(cfg *modelConfig) {
		cfg.theme = t
	}
}

// WithTokenizer sets the tokenizer for JSON highlighting.
func WithTokenizer(t undiff.Tokenizer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.tokenizer = t
	}
}

// WithDiffer enables the delta view.
func WithDiffer(d undiff.Differ) ModelOption {
	return func(cfg *modelConfig) {
		cfg.differ = d
	}
}

// WithClipboard enables copying the current entry.
func WithClipboard(c undiff.Clipboard) ModelOption {
	return func(cfg *modelConfig) {
		cfg.clipboard = c
	}
}

// WithDeltaView starts the model with the delta view shown.
func WithDeltaView() ModelOption {
	return func(cfg *modelConfig) {
		cfg.showDelta = true
	}
}

// NewModel creates a new Model over the given entries.
func NewModel(entries []undiff.TimelineEntry, opts ...ModelOption) Model {
	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var palette undiff.Palette
	if cfg.theme != nil {
		palette = cfg.theme.Palette()
	} else {
		palette = theme.DefaultTheme().Palette()
	}

	return Model{
		entries:   entries,
		tokenizer: cfg.tokenizer,
		differ:    cfg.differ,
		clipboard: cfg.clipboard,
		keymap:    DefaultKeyMap(),
		styles:    theme.NewStyles(palette),
		renderer:  cfg.renderer,
		showDelta: cfg.showDelta && cfg.differ != nil,
	}
}

// Cursor returns the index of the entry on screen.
func (m Model) Cursor() int {
	return m.cursor
}

// ShowDelta reports whether the delta view is active.
func (m Model) ShowDelta() bool {
	return m.showDelta
}

// Status returns the last status message, e.g. a copy confirmation.
func (m Model) Status() string {
	return m.status
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TimelineMsg:
		m.reload(msg.Timeline)
		return m, nil
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-statusBarHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - statusBarHeight
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle multi-key sequences (gg for go to top)
	if m.pendingKey == "g" && key.Matches(msg, m.keymap.GotoTop) {
		m.viewport.GotoTop()
		m.pendingKey = ""
		return m, nil
	}
	if key.Matches(msg, m.keymap.GotoTop) {
		m.pendingKey = "g"
		return m, nil
	}
	m.pendingKey = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.GotoBottom):
		m.viewport.GotoBottom()
	case key.Matches(msg, m.keymap.HalfPageUp):
		m.viewport.HalfPageUp()
	case key.Matches(msg, m.keymap.HalfPageDown):
		m.viewport.HalfPageDown()
	case key.Matches(msg, m.keymap.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keymap.NextEntry):
		m.move(m.cursor + 1)
	case key.Matches(msg, m.keymap.PrevEntry):
		m.move(m.cursor - 1)
	case key.Matches(msg, m.keymap.NextState):
		if i := m.findState(m.cursor+1, 1); i >= 0 {
			m.move(i)
		}
	case key.Matches(msg, m.keymap.PrevState):
		if i := m.findState(m.cursor-1, -1); i >= 0 {
			m.move(i)
		}
	case key.Matches(msg, m.keymap.ToggleDelta):
		if m.differ != nil {
			m.showDelta = !m.showDelta
			m.refresh()
		}
	case key.Matches(msg, m.keymap.Copy):
		m.copyCurrent()
	}
	return m, nil
}

// move selects entry i, clamped to the timeline.
func (m *Model) move(i int) {
	if len(m.entries) == 0 {
		return
	}
	i = max(0, min(i, len(m.entries)-1))
	if i == m.cursor {
		return
	}
	m.cursor = i
	m.status = ""
	m.refresh()
	m.viewport.GotoTop()
}

func (m *Model) reload(tl *undiff.Timeline) {
	if tl == nil {
		return
	}
	m.entries = tl.Entries
	m.cursor = max(0, min(m.cursor, len(m.entries)-1))
	m.status = fmt.Sprintf("reloaded %d entries", len(m.entries))
	m.refresh()
}

// findState returns the index of the first state entry at or after from
// in the given direction, or -1.
func (m Model) findState(from, step int) int {
	for i := from; i >= 0 && i < len(m.entries); i += step {
		if m.entries[i].Kind == undiff.StateEntry {
			return i
		}
	}
	return -1
}

// previousState returns the state snapshot preceding entry i, or an empty
// document when i is the first state.
func (m Model) previousState(i int) undiff.Document {
	if j := m.findState(i-1, -1); j >= 0 {
		return m.entries[j].State
	}
	return undiff.Document{}
}

func (m *Model) copyCurrent() {
	if m.clipboard == nil || len(m.entries) == 0 {
		return
	}
	e := m.entries[m.cursor]
	text, err := entryJSON(e)
	if err == nil {
		err = m.clipboard.Copy(text)
	}
	if err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("copied line %d", e.Line)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusBarView())
}
