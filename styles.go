package undiff

// Color is a hex color in "#RRGGBB" format. Empty means terminal default.
type Color string

// Palette holds the semantic colors used to render a timeline.
type Palette struct {
	Background Color
	Foreground Color

	// Entry colors
	State  Color // State snapshot headers
	Action Color // Action snapshot headers

	// Delta colors
	Added   Color
	Deleted Color
	Context Color

	// JSON highlighting colors
	Key         Color
	String      Color
	Number      Color
	Keyword     Color // true, false, null
	Punctuation Color

	// UI colors
	UIBackground Color
	UIForeground Color
	UIAccent     Color
}

// Theme provides colors for rendering timelines.
// Different implementations can provide light/dark variants.
type Theme interface {
	Palette() Palette
}
