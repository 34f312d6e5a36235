// Package chroma provides syntax highlighting using the chroma library.
package chroma

import (
	"errors"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var _ undiff.Tokenizer = (*Tokenizer)(nil)

// StyleFunc maps chroma token types to undiff styles.
type StyleFunc func(chromalib.TokenType) undiff.Style

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer creates a new chroma-based tokenizer with the given style function.
// Use StyleFromPalette to create a style function from an undiff.Palette.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// TokenizeLines highlights source and returns its tokens line by line.
// Returns nil if the language is not supported or lexing fails, and an
// empty slice for empty source.
//
// Serialized state is mostly punctuation and padding, so tokens are
// compacted: blanks stick to the token before them on the same line and
// neighbours that render alike merge. `": "` and `},` come out as single
// tokens. Leading indentation stays an unstyled token of its own.
func (t *Tokenizer) TokenizeLines(language, source string) [][]undiff.Token {
	if source == "" {
		return [][]undiff.Token{}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}

	tokens, err := chromalib.Tokenise(lexer, nil, source)
	if err != nil {
		return nil
	}

	var lines lineBuilder
	for _, tok := range tokens {
		style := t.styleFunc(tok.Type)
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				lines.newline()
			}
			lines.add(part, style)
		}
	}
	return lines.finish()
}

// lineBuilder accumulates compacted tokens for each line.
type lineBuilder struct {
	lines   [][]undiff.Token
	current []undiff.Token
}

func (b *lineBuilder) add(text string, style undiff.Style) {
	if text == "" {
		return
	}
	n := len(b.current)
	if n == 0 {
		b.current = append(b.current, undiff.Token{Text: text, Style: style})
		return
	}
	last := &b.current[n-1]
	blank := strings.TrimSpace(text) == ""
	if blank || last.Style == style {
		last.Text += text
		return
	}
	b.current = append(b.current, undiff.Token{Text: text, Style: style})
}

func (b *lineBuilder) newline() {
	b.lines = append(b.lines, b.current)
	b.current = nil
}

// finish returns the lines. A trailing newline does not start a line.
func (b *lineBuilder) finish() [][]undiff.Token {
	if len(b.current) > 0 {
		b.lines = append(b.lines, b.current)
	}
	if b.lines == nil {
		return [][]undiff.Token{}
	}
	return b.lines
}
