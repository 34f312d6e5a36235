package mock

import (
	"context"

	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var (
	_ undiff.LiveViewer = (*Viewer)(nil)
	_ undiff.Watcher    = (*Watcher)(nil)
	_ undiff.Clipboard  = (*Clipboard)(nil)
	_ undiff.Differ     = (*Differ)(nil)
	_ undiff.Tokenizer  = (*Tokenizer)(nil)
)

// Viewer is a mock implementation of undiff.LiveViewer.
type Viewer struct {
	ViewFn   func(ctx context.Context, tl *undiff.Timeline) error
	FollowFn func(ctx context.Context, tl *undiff.Timeline, updates <-chan *undiff.Timeline) error
}

func (v *Viewer) View(ctx context.Context, tl *undiff.Timeline) error {
	return v.ViewFn(ctx, tl)
}

func (v *Viewer) Follow(ctx context.Context, tl *undiff.Timeline, updates <-chan *undiff.Timeline) error {
	return v.FollowFn(ctx, tl, updates)
}

// Watcher is a mock implementation of undiff.Watcher.
type Watcher struct {
	RunFn func(ctx context.Context, onChange func(context.Context) error) error
}

func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	return w.RunFn(ctx, onChange)
}

// Clipboard is a mock implementation of undiff.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}

// Differ is a mock implementation of undiff.Differ.
type Differ struct {
	DiffFn func(prev, next undiff.Document) ([]undiff.DeltaLine, error)
}

func (d *Differ) Diff(prev, next undiff.Document) ([]undiff.DeltaLine, error) {
	return d.DiffFn(prev, next)
}

// Tokenizer is a mock implementation of undiff.Tokenizer.
type Tokenizer struct {
	TokenizeLinesFn func(language, source string) [][]undiff.Token
}

func (t *Tokenizer) TokenizeLines(language, source string) [][]undiff.Token {
	return t.TokenizeLinesFn(language, source)
}
