// Package clipboard provides clipboard operations backed by the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/fwojciec/undiff"
)

// Ensure System implements the Clipboard interface.
var _ undiff.Clipboard = (*System)(nil)

// ErrUnavailable is returned when no clipboard utility is installed.
var ErrUnavailable = errors.New("clipboard unavailable")

// System implements Clipboard using the platform clipboard
// (pbcopy, xclip/xsel/wl-copy, or the Windows API).
type System struct {
	write       func(string) error
	unsupported bool
}

// NewSystem returns a clipboard that writes to the system clipboard.
func NewSystem() *System {
	return &System{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// NewSystemWith returns a clipboard that copies with write. It lets
// callers substitute the platform clipboard.
func NewSystemWith(write func(string) error) *System {
	return &System{write: write}
}

// Copy writes content to the system clipboard.
func (s *System) Copy(content string) error {
	if s.unsupported {
		return ErrUnavailable
	}
	if err := s.write(content); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}
