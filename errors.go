package undiff

import (
	"errors"
	"fmt"
)

// Replay-level failures. Only these abort a run.
var (
	ErrInputMissing = errors.New("input log cannot be read")
	ErrOutputWrite  = errors.New("output cannot be written")
)

// Operation-level failures, contained by the applier.
var (
	ErrPathNotFound    = errors.New("path not found")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownKind     = errors.New("unknown diff kind")
	ErrEmptyPath       = errors.New("empty path")
)

// ErrNoPayload is returned by parsers when a classified line carries no
// payload after its marker.
var ErrNoPayload = errors.New("no payload after marker")

// OperationError describes a diff operation that could not be applied.
type OperationError struct {
	Line int      // Source line of the diff record (0 when unknown)
	Op   int      // Position of the operation within its record
	Kind DiffKind // Kind of the failed operation
	Path Path     // Target path of the failed operation
	Err  error    // Underlying cause
}

// Error implements the error interface.
func (e OperationError) Error() string {
	return fmt.Sprintf("line %d: operation %d (%s %s): %v",
		e.Line, e.Op, e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e OperationError) Unwrap() error {
	return e.Err
}
