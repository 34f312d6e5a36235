package mock

import (
	"context"

	"github.com/fwojciec/undiff"
)

// Compile-time interface verification.
var _ undiff.RunStore = (*RunStore)(nil)

// RunStore is a mock implementation of undiff.RunStore.
type RunStore struct {
	RecordFn func(ctx context.Context, run undiff.Run) error
	ListFn   func(ctx context.Context, limit int) ([]undiff.Run, error)
}

func (s *RunStore) Record(ctx context.Context, run undiff.Run) error {
	return s.RecordFn(ctx, run)
}

func (s *RunStore) List(ctx context.Context, limit int) ([]undiff.Run, error) {
	return s.ListFn(ctx, limit)
}
