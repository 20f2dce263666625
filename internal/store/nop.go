package store

import (
	"context"

	"github.com/google/uuid"
)

// NopStore discards history. Used when STORE_PROVIDER is "none".
type NopStore struct{}

func NewNopStore() *NopStore {
	return &NopStore{}
}

func (NopStore) SaveRun(ctx context.Context, run Run) error {
	return nil
}

func (NopStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	return Run{}, ErrRunNotFound
}

func (NopStore) ListRuns(ctx context.Context, filter ListFilter) ([]Run, error) {
	return []Run{}, nil
}

func (NopStore) Close() error {
	return nil
}
