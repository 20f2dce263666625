package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRun(ctx context.Context, run Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Run), args.Error(1)
}

func (m *MockStore) ListRuns(ctx context.Context, filter ListFilter) ([]Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Run), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
