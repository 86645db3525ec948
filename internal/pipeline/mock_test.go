package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ICTylor/json-to-relational/internal/model"
)

// --- Source Mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context) ([]model.RawObject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawObject), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Persist(g *model.Graph) error {
	args := m.Called(g)
	return args.Error(0)
}

func (m *mockStore) Commit(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
