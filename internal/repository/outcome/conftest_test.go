package outcome

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	pushFn  func(ctx context.Context, key string, value []byte, keep int) error
	rangeFn func(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

func (m *mockStore) PushCapped(ctx context.Context, key string, value []byte, keep int) error {
	if m.pushFn != nil {
		return m.pushFn(ctx, key, value, keep)
	}
	return nil
}

func (m *mockStore) Range(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func newTestRepo(t *testing.T, keep int) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, keep, zap.NewNop()), ms
}
