package event

import (
	"context"
	"testing"

	"github.com/kailas-cloud/jobsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertFn func(ctx context.Context, ev *db.EventRow) error
	attachFn func(ctx context.Context, c *db.ClickRow) (bool, error)
}

func (m *mockStore) InsertSearchEvent(ctx context.Context, ev *db.EventRow) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, ev)
	}
	return nil
}

func (m *mockStore) AttachClick(ctx context.Context, c *db.ClickRow) (bool, error) {
	if m.attachFn != nil {
		return m.attachFn(ctx, c)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
