package job

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/jobsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	matchNormalizedFn func(ctx context.Context, text string, limit int) ([]db.JobRow, error)
	fullTextFn        func(ctx context.Context, text string, limit int) ([]db.JobRow, error)
	trigramFn         func(ctx context.Context, text string, floor float64, limit int) ([]db.JobRow, error)
	nearestFn         func(ctx context.Context, vector []float32, limit int) ([]db.JobRow, error)
	anyTokenFn        func(ctx context.Context, tokens []string, limit int) ([]db.JobRow, error)
	recentFn          func(ctx context.Context, limit int) ([]db.JobRow, error)
	distinctValuesFn  func(ctx context.Context, column db.Column, text string, limit int) ([]string, error)
}

func (m *mockStore) MatchNormalized(ctx context.Context, text string, limit int) ([]db.JobRow, error) {
	if m.matchNormalizedFn != nil {
		return m.matchNormalizedFn(ctx, text, limit)
	}
	return nil, nil
}

func (m *mockStore) FullText(ctx context.Context, text string, limit int) ([]db.JobRow, error) {
	if m.fullTextFn != nil {
		return m.fullTextFn(ctx, text, limit)
	}
	return nil, nil
}

func (m *mockStore) Trigram(ctx context.Context, text string, floor float64, limit int) ([]db.JobRow, error) {
	if m.trigramFn != nil {
		return m.trigramFn(ctx, text, floor, limit)
	}
	return nil, nil
}

func (m *mockStore) Nearest(ctx context.Context, vector []float32, limit int) ([]db.JobRow, error) {
	if m.nearestFn != nil {
		return m.nearestFn(ctx, vector, limit)
	}
	return nil, nil
}

func (m *mockStore) AnyToken(ctx context.Context, tokens []string, limit int) ([]db.JobRow, error) {
	if m.anyTokenFn != nil {
		return m.anyTokenFn(ctx, tokens, limit)
	}
	return nil, nil
}

func (m *mockStore) Recent(ctx context.Context, limit int) ([]db.JobRow, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockStore) DistinctValues(ctx context.Context, column db.Column, text string, limit int) ([]string, error) {
	if m.distinctValuesFn != nil {
		return m.distinctValuesFn(ctx, column, text, limit)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testRow(id string, score float64) db.JobRow {
	return db.JobRow{
		ID: id, Title: "Software Engineer", Company: "Acme", Location: "Remote",
		TitleNormalized: "software engineer", CompanyNormalized: "acme", LocationNormalized: "remote",
		Description: "Build things.", PostedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		HasEmbedding: true, Score: score,
	}
}
