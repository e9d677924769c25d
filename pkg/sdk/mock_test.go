package jobsearch

import (
	"context"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/domain/suggestion"
	healthuc "github.com/kailas-cloud/jobsearch/internal/usecase/health"
)

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (result.Outcome, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Outcome, error) {
	return m.searchFn(ctx, req)
}

type mockSuggestUC struct {
	suggestFn func(ctx context.Context, query string, c suggestion.Category, limit int) (suggestion.Suggestions, error)
}

func (m *mockSuggestUC) Suggest(
	ctx context.Context, query string, c suggestion.Category, limit int,
) (suggestion.Suggestions, error) {
	return m.suggestFn(ctx, query, c, limit)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}
