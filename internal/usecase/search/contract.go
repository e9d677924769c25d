package search

import (
	"context"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// Repository defines the document-store lookups the retrieval layers run.
// Every lookup returns at most limit hits.
type Repository interface {
	ExactPrefix(ctx context.Context, text string, limit int) ([]job.Hit, error)
	FullText(ctx context.Context, text string, limit int) ([]job.Hit, error)
	Similar(ctx context.Context, text string, floor float64, limit int) ([]job.Hit, error)
	Nearest(ctx context.Context, vector []float32, limit int) ([]job.Hit, error)
	AnyToken(ctx context.Context, tokens []string, limit int) ([]job.Hit, error)
	Recent(ctx context.Context, limit int) ([]job.Hit, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Recorder receives every completed search. Implementations must not block.
type Recorder interface {
	RecordSearch(ctx context.Context, req *request.Request, q normalize.Query, out *result.Outcome)
}
