package suggest

import (
	"context"

	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/domain/suggestion"
)

// Repository provides autocomplete values and trigram lookups.
type Repository interface {
	Suggest(ctx context.Context, field job.Field, text string, limit int) ([]string, error)
	Similar(ctx context.Context, text string, floor float64, limit int) ([]job.Hit, error)
}

// Cache stores complete suggestion responses.
type Cache interface {
	Get(ctx context.Context, category suggestion.Category, text string, limit int) (suggestion.Suggestions, bool, error)
	Put(ctx context.Context, category suggestion.Category, text string, limit int, s *suggestion.Suggestions) error
}
