package analytics

import (
	"context"

	"github.com/kailas-cloud/jobsearch/internal/domain/analytics"
)

// Repository persists search events and click attributions.
type Repository interface {
	Record(ctx context.Context, ev *analytics.SearchEvent) error
	AttachClick(ctx context.Context, c analytics.Click) (bool, error)
}
