package event

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/jobsearch/internal/db"
	"github.com/kailas-cloud/jobsearch/internal/domain/analytics"
)

// store is the consumer interface for the analytics event log (ISP).
type store interface {
	InsertSearchEvent(ctx context.Context, ev *db.EventRow) error
	AttachClick(ctx context.Context, c *db.ClickRow) (bool, error)
}

// Repo persists search events and click attributions.
type Repo struct {
	store store
}

// New creates an event repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Record appends a search event. Recording the same event ID twice is a no-op.
func (r *Repo) Record(ctx context.Context, ev *analytics.SearchEvent) error {
	row := &db.EventRow{
		ID:              ev.ID(),
		Query:           ev.Query(),
		NormalizedQuery: ev.NormalizedQuery(),
		ResultCount:     ev.ResultCount(),
		ElapsedMs:       ev.Elapsed().Milliseconds(),
		Filters:         ev.Filters(),
		LayersUsed:      ev.LayersUsed(),
		FallbackUsed:    ev.FallbackUsed(),
		UserID:          ev.UserID(),
		CreatedAt:       ev.CreatedAt(),
	}
	if row.LayersUsed == nil {
		row.LayersUsed = []string{}
	}
	if err := r.store.InsertSearchEvent(ctx, row); err != nil {
		return fmt.Errorf("record search event %s: %w", ev.ID(), err)
	}
	return nil
}

// AttachClick attributes a click to the newest unclicked event for the same normalized
// query created at or after c.Since. It reports whether an event was found.
func (r *Repo) AttachClick(ctx context.Context, c analytics.Click) (bool, error) {
	ok, err := r.store.AttachClick(ctx, &db.ClickRow{
		NormalizedQuery: c.NormalizedQuery,
		JobID:           c.JobID,
		UserID:          c.UserID,
		ClickedAt:       c.At,
		Since:           c.Since,
	})
	if err != nil {
		return false, fmt.Errorf("attach click for job %s: %w", c.JobID, err)
	}
	return ok, nil
}
