package postgres

import (
	"context"

	"github.com/kailas-cloud/jobsearch/internal/db"
)

const insertEventSQL = `
INSERT INTO search_events (
	id, query, normalized_query, result_count, elapsed_ms,
	filters, layers_used, fallback_used, user_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
ON CONFLICT (id) DO NOTHING`

const attachClickSQL = `
UPDATE search_events SET clicked_job_id = $2, clicked_at = $3
WHERE id = (
	SELECT id FROM search_events
	WHERE normalized_query = $1
		AND created_at >= $4
		AND clicked_job_id IS NULL
		AND ($5 = '' OR user_id = $5)
	ORDER BY created_at DESC
	LIMIT 1
)`

// InsertSearchEvent appends one search event.
func (s *Store) InsertSearchEvent(ctx context.Context, ev *db.EventRow) error {
	filters := ev.Filters
	if filters == nil {
		filters = map[string]any{}
	}
	layers := ev.LayersUsed
	if layers == nil {
		layers = []string{}
	}
	_, err := s.pool.Exec(ctx, insertEventSQL,
		ev.ID, ev.Query, ev.NormalizedQuery, ev.ResultCount, ev.ElapsedMs,
		filters, layers, ev.FallbackUsed, ev.UserID, ev.CreatedAt,
	)
	if err != nil {
		return &db.Error{Op: db.OpInsertEvent, Err: err}
	}
	return nil
}

// AttachClick records the click on the newest unclicked event for the same query
// (and user, when given) created at or after c.Since.
func (s *Store) AttachClick(ctx context.Context, c *db.ClickRow) (bool, error) {
	tag, err := s.pool.Exec(ctx, attachClickSQL, c.NormalizedQuery, c.JobID, c.ClickedAt, c.Since, c.UserID)
	if err != nil {
		return false, &db.Error{Op: db.OpAttachClick, Err: err}
	}
	return tag.RowsAffected() == 1, nil
}
