package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/jobsearch/internal/db"
	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/job"
)

// store is the consumer interface for job lookups (ISP).
type store interface {
	MatchNormalized(ctx context.Context, text string, limit int) ([]db.JobRow, error)
	FullText(ctx context.Context, text string, limit int) ([]db.JobRow, error)
	Trigram(ctx context.Context, text string, floor float64, limit int) ([]db.JobRow, error)
	Nearest(ctx context.Context, vector []float32, limit int) ([]db.JobRow, error)
	AnyToken(ctx context.Context, tokens []string, limit int) ([]db.JobRow, error)
	Recent(ctx context.Context, limit int) ([]db.JobRow, error)
	DistinctValues(ctx context.Context, column db.Column, text string, limit int) ([]string, error)
}

// Repo implements the job lookups consumed by usecase/search and usecase/suggest.
type Repo struct {
	store store
}

// New creates a job repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// ExactPrefix returns postings whose normalized title, company or location equals or
// starts with text. Signal is 1 for an exact match and 0 for a prefix match.
func (r *Repo) ExactPrefix(ctx context.Context, text string, limit int) ([]job.Hit, error) {
	rows, err := r.store.MatchNormalized(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("exact/prefix lookup: %w", mapError(err))
	}
	return toHits(rows), nil
}

// FullText returns postings matching every word; Signal is the normalized rank in [0, 1).
func (r *Repo) FullText(ctx context.Context, text string, limit int) ([]job.Hit, error) {
	rows, err := r.store.FullText(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text lookup: %w", mapError(err))
	}
	return toHits(rows), nil
}

// Similar returns postings whose best trigram similarity reaches floor; Signal is that similarity.
func (r *Repo) Similar(ctx context.Context, text string, floor float64, limit int) ([]job.Hit, error) {
	rows, err := r.store.Trigram(ctx, text, floor, limit)
	if err != nil {
		return nil, fmt.Errorf("trigram lookup: %w", mapError(err))
	}
	return toHits(rows), nil
}

// Nearest returns the approximate nearest neighbors of vector; Signal is cosine similarity
// clamped to [0, 1].
func (r *Repo) Nearest(ctx context.Context, vector []float32, limit int) ([]job.Hit, error) {
	rows, err := r.store.Nearest(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector lookup: %w", mapError(err))
	}
	hits := toHits(rows)
	for i := range hits {
		hits[i].Signal = clamp01(hits[i].Signal)
	}
	return hits, nil
}

// AnyToken returns postings containing any token in a lookup field, newest first.
func (r *Repo) AnyToken(ctx context.Context, tokens []string, limit int) ([]job.Hit, error) {
	rows, err := r.store.AnyToken(ctx, tokens, limit)
	if err != nil {
		return nil, fmt.Errorf("token lookup: %w", mapError(err))
	}
	return toHits(rows), nil
}

// Recent returns the newest postings.
func (r *Repo) Recent(ctx context.Context, limit int) ([]job.Hit, error) {
	rows, err := r.store.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recency lookup: %w", mapError(err))
	}
	return toHits(rows), nil
}

// Suggest returns distinct display values of field containing text.
func (r *Repo) Suggest(ctx context.Context, field job.Field, text string, limit int) ([]string, error) {
	col, err := columnFor(field)
	if err != nil {
		return nil, err
	}
	values, err := r.store.DistinctValues(ctx, col, text, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", field, mapError(err))
	}
	return values, nil
}

func columnFor(f job.Field) (db.Column, error) {
	switch f {
	case job.FieldTitle:
		return db.ColumnTitle, nil
	case job.FieldCompany:
		return db.ColumnCompany, nil
	case job.FieldLocation:
		return db.ColumnLocation, nil
	default:
		return "", fmt.Errorf("%w: no suggestions for field %q", domain.ErrInvalidQuery, f)
	}
}

// mapError marks connection failures as store unavailability.
func mapError(err error) error {
	if errors.Is(err, db.ErrConnection) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

func toHits(rows []db.JobRow) []job.Hit {
	hits := make([]job.Hit, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		hits = append(hits, job.Hit{
			Doc: job.Reconstruct(
				row.ID, row.Title, row.Company, row.Location,
				row.TitleNormalized, row.CompanyNormalized, row.LocationNormalized,
				row.Description, row.PostedAt, row.HasEmbedding,
			),
			Signal: row.Score,
		})
	}
	return hits
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
