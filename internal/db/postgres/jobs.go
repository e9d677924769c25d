package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/jobsearch/internal/db"
)

const jobColumns = `id, title, company, location,
	title_normalized, company_normalized, location_normalized,
	description, posted_at, embedding IS NOT NULL AS has_embedding`

const matchNormalizedSQL = `
SELECT ` + jobColumns + `,
	CASE WHEN title_normalized = $1 OR company_normalized = $1 OR location_normalized = $1
		THEN 1.0 ELSE 0.0 END::float8 AS score
FROM jobs
WHERE title_normalized = $1 OR company_normalized = $1 OR location_normalized = $1
	OR title_normalized LIKE $2 ESCAPE '\'
	OR company_normalized LIKE $2 ESCAPE '\'
	OR location_normalized LIKE $2 ESCAPE '\'
ORDER BY score DESC, posted_at DESC, id
LIMIT $3`

// ts_rank normalization 32 maps rank into [0, 1) as rank/(rank+1).
const fullTextSQL = `
SELECT ` + jobColumns + `, ts_rank(search_vector, q, 32)::float8 AS score
FROM jobs, plainto_tsquery('english', $1) AS q
WHERE search_vector @@ q
ORDER BY score DESC, posted_at DESC, id
LIMIT $2`

// The % operator uses pg_trgm.similarity_threshold, which Trigram sets to the floor
// for the surrounding transaction so the trigram indexes can serve the filter.
const trigramSQL = `
SELECT ` + jobColumns + `,
	GREATEST(
		similarity(title_normalized, $1),
		similarity(company_normalized, $1),
		similarity(location_normalized, $1)
	)::float8 AS score
FROM jobs
WHERE title_normalized % $1 OR company_normalized % $1 OR location_normalized % $1
ORDER BY score DESC, posted_at DESC, id
LIMIT $2`

const setSimilarityThresholdSQL = `SELECT set_config('pg_trgm.similarity_threshold', $1, true)`

const nearestSQL = `
SELECT ` + jobColumns + `, (1 - (embedding <=> $1::vector))::float8 AS score
FROM jobs
WHERE embedding IS NOT NULL
ORDER BY embedding <=> $1::vector, id
LIMIT $2`

const anyTokenSQL = `
SELECT ` + jobColumns + `, 0::float8 AS score
FROM jobs
WHERE title_normalized LIKE ANY($1)
	OR company_normalized LIKE ANY($1)
	OR location_normalized LIKE ANY($1)
ORDER BY posted_at DESC, id
LIMIT $2`

const recentSQL = `
SELECT ` + jobColumns + `, 0::float8 AS score
FROM jobs
ORDER BY posted_at DESC, id
LIMIT $1`

// MatchNormalized returns postings whose normalized lookup fields equal or start with text.
func (s *Store) MatchNormalized(ctx context.Context, text string, limit int) ([]db.JobRow, error) {
	return s.queryJobs(ctx, db.OpMatchNormalized, matchNormalizedSQL, text, escapeLike(text)+"%", limit)
}

// FullText ranks postings against the weighted full-text index.
func (s *Store) FullText(ctx context.Context, text string, limit int) ([]db.JobRow, error) {
	return s.queryJobs(ctx, db.OpFullText, fullTextSQL, text, limit)
}

// Trigram returns postings whose best normalized-field similarity reaches floor.
func (s *Store) Trigram(ctx context.Context, text string, floor float64, limit int) ([]db.JobRow, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, &db.Error{Op: db.OpTrigram, Err: err}
	}
	// read-only: rollback ends the transaction and the threshold with it
	defer func() { _ = tx.Rollback(ctx) }()

	threshold := strconv.FormatFloat(floor, 'f', -1, 64)
	if _, err := tx.Exec(ctx, setSimilarityThresholdSQL, threshold); err != nil {
		return nil, &db.Error{Op: db.OpTrigram, Err: fmt.Errorf("set similarity threshold: %w", err)}
	}
	return collectJobs(ctx, tx, db.OpTrigram, trigramSQL, text, limit)
}

// Nearest runs the HNSW cosine search; Score is 1 - cosine distance.
func (s *Store) Nearest(ctx context.Context, vector []float32, limit int) ([]db.JobRow, error) {
	if len(vector) == 0 {
		return nil, &db.Error{Op: db.OpNearest, Err: fmt.Errorf("empty query vector")}
	}
	return s.queryJobs(ctx, db.OpNearest, nearestSQL, pgvector.NewVector(vector), limit)
}

// AnyToken returns postings where any token is a substring of a normalized lookup field.
func (s *Store) AnyToken(ctx context.Context, tokens []string, limit int) ([]db.JobRow, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	patterns := make([]string, len(tokens))
	for i, t := range tokens {
		patterns[i] = "%" + escapeLike(t) + "%"
	}
	return s.queryJobs(ctx, db.OpAnyToken, anyTokenSQL, patterns, limit)
}

// Recent returns the newest postings.
func (s *Store) Recent(ctx context.Context, limit int) ([]db.JobRow, error) {
	return s.queryJobs(ctx, db.OpRecent, recentSQL, limit)
}

func (s *Store) queryJobs(ctx context.Context, op, sql string, args ...any) ([]db.JobRow, error) {
	return collectJobs(ctx, s.pool, op, sql, args...)
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func collectJobs(ctx context.Context, q rowQuerier, op, sql string, args ...any) ([]db.JobRow, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	out, err := pgx.CollectRows(rows, scanJobRow)
	if err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	return out, nil
}

func scanJobRow(row pgx.CollectableRow) (db.JobRow, error) {
	var r db.JobRow
	err := row.Scan(
		&r.ID, &r.Title, &r.Company, &r.Location,
		&r.TitleNormalized, &r.CompanyNormalized, &r.LocationNormalized,
		&r.Description, &r.PostedAt, &r.HasEmbedding, &r.Score,
	)
	return r, err
}
