package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/jobsearch/internal/db"
)

// distinctSQL is formatted with a validated column name only, never with user input.
const distinctSQL = `
SELECT MIN(%[1]s) AS value
FROM jobs
WHERE %[1]s_normalized LIKE $1 ESCAPE '\'
GROUP BY %[1]s_normalized
ORDER BY (%[1]s_normalized = $2) DESC, MIN(%[1]s)
LIMIT $3`

// DistinctValues returns distinct display values of column containing text.
func (s *Store) DistinctValues(ctx context.Context, column db.Column, text string, limit int) ([]string, error) {
	if !column.IsValid() {
		return nil, &db.Error{Op: db.OpDistinct, Err: fmt.Errorf("%w: %q", db.ErrUnknownColumn, column)}
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(distinctSQL, column), "%"+escapeLike(text)+"%", text, limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpDistinct, Err: err}
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, &db.Error{Op: db.OpDistinct, Err: err}
	}
	return values, nil
}
