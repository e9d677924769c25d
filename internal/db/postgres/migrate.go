package postgres

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/jobsearch/internal/db"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const dimensionsPlaceholder = "{{EMBEDDING_DIMENSIONS}}"

// Migrate applies every embedded schema file in name order. Files are idempotent, so
// running Migrate against an up-to-date database is a no-op. dimensions sizes the
// embedding column and must match the embedding model.
func (s *Store) Migrate(ctx context.Context, dimensions int) error {
	stmts, err := schemaStatements(dimensions)
	if err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	for _, st := range stmts {
		if _, err := s.pool.Exec(ctx, st.sql); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("apply %s: %w", st.name, err)}
		}
	}
	return nil
}

type statement struct {
	name string
	sql  string
}

func schemaStatements(dimensions int) ([]statement, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", dimensions)
	}
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	out := make([]statement, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		sql := strings.ReplaceAll(string(data), dimensionsPlaceholder, strconv.Itoa(dimensions))
		out = append(out, statement{name: entry.Name(), sql: sql})
	}
	return out, nil
}
