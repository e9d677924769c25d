package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// registerVectorType enables the binary vector codec on conn once the extension exists.
// Connections opened before Migrate keep pgvector's text encoding.
func registerVectorType(ctx context.Context, conn *pgx.Conn) error {
	var installed bool
	if err := conn.QueryRow(ctx, "SELECT to_regtype('vector') IS NOT NULL").Scan(&installed); err != nil {
		return fmt.Errorf("check vector extension: %w", err)
	}
	if !installed {
		return nil
	}
	if err := pgxvec.RegisterTypes(ctx, conn); err != nil {
		return fmt.Errorf("register vector types: %w", err)
	}
	return nil
}
