package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes database transaction control for repositories that
// need multi-statement atomicity.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}
