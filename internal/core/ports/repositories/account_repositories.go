package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	// FindAccountByName looks an account up by its exact name within a household.
	FindAccountByName(ctx context.Context, householdID string, name string) (*domain.Account, error)
	ListAccounts(ctx context.Context, householdID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	UpdateAccount(ctx context.Context, account domain.Account) error
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountTxOperations are account operations that participate in a caller-owned
// database transaction. Used by every flow that posts ledger lines.
type AccountTxOperations interface {
	// FindAccountsByIDsForUpdate retrieves accounts by IDs and locks the rows.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)
	// UpdateAccountBalancesInTx applies signed balance deltas to accounts.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTxOperations
}
