package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListEntriesFilter narrows an entry listing.
type ListEntriesFilter struct {
	MonthStart *time.Time
	MonthEnd   *time.Time
	AccountID  *string
	CategoryID *string
	EntryType  *domain.EntryType
}

// EntryReader defines read operations for ledger entries and lines.
type EntryReader interface {
	FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error)
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.Line, error)
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.Line, error)
	// ListEntriesByHousehold retrieves a paginated list of entries using token-based pagination.
	ListEntriesByHousehold(ctx context.Context, householdID string, filter ListEntriesFilter, limit int, nextToken *string) ([]domain.Entry, *string, error)
	ListLinesByAccountID(ctx context.Context, householdID, accountID string, limit int, nextToken *string) ([]domain.Line, *string, error)
}

// EntryWriter defines write operations for ledger entries.
type EntryWriter interface {
	// SaveEntry persists an entry and its lines, updating account balances,
	// within a single database transaction.
	SaveEntry(ctx context.Context, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal) error
	// UpdateEntryHeader updates memo/category/occurred_at of an unlocked entry.
	UpdateEntryHeader(ctx context.Context, entry domain.Entry) error
	// DeleteEntry removes an unlocked entry with its lines and reverses the
	// balance deltas, atomically.
	DeleteEntry(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// EntryRepositoryFacade combines all entry repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities.
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
