package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// EntryReaderSvc defines read operations for ledger entries
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific entry with its lines.
	GetEntryByID(ctx context.Context, householdID string, entryID string, requestingUserID string) (*domain.Entry, error)

	// ListEntries retrieves a paginated list of entries in a household.
	ListEntries(ctx context.Context, householdID string, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListLinesByAccount retrieves the lines of one account, newest first,
	// each carrying the running balance after it was applied.
	ListLinesByAccount(ctx context.Context, householdID string, accountID string, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// EntryWriterSvc defines write operations for ledger entries
type EntryWriterSvc interface {
	// CreateEntry validates and persists a balanced entry with its lines.
	// Line amounts must sum to exactly zero and the target month must be open,
	// unless the entry type is ADJUSTMENT.
	CreateEntry(ctx context.Context, householdID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.Entry, error)

	// UpdateEntry updates the header of an unlocked entry (lines are immutable).
	UpdateEntry(ctx context.Context, householdID string, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.Entry, error)

	// DeleteEntry removes an unlocked entry and rolls its lines out of the
	// affected account balances.
	DeleteEntry(ctx context.Context, householdID string, entryID string, requestingUserID string) error
}

// LedgerSvcFacade combines all entry-related service interfaces
// This is a facade for clients that need access to all operations
type LedgerSvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
