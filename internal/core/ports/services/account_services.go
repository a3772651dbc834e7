package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, householdID string, accountID string, requestingUserID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, householdID string, accountIDs []string, requestingUserID string) (map[string]domain.Account, error)

	// ListAccounts retrieves the accounts of a household.
	ListAccounts(ctx context.Context, householdID string, userID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account. A non-zero opening balance also
	// posts a balanced SYSTEM entry against the household's opening equity.
	CreateAccount(ctx context.Context, householdID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates account details.
	UpdateAccount(ctx context.Context, householdID string, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Its lines remain.
	DeactivateAccount(ctx context.Context, householdID string, accountID string, requestingUserID string) error
}

// AccountCalculatorSvc defines balance calculations for accounts
type AccountCalculatorSvc interface {
	// CalculateAccountBalance returns the current balance of an account.
	CalculateAccountBalance(ctx context.Context, householdID string, accountID string) (decimal.Decimal, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
