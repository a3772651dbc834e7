package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo      portsrepo.AccountRepositoryFacade
	entryRepo        portsrepo.EntryRepositoryFacade
	householdService portssvc.HouseholdReaderSvc
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountService)

// WithHouseholdReaderSvc adds the household reader dependency
func WithHouseholdReaderSvc(svc portssvc.HouseholdReaderSvc) ServiceOption {
	return func(s *accountService) {
		s.householdService = svc
	}
}

// WithHouseholdAuthorizer adds the household authorizer dependency
func WithHouseholdAuthorizer(authorizer portssvc.HouseholdAuthorizerSvc) ServiceOption {
	return func(s *accountService) {
		s.HouseholdAuthorizer = authorizer
	}
}

// WithEntryRepository adds the entry repository used for opening-balance postings
func WithEntryRepository(repo portsrepo.EntryRepositoryFacade) ServiceOption {
	return func(s *accountService) {
		s.entryRepo = repo
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account in the household's currency. A non-zero
// opening balance additionally posts a balanced SYSTEM adjustment entry against
// the household's "Opening Balances" account so the double-entry invariant
// covers opening positions too.
func (s *accountService) CreateAccount(ctx context.Context, householdID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, householdID, domain.RoleMember); err != nil {
		s.LogError(ctx, err, "User not authorized to create account",
			slog.String("user_id", creatorUserID),
			slog.String("household_id", householdID))
		return nil, err
	}

	household, err := s.householdService.FindHouseholdByID(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find household for account creation",
			slog.String("household_id", householdID))
		return nil, err
	}

	now := time.Now()
	newAccountID := uuid.NewString()

	account := domain.Account{
		AccountID:      newAccountID,
		HouseholdID:    householdID,
		Name:           req.Name,
		AccountType:    req.AccountType,
		CurrencyCode:   household.CurrencyCode,
		OpeningBalance: req.OpeningBalance,
		Balance:        decimal.Zero,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// The account starts at zero; the opening-balance entry below brings it to
	// OpeningBalance through the same path every other posting takes.
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save account",
				slog.String("account_name", req.Name),
				slog.String("household_id", householdID))
		}
		return nil, err
	}

	if !req.OpeningBalance.IsZero() {
		if err := s.postOpeningBalanceEntry(ctx, &account, creatorUserID, now); err != nil {
			s.LogError(ctx, err, "Failed to post opening balance entry",
				slog.String("account_id", newAccountID))
			return nil, err
		}
		account.Balance = req.OpeningBalance
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", newAccountID),
		slog.String("household_id", householdID))
	return &account, nil
}

// postOpeningBalanceEntry posts [account +OB, opening-balances -OB] as a
// SYSTEM-sourced adjustment dated at creation time.
func (s *accountService) postOpeningBalanceEntry(ctx context.Context, account *domain.Account, userID string, now time.Time) error {
	counter, err := findOrCreateSystemAccount(ctx, s.accountRepo, account.HouseholdID, account.CurrencyCode, openingBalanceAccountName, domain.Virtual, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve opening balances account: %w", err)
	}

	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	entry := domain.Entry{
		EntryID:     entryID,
		HouseholdID: account.HouseholdID,
		OccurredAt:  now,
		EntryType:   domain.EntryAdjustment,
		Memo:        fmt.Sprintf("Opening balance for %s", account.Name),
		Source:      domain.SourceSystem,
		AuditFields: audit,
	}

	lines := []domain.Line{
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   account.AccountID,
			Amount:      account.OpeningBalance,
			AuditFields: audit,
		},
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   counter.AccountID,
			Amount:      account.OpeningBalance.Neg(),
			AuditFields: audit,
		},
	}

	balanceChanges := map[string]decimal.Decimal{
		account.AccountID: account.OpeningBalance,
		counter.AccountID: account.OpeningBalance.Neg(),
	}

	return s.entryRepo.SaveEntry(ctx, entry, lines, balanceChanges)
}

func (s *accountService) GetAccountByID(ctx context.Context, householdID string, accountID string, requestingUserID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	if account.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, householdID string, accountIDs []string, requestingUserID string) (map[string]domain.Account, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by IDs")
		return nil, err
	}

	for id, account := range accounts {
		if account.HouseholdID != householdID {
			delete(accounts, id)
		}
	}
	return accounts, nil
}

func (s *accountService) ListAccounts(ctx context.Context, householdID string, userID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, householdID, params.Limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return &dto.ListAccountsResponse{
		Accounts: dto.ToListAccountResponse(accounts),
	}, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, householdID string, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	account, err := s.GetAccountByID(ctx, householdID, accountID, requestingUserID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != account.Name {
		account.Name = *req.Name
		updated = true
	}
	if req.IsActive != nil && *req.IsActive != account.IsActive {
		account.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		return account, nil
	}

	now := time.Now()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = requestingUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

// DeactivateAccount marks an account inactive. Existing lines keep referencing
// it; only new postings are rejected.
func (s *accountService) DeactivateAccount(ctx context.Context, householdID string, accountID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return err
	}

	if _, err := s.GetAccountByID(ctx, householdID, accountID, requestingUserID); err != nil {
		return err
	}

	now := time.Now()
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, requestingUserID, now); err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}

	s.LogInfo(ctx, "Account deactivated successfully", slog.String("account_id", accountID))
	return nil
}

// CalculateAccountBalance returns the transactionally maintained balance.
// Balances are updated in the same transaction as every posted line, so no
// recomputation over lines is needed.
func (s *accountService) CalculateAccountBalance(ctx context.Context, householdID string, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if account.HouseholdID != householdID {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return account.Balance, nil
}
