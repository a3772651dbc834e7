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
	"github.com/hearthsoft/household_ledger_app/internal/utils/accounting"
)

// ledgerService implements the LedgerSvcFacade interface
type ledgerService struct {
	BaseService
	entryRepo   portsrepo.EntryRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	closingRepo portsrepo.ClosingRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(entryRepo portsrepo.EntryRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, closingRepo portsrepo.ClosingRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: BaseService{HouseholdAuthorizer: authorizer},
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		closingRepo: closingRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateEntry validates and persists a balanced entry. The line amounts must
// sum to exactly zero, every referenced account must be an active account of
// the household, and the target month must be open unless the entry is an
// ADJUSTMENT.
func (s *ledgerService) CreateEntry(ctx context.Context, householdID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.Entry, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	now := time.Now()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	lines := make([]domain.Line, len(req.Lines))
	accountIDs := make([]string, 0, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.Line{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   l.AccountID,
			Amount:      l.Amount,
			Memo:        l.Memo,
			AuditFields: audit,
		}
		accountIDs = append(accountIDs, l.AccountID)
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for entry creation")
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, accountID := range accountIDs {
		account, ok := accounts[accountID]
		if !ok || account.HouseholdID != householdID {
			return nil, fmt.Errorf("%w: account %s not found in household", apperrors.ErrValidation, accountID)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, accountID)
		}
	}

	if req.EntryType != domain.EntryAdjustment {
		closed, err := s.closingRepo.HasClosingForDate(ctx, householdID, req.OccurredAt)
		if err != nil {
			s.LogError(ctx, err, "Failed to check month closing for entry creation")
			return nil, fmt.Errorf("failed to check month closing: %w", err)
		}
		if closed {
			return nil, fmt.Errorf("%w: the month of %s is closed", apperrors.ErrConflict, req.OccurredAt.Format("2006-01"))
		}
	}

	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}

	entry := domain.Entry{
		EntryID:     entryID,
		HouseholdID: householdID,
		OccurredAt:  req.OccurredAt,
		EntryType:   req.EntryType,
		CategoryID:  req.CategoryID,
		Memo:        req.Memo,
		Source:      source,
		AuditFields: audit,
	}

	balanceChanges := accounting.SumByAccount(lines)
	if err := s.entryRepo.SaveEntry(ctx, entry, lines, balanceChanges); err != nil {
		s.LogError(ctx, err, "Failed to save entry", slog.String("entry_id", entryID))
		return nil, err
	}

	entry.Lines = lines
	s.LogInfo(ctx, "Entry created successfully",
		slog.String("entry_id", entryID),
		slog.String("entry_type", string(req.EntryType)))
	return &entry, nil
}

func (s *ledgerService) GetEntryByID(ctx context.Context, householdID string, entryID string, requestingUserID string) (*domain.Entry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find entry by ID", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	if entry.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find lines for entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to fetch entry lines: %w", err)
	}
	entry.Lines = lines
	return entry, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, householdID string, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	filter := portsrepo.ListEntriesFilter{
		AccountID:  params.AccountID,
		CategoryID: params.CategoryID,
	}
	if params.EntryType != nil {
		entryType := domain.EntryType(*params.EntryType)
		filter.EntryType = &entryType
	}
	if params.YearMonth != nil {
		monthStart, monthEnd, err := parseYearMonth(*params.YearMonth)
		if err != nil {
			return nil, err
		}
		filter.MonthStart = &monthStart
		filter.MonthEnd = &monthEnd
	}

	entries, nextToken, err := s.entryRepo.ListEntriesByHousehold(ctx, householdID, filter, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	if params.IncludeLines && len(entries) > 0 {
		entryIDs := make([]string, len(entries))
		for i, e := range entries {
			entryIDs[i] = e.EntryID
		}
		linesByEntry, err := s.entryRepo.FindLinesByEntryIDs(ctx, entryIDs)
		if err != nil {
			s.LogError(ctx, err, "Failed to fetch lines for entries")
			return nil, fmt.Errorf("failed to fetch entry lines: %w", err)
		}
		for i := range entries {
			entries[i].Lines = linesByEntry[entries[i].EntryID]
		}
	}

	resp := &dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entries[i])
	}
	return resp, nil
}

// ListLinesByAccount returns an account's lines newest first, each with the
// running balance after the line was applied.
func (s *ledgerService) ListLinesByAccount(ctx context.Context, householdID string, accountID string, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}

	lines, nextToken, err := s.entryRepo.ListLinesByAccountID(ctx, householdID, accountID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list lines by account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list account lines: %w", err)
	}

	return &dto.ListLinesResponse{
		Lines:     dto.ToLineResponses(lines),
		NextToken: nextToken,
	}, nil
}

// UpdateEntry changes the header of an unlocked entry. Lines are immutable;
// correcting amounts means deleting and re-posting.
func (s *ledgerService) UpdateEntry(ctx context.Context, householdID string, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.Entry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}
	if entry.IsLocked {
		return nil, fmt.Errorf("%w: entry %s belongs to a closed month", apperrors.ErrConflict, entryID)
	}

	updated := false
	if req.OccurredAt != nil && !req.OccurredAt.Equal(entry.OccurredAt) {
		// Moving an entry into a closed month is the same as posting into one.
		if entry.EntryType != domain.EntryAdjustment {
			closed, err := s.closingRepo.HasClosingForDate(ctx, householdID, *req.OccurredAt)
			if err != nil {
				return nil, fmt.Errorf("failed to check month closing: %w", err)
			}
			if closed {
				return nil, fmt.Errorf("%w: the month of %s is closed", apperrors.ErrConflict, req.OccurredAt.Format("2006-01"))
			}
		}
		entry.OccurredAt = *req.OccurredAt
		updated = true
	}
	if req.CategoryID != nil {
		entry.CategoryID = req.CategoryID
		updated = true
	}
	if req.Memo != nil && *req.Memo != entry.Memo {
		entry.Memo = *req.Memo
		updated = true
	}
	if !updated {
		return entry, nil
	}

	now := time.Now()
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = requestingUserID

	if err := s.entryRepo.UpdateEntryHeader(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to update entry header", slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Entry updated successfully", slog.String("entry_id", entryID))
	return entry, nil
}

// DeleteEntry removes an unlocked entry and reverses its balance effects.
func (s *ledgerService) DeleteEntry(ctx context.Context, householdID string, entryID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return err
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.HouseholdID != householdID {
		return apperrors.ErrNotFound
	}
	if entry.IsLocked {
		return fmt.Errorf("%w: entry %s belongs to a closed month", apperrors.ErrConflict, entryID)
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find lines for entry deletion", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to fetch entry lines: %w", err)
	}

	balanceChanges := accounting.SumByAccount(lines)
	for accountID, delta := range balanceChanges {
		balanceChanges[accountID] = delta.Neg()
	}

	now := time.Now()
	if err := s.entryRepo.DeleteEntry(ctx, entryID, balanceChanges, requestingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to delete entry", slog.String("entry_id", entryID))
		return err
	}

	s.LogInfo(ctx, "Entry deleted successfully", slog.String("entry_id", entryID))
	return nil
}

// parseYearMonth turns "YYYY-MM" into the [monthStart, monthEnd) UTC window.
func parseYearMonth(yearMonth string) (time.Time, time.Time, error) {
	monthStart, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: yearMonth must be formatted as YYYY-MM", apperrors.ErrValidation)
	}
	return monthStart, monthStart.AddDate(0, 1, 0), nil
}
