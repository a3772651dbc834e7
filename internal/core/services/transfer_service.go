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
	"github.com/hearthsoft/household_ledger_app/internal/utils/amortization"
	"github.com/shopspring/decimal"
)

// transferService implements the TransferSvcFacade interface
type transferService struct {
	BaseService
	transferRepo portsrepo.TransferRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	closingRepo  portsrepo.ClosingRepositoryFacade
}

// NewTransferService creates a new transfer service.
func NewTransferService(transferRepo portsrepo.TransferRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, closingRepo portsrepo.ClosingRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.TransferSvcFacade {
	return &transferService{
		BaseService:  BaseService{HouseholdAuthorizer: authorizer},
		transferRepo: transferRepo,
		accountRepo:  accountRepo,
		closingRepo:  closingRepo,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// CreateRule persists a recurring transfer rule. Instances are not generated
// here; the scheduler materializes them as they come due.
func (s *transferService) CreateRule(ctx context.Context, householdID string, req dto.CreateTransferRuleRequest, creatorUserID string) (*domain.TransferRule, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w: source and destination accounts must differ", apperrors.ErrValidation)
	}
	if !req.AmountExpected.IsPositive() {
		return nil, fmt.Errorf("%w: expected amount must be positive", apperrors.ErrValidation)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{req.FromAccountID, req.ToAccountID})
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for rule creation")
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, accountID := range []string{req.FromAccountID, req.ToAccountID} {
		account, ok := accounts[accountID]
		if !ok || account.HouseholdID != householdID {
			return nil, fmt.Errorf("%w: account %s not found in household", apperrors.ErrValidation, accountID)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, accountID)
		}
	}

	now := time.Now()
	rule := domain.TransferRule{
		RuleID:         uuid.NewString(),
		HouseholdID:    householdID,
		Name:           req.Name,
		FromAccountID:  req.FromAccountID,
		ToAccountID:    req.ToAccountID,
		AmountExpected: req.AmountExpected,
		DayOfMonth:     req.DayOfMonth,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.transferRepo.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save transfer rule", slog.String("name", req.Name))
		return nil, err
	}

	s.LogInfo(ctx, "Transfer rule created successfully", slog.String("rule_id", rule.RuleID))
	return &rule, nil
}

func (s *transferService) UpdateRule(ctx context.Context, householdID string, ruleID string, req dto.UpdateTransferRuleRequest, requestingUserID string) (*domain.TransferRule, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	rule, err := s.findHouseholdRule(ctx, householdID, ruleID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != rule.Name {
		rule.Name = *req.Name
		updated = true
	}
	if req.AmountExpected != nil && !req.AmountExpected.Equal(rule.AmountExpected) {
		if !req.AmountExpected.IsPositive() {
			return nil, fmt.Errorf("%w: expected amount must be positive", apperrors.ErrValidation)
		}
		rule.AmountExpected = *req.AmountExpected
		updated = true
	}
	if req.DayOfMonth != nil && *req.DayOfMonth != rule.DayOfMonth {
		rule.DayOfMonth = *req.DayOfMonth
		updated = true
	}
	if req.IsActive != nil && *req.IsActive != rule.IsActive {
		rule.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		return rule, nil
	}

	now := time.Now()
	rule.LastUpdatedAt = now
	rule.LastUpdatedBy = requestingUserID

	if err := s.transferRepo.UpdateRule(ctx, *rule); err != nil {
		s.LogError(ctx, err, "Failed to update transfer rule", slog.String("rule_id", ruleID))
		return nil, err
	}

	s.LogInfo(ctx, "Transfer rule updated successfully", slog.String("rule_id", ruleID))
	return rule, nil
}

// DeactivateRule stops future materialization. Already-pending instances stay.
func (s *transferService) DeactivateRule(ctx context.Context, householdID string, ruleID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return err
	}

	if _, err := s.findHouseholdRule(ctx, householdID, ruleID); err != nil {
		return err
	}

	now := time.Now()
	if err := s.transferRepo.DeactivateRule(ctx, ruleID, requestingUserID, now); err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate transfer rule", slog.String("rule_id", ruleID))
		}
		return err
	}

	s.LogInfo(ctx, "Transfer rule deactivated successfully", slog.String("rule_id", ruleID))
	return nil
}

func (s *transferService) ListRules(ctx context.Context, householdID string, requestingUserID string, includeInactive bool) ([]domain.TransferRule, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rules, err := s.transferRepo.ListRulesByHousehold(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transfer rules", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list transfer rules: %w", err)
	}

	if includeInactive {
		return rules, nil
	}
	active := make([]domain.TransferRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active, nil
}

func (s *transferService) ListInstances(ctx context.Context, householdID string, requestingUserID string, params dto.ListTransferInstancesParams) ([]domain.TransferInstance, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	var status *domain.TransferInstanceStatus
	if params.Status != nil {
		st := domain.TransferInstanceStatus(*params.Status)
		status = &st
	}

	instances, err := s.transferRepo.ListInstancesByHousehold(ctx, householdID, status)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transfer instances", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list transfer instances: %w", err)
	}

	if params.YearMonth == nil {
		return instances, nil
	}
	monthStart, monthEnd, err := parseYearMonth(*params.YearMonth)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.TransferInstance, 0, len(instances))
	for _, in := range instances {
		if !in.DueDate.Before(monthStart) && in.DueDate.Before(monthEnd) {
			filtered = append(filtered, in)
		}
	}
	return filtered, nil
}

// ConfirmInstance posts the transfer entry and flips the instance to CONFIRMED.
// The repository only transitions PENDING instances, so a repeated confirm
// returns a conflict instead of double-posting.
func (s *transferService) ConfirmInstance(ctx context.Context, householdID string, instanceID string, req dto.ConfirmTransferRequest, requestingUserID string) (*domain.TransferInstance, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	instance, err := s.transferRepo.FindInstanceByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	rule, err := s.findHouseholdRule(ctx, householdID, instance.RuleID)
	if err != nil {
		return nil, err
	}
	if instance.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: instance %s is already %s", apperrors.ErrConflict, instanceID, instance.Status)
	}

	amount := instance.ExpectedAmount
	if req.ActualAmount != nil {
		if !req.ActualAmount.IsPositive() {
			return nil, fmt.Errorf("%w: actual amount must be positive", apperrors.ErrValidation)
		}
		amount = *req.ActualAmount
	}
	occurredAt := instance.DueDate
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	closed, err := s.closingRepo.HasClosingForDate(ctx, householdID, occurredAt)
	if err != nil {
		s.LogError(ctx, err, "Failed to check month closing for transfer confirmation")
		return nil, fmt.Errorf("failed to check month closing: %w", err)
	}
	if closed {
		return nil, fmt.Errorf("%w: the month of %s is closed", apperrors.ErrConflict, occurredAt.Format("2006-01"))
	}

	now := time.Now()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     requestingUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: requestingUserID,
	}

	entry := domain.Entry{
		EntryID:     entryID,
		HouseholdID: householdID,
		OccurredAt:  occurredAt,
		EntryType:   domain.EntryTransfer,
		Memo:        fmt.Sprintf("Auto transfer: %s", rule.Name),
		Source:      domain.SourceAutoTransfer,
		AuditFields: audit,
	}
	lines := []domain.Line{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: rule.FromAccountID, Amount: amount.Neg(), AuditFields: audit},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: rule.ToAccountID, Amount: amount, AuditFields: audit},
	}
	balanceChanges := map[string]decimal.Decimal{
		rule.FromAccountID: amount.Neg(),
		rule.ToAccountID:   amount,
	}

	confirmed := *instance
	confirmed.Status = domain.TransferConfirmed
	confirmed.ConfirmedAt = &now
	confirmed.GeneratedEntryID = &entryID
	confirmed.LastUpdatedAt = now
	confirmed.LastUpdatedBy = requestingUserID

	if err := s.transferRepo.ConfirmInstance(ctx, confirmed, entry, lines, balanceChanges); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to confirm transfer instance", slog.String("instance_id", instanceID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Transfer instance confirmed",
		slog.String("instance_id", instanceID),
		slog.String("entry_id", entryID))
	return &confirmed, nil
}

// SkipInstance marks a PENDING instance SKIPPED without posting anything.
func (s *transferService) SkipInstance(ctx context.Context, householdID string, instanceID string, requestingUserID string) (*domain.TransferInstance, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	instance, err := s.transferRepo.FindInstanceByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findHouseholdRule(ctx, householdID, instance.RuleID); err != nil {
		return nil, err
	}
	if instance.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: instance %s is already %s", apperrors.ErrConflict, instanceID, instance.Status)
	}

	now := time.Now()
	if err := s.transferRepo.SkipInstance(ctx, instanceID, requestingUserID, now); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to skip transfer instance", slog.String("instance_id", instanceID))
		}
		return nil, err
	}

	instance.Status = domain.TransferSkipped
	instance.LastUpdatedAt = now
	instance.LastUpdatedBy = requestingUserID

	s.LogInfo(ctx, "Transfer instance skipped", slog.String("instance_id", instanceID))
	return instance, nil
}

// MaterializeDueInstances creates PENDING instances for every active rule whose
// due dates have arrived, then flags instances more than one month overdue as
// MISSED. The (rule, due date) uniqueness in the repository makes repeated runs
// harmless.
func (s *transferService) MaterializeDueInstances(ctx context.Context, now time.Time) (int, int, error) {
	rules, err := s.transferRepo.ListActiveRules(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active transfer rules")
		return 0, 0, fmt.Errorf("failed to list active rules: %w", err)
	}

	created := 0
	for _, rule := range rules {
		n, err := s.materializeRule(ctx, rule, now)
		if err != nil {
			s.LogError(ctx, err, "Failed to materialize transfer rule", slog.String("rule_id", rule.RuleID))
			return created, 0, err
		}
		created += n
	}

	missed, err := s.transferRepo.MarkMissedBefore(ctx, now.AddDate(0, -1, 0), now)
	if err != nil {
		s.LogError(ctx, err, "Failed to mark missed transfer instances")
		return created, 0, fmt.Errorf("failed to mark missed instances: %w", err)
	}

	if created > 0 || missed > 0 {
		s.LogInfo(ctx, "Transfer materialization run completed",
			slog.Int("created", created),
			slog.Int("missed", missed))
	}
	return created, missed, nil
}

// materializeRule inserts every due date from the rule's last materialized
// month (or its creation month) up to now.
func (s *transferService) materializeRule(ctx context.Context, rule domain.TransferRule, now time.Time) (int, error) {
	latest, err := s.transferRepo.FindLatestDueDate(ctx, rule.RuleID)
	if err != nil {
		return 0, err
	}

	var cursor time.Time
	if latest != nil {
		cursor = monthStartOf(*latest).AddDate(0, 1, 0)
	} else {
		cursor = monthStartOf(rule.CreatedAt)
		// The first due day may already be behind the rule's creation.
		if amortization.ClampToDay(cursor, rule.DayOfMonth).Before(rule.CreatedAt) {
			cursor = cursor.AddDate(0, 1, 0)
		}
	}

	created := 0
	for {
		dueDate := amortization.ClampToDay(cursor, rule.DayOfMonth)
		if dueDate.After(now) {
			break
		}

		instance := domain.TransferInstance{
			InstanceID:     uuid.NewString(),
			RuleID:         rule.RuleID,
			DueDate:        dueDate,
			ExpectedAmount: rule.AmountExpected,
			Status:         domain.TransferPending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     rule.CreatedBy,
				LastUpdatedAt: now,
				LastUpdatedBy: rule.CreatedBy,
			},
		}
		if err := s.transferRepo.SaveInstance(ctx, instance); err != nil {
			return created, err
		}
		created++
		cursor = cursor.AddDate(0, 1, 0)
	}
	return created, nil
}

// findHouseholdRule fetches a rule and hides rules of other households.
func (s *transferService) findHouseholdRule(ctx context.Context, householdID string, ruleID string) (*domain.TransferRule, error) {
	rule, err := s.transferRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transfer rule", slog.String("rule_id", ruleID))
		}
		return nil, err
	}
	if rule.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}
	return rule, nil
}

// monthStartOf truncates a time to the first instant of its month in UTC.
func monthStartOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
