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

// budgetService implements the BudgetSvcFacade interface
type budgetService struct {
	BaseService
	budgetRepo   portsrepo.BudgetRepositoryFacade
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewBudgetService creates a new budget service.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade, categoryRepo portsrepo.CategoryRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.BudgetSvcFacade {
	return &budgetService{
		BaseService:  BaseService{HouseholdAuthorizer: authorizer},
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// UpsertBudget creates the monthly budget of a category, or replaces the
// amount when one already exists.
func (s *budgetService) UpsertBudget(ctx context.Context, householdID string, req dto.UpsertBudgetRequest, requestingUserID string) (*domain.BudgetTemplate, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	if !req.MonthlyAmount.IsPositive() {
		return nil, fmt.Errorf("%w: monthly amount must be positive", apperrors.ErrValidation)
	}

	category, err := s.categoryRepo.FindCategoryByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: category not found", apperrors.ErrValidation)
		}
		return nil, err
	}
	if category.HouseholdID != householdID {
		return nil, fmt.Errorf("%w: category not found in household", apperrors.ErrValidation)
	}
	if !category.IsActive {
		return nil, fmt.Errorf("%w: category is inactive", apperrors.ErrValidation)
	}

	now := time.Now()

	// Replace the existing template for the category, if any.
	templates, err := s.budgetRepo.ListTemplates(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget templates", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list budget templates: %w", err)
	}
	for i := range templates {
		if templates[i].CategoryID == req.CategoryID {
			existing := templates[i]
			existing.MonthlyAmount = req.MonthlyAmount
			existing.LastUpdatedAt = now
			existing.LastUpdatedBy = requestingUserID
			if err := s.budgetRepo.UpdateTemplate(ctx, existing); err != nil {
				s.LogError(ctx, err, "Failed to update budget template", slog.String("budget_id", existing.BudgetID))
				return nil, err
			}
			s.LogInfo(ctx, "Budget updated successfully", slog.String("budget_id", existing.BudgetID))
			return &existing, nil
		}
	}

	template := domain.BudgetTemplate{
		BudgetID:      uuid.NewString(),
		HouseholdID:   householdID,
		CategoryID:    req.CategoryID,
		MonthlyAmount: req.MonthlyAmount,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if err := s.budgetRepo.SaveTemplate(ctx, template); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save budget template", slog.String("category_id", req.CategoryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Budget created successfully", slog.String("budget_id", template.BudgetID))
	return &template, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, householdID string, requestingUserID string) ([]domain.BudgetTemplate, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	templates, err := s.budgetRepo.ListTemplates(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget templates", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list budget templates: %w", err)
	}
	if templates == nil {
		return []domain.BudgetTemplate{}, nil
	}
	return templates, nil
}

func (s *budgetService) RemoveBudget(ctx context.Context, householdID string, budgetID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return err
	}

	template, err := s.budgetRepo.FindTemplateByID(ctx, budgetID)
	if err != nil {
		return err
	}
	if template.HouseholdID != householdID {
		return apperrors.ErrNotFound
	}

	now := time.Now()
	if err := s.budgetRepo.DeactivateTemplate(ctx, budgetID, requestingUserID, now); err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate budget template", slog.String("budget_id", budgetID))
		}
		return err
	}

	s.LogInfo(ctx, "Budget removed successfully", slog.String("budget_id", budgetID))
	return nil
}

// GetPerformance compares each budgeted category against its actual expense
// total for the month.
func (s *budgetService) GetPerformance(ctx context.Context, householdID string, yearMonth string, requestingUserID string) ([]domain.BudgetPerformance, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	monthStart, monthEnd, err := parseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}

	templates, err := s.budgetRepo.ListTemplates(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget templates", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list budget templates: %w", err)
	}
	if len(templates) == 0 {
		return []domain.BudgetPerformance{}, nil
	}

	actuals, err := s.budgetRepo.SumExpenseByCategory(ctx, householdID, monthStart, monthEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum expenses by category", slog.String("year_month", yearMonth))
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	categories, err := s.categoryRepo.ListCategories(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories for budget performance")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	namesByID := make(map[string]string, len(categories))
	for _, c := range categories {
		namesByID[c.CategoryID] = c.Name
	}

	performance := make([]domain.BudgetPerformance, 0, len(templates))
	for _, t := range templates {
		actual, ok := actuals[t.CategoryID]
		if !ok {
			actual = decimal.Zero
		}
		performance = append(performance, domain.BudgetPerformance{
			CategoryID:    t.CategoryID,
			CategoryName:  namesByID[t.CategoryID],
			MonthlyAmount: t.MonthlyAmount,
			ActualAmount:  actual,
			OverBudget:    actual.GreaterThan(t.MonthlyAmount),
		})
	}
	return performance, nil
}
