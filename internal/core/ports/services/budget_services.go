package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// BudgetSvcFacade defines operations for budget templates and performance
type BudgetSvcFacade interface {
	// UpsertBudget creates or replaces the monthly budget of a category.
	UpsertBudget(ctx context.Context, householdID string, req dto.UpsertBudgetRequest, requestingUserID string) (*domain.BudgetTemplate, error)

	// ListBudgets retrieves the active budget templates of a household.
	ListBudgets(ctx context.Context, householdID string, requestingUserID string) ([]domain.BudgetTemplate, error)

	// RemoveBudget deactivates the budget of a category.
	RemoveBudget(ctx context.Context, householdID string, budgetID string, requestingUserID string) error

	// GetPerformance compares each budgeted category's template against its
	// actual expense total for the month.
	GetPerformance(ctx context.Context, householdID string, yearMonth string, requestingUserID string) ([]domain.BudgetPerformance, error)
}
