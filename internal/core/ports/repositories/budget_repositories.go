package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetRepositoryFacade defines persistence operations for budget templates.
type BudgetRepositoryFacade interface {
	SaveTemplate(ctx context.Context, template domain.BudgetTemplate) error
	FindTemplateByID(ctx context.Context, budgetID string) (*domain.BudgetTemplate, error)
	ListTemplates(ctx context.Context, householdID string) ([]domain.BudgetTemplate, error)
	UpdateTemplate(ctx context.Context, template domain.BudgetTemplate) error
	DeactivateTemplate(ctx context.Context, budgetID string, userID string, now time.Time) error

	// SumExpenseByCategory returns the absolute expense total per category for
	// entries within [monthStart, monthEnd).
	SumExpenseByCategory(ctx context.Context, householdID string, monthStart, monthEnd time.Time) (map[string]decimal.Decimal, error)
}
