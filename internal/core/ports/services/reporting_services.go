package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// ReportingSvcFacade defines read-model aggregations over the ledger.
// All figures are computed from lines at read time.
type ReportingSvcFacade interface {
	// GetMonthlySummary aggregates a month's income, expense, transfer volume
	// and net change.
	GetMonthlySummary(ctx context.Context, householdID string, yearMonth string, requestingUserID string) (*domain.MonthlySummary, error)

	// GetCategoryBreakdown totals a month's entries per category. Entries of a
	// child category also roll up into their parent's total.
	GetCategoryBreakdown(ctx context.Context, householdID string, yearMonth string, requestingUserID string) ([]domain.CategoryTotal, error)
}
