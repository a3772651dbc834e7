package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// ReportingRepositoryFacade defines read-time aggregation queries over the ledger.
type ReportingRepositoryFacade interface {
	// MonthlySummary aggregates entry totals for [monthStart, monthEnd).
	MonthlySummary(ctx context.Context, householdID string, monthStart, monthEnd time.Time) (*domain.MonthlySummary, error)
	// CategoryBreakdown returns per-category totals for [monthStart, monthEnd).
	CategoryBreakdown(ctx context.Context, householdID string, monthStart, monthEnd time.Time) ([]domain.CategoryTotal, error)
}
