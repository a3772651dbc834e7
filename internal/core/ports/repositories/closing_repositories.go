package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// ClosingRepositoryFacade defines persistence operations for month closings.
type ClosingRepositoryFacade interface {
	// CloseMonth performs the closing atomically: inserts the closing row
	// (rejecting a duplicate (household, year_month) with apperrors.ErrDuplicate),
	// locks every entry whose occurred_at falls in [monthStart, monthEnd), computes
	// the summary aggregates over that window and persists them on the row.
	CloseMonth(ctx context.Context, closing domain.MonthClosing, monthStart, monthEnd time.Time) (*domain.MonthClosing, error)

	FindClosingByMonth(ctx context.Context, householdID string, yearMonth string) (*domain.MonthClosing, error)
	ListClosings(ctx context.Context, householdID string) ([]domain.MonthClosing, error)
	// HasClosingForDate reports whether the month containing the given date is closed.
	HasClosingForDate(ctx context.Context, householdID string, date time.Time) (bool, error)
}
