package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LoanRepositoryFacade defines persistence operations for loans, their rate
// history and their amortization schedule.
type LoanRepositoryFacade interface {
	// CreateLoanWithSchedule inserts the loan, its initial rate row and the full
	// generated schedule in one database transaction.
	CreateLoanWithSchedule(ctx context.Context, loan domain.Loan, rate domain.LoanRate, schedule []domain.LoanScheduleEntry) error

	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)
	ListLoansByHousehold(ctx context.Context, householdID string) ([]domain.Loan, error)
	ListRates(ctx context.Context, loanID string) ([]domain.LoanRate, error)
	ListSchedule(ctx context.Context, loanID string) ([]domain.LoanScheduleEntry, error)
	FindScheduleEntryByID(ctx context.Context, scheduleID string) (*domain.LoanScheduleEntry, error)

	// AddRateAndReplaceSchedule appends a rate row and swaps every unlocked
	// schedule entry starting at fromDate for the regenerated ones, atomically.
	AddRateAndReplaceSchedule(ctx context.Context, rate domain.LoanRate, fromDate time.Time, regenerated []domain.LoanScheduleEntry) error

	// PostLoanPayment marks a schedule entry locked and posts its ledger entry
	// in one database transaction.
	PostLoanPayment(ctx context.Context, scheduleID string, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	DeactivateLoan(ctx context.Context, loanID string, userID string, now time.Time) error
}
