package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// LoanReaderSvc defines read operations for loan data
type LoanReaderSvc interface {
	// GetLoanByID retrieves a specific loan.
	GetLoanByID(ctx context.Context, householdID string, loanID string, requestingUserID string) (*domain.Loan, error)

	// ListLoans retrieves the loans of a household.
	ListLoans(ctx context.Context, householdID string, requestingUserID string, includeInactive bool) ([]domain.Loan, error)

	// GetSchedule retrieves the full amortization schedule of a loan.
	GetSchedule(ctx context.Context, householdID string, loanID string, requestingUserID string) ([]domain.LoanScheduleEntry, error)

	// GetRateHistory retrieves the append-only rate history of a loan.
	GetRateHistory(ctx context.Context, householdID string, loanID string, requestingUserID string) ([]domain.LoanRate, error)
}

// LoanWriterSvc defines write operations for loan data
type LoanWriterSvc interface {
	// CreateLoan registers a loan, records its initial rate and generates the
	// full amortization schedule in one transaction.
	CreateLoan(ctx context.Context, householdID string, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error)

	// AddRate appends a rate change and regenerates the unlocked (future)
	// schedule periods from the effective date forward. Locked periods keep
	// their posted figures.
	AddRate(ctx context.Context, householdID string, loanID string, req dto.AddLoanRateRequest, requestingUserID string) ([]domain.LoanScheduleEntry, error)

	// PostPayment posts one scheduled period's payment as a ledger entry and
	// locks the period. Periods must be posted in order.
	PostPayment(ctx context.Context, householdID string, loanID string, req dto.PostLoanPaymentRequest, requestingUserID string) (*domain.Entry, error)

	// DeactivateLoan marks a loan as inactive.
	DeactivateLoan(ctx context.Context, householdID string, loanID string, requestingUserID string) error
}

// LoanSimulatorSvc defines read-only projections
type LoanSimulatorSvc interface {
	// SimulatePrepayment projects the effect of an extra principal payment on
	// the monthly payment and total interest. It never mutates the ledger.
	SimulatePrepayment(ctx context.Context, householdID string, loanID string, req dto.SimulatePrepaymentRequest, requestingUserID string) (*domain.PrepaymentProjection, error)
}

// LoanSvcFacade combines all loan-related service interfaces
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
	LoanSimulatorSvc
}
