package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepaymentType selects the amortization formula for a loan.
type RepaymentType string

const (
	Annuity        RepaymentType = "ANNUITY"
	EqualPrincipal RepaymentType = "EQUAL_PRINCIPAL"
	InterestOnly   RepaymentType = "INTEREST_ONLY"
)

// Loan represents a household loan whose repayment schedule is tracked period by period.
type Loan struct {
	LoanID                 string          `json:"loanID"`
	HouseholdID            string          `json:"householdID"`
	Name                   string          `json:"name"`
	PrincipalOriginal      decimal.Decimal `json:"principalOriginal"`
	StartDate              time.Time       `json:"startDate"`
	MaturityDate           time.Time       `json:"maturityDate"`
	TermMonths             int             `json:"termMonths"`
	RepaymentType          RepaymentType   `json:"repaymentType"`
	InterestPayDay         int             `json:"interestPayDay"` // 1-31, clamped to month end
	LinkedPaymentAccountID *string         `json:"linkedPaymentAccountID,omitempty"`
	IsActive               bool            `json:"isActive"`
	AuditFields
}

// LoanRate is one append-only rate history row. The rate in effect on a date is
// the latest row with EffectiveDate <= that date.
type LoanRate struct {
	RateID        string          `json:"rateID"`
	LoanID        string          `json:"loanID"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	AnnualRate    decimal.Decimal `json:"annualRate"` // e.g., 0.0425 for 4.25%
}

// LoanScheduleEntry is one amortization period of a loan.
// BalanceAfter of period N equals BalanceAfter of period N-1 minus PrincipalAmount
// of period N; the first period's prior balance is PrincipalOriginal.
type LoanScheduleEntry struct {
	ScheduleID      string          `json:"scheduleID"`
	LoanID          string          `json:"loanID"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	PostingDate     time.Time       `json:"postingDate"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	FeeAmount       decimal.Decimal `json:"feeAmount"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	Locked          bool            `json:"locked"` // Set when the period's payment has been posted
}

// PrepaymentProjection is the read-only result of simulating an extra payment.
// It never mutates the ledger.
type PrepaymentProjection struct {
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	RemainingMonths int             `json:"remainingMonths"`
	OldPayment      decimal.Decimal `json:"oldPayment"`
	NewPayment      decimal.Decimal `json:"newPayment"`
	PaymentDelta    decimal.Decimal `json:"paymentDelta"`
	InterestSaved   decimal.Decimal `json:"interestSaved"`
}
