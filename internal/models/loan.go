package models

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

// Loan mirrors the loans table.
type Loan struct {
	LoanID                 string          `json:"loanID"`
	HouseholdID            string          `json:"householdID"`
	Name                   string          `json:"name"`
	PrincipalOriginal      decimal.Decimal `json:"principalOriginal"`
	StartDate              time.Time       `json:"startDate"`
	MaturityDate           time.Time       `json:"maturityDate"`
	TermMonths             int             `json:"termMonths"`
	RepaymentType          RepaymentType   `json:"repaymentType"`
	InterestPayDay         int             `json:"interestPayDay"`
	LinkedPaymentAccountID *string         `json:"linkedPaymentAccountID,omitempty"`
	IsActive               bool            `json:"isActive"`
	AuditFields
}

// LoanRate mirrors the loan_rate_history table.
type LoanRate struct {
	RateID        string          `json:"rateID"`
	LoanID        string          `json:"loanID"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	AnnualRate    decimal.Decimal `json:"annualRate"`
}

// LoanScheduleEntry mirrors the loan_ledger_entries table.
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
	Locked          bool            `json:"locked"`
}
