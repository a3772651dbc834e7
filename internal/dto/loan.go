package dto

import (
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest defines the data needed to register a loan.
// The initial rate becomes the first row of the loan's rate history.
type CreateLoanRequest struct {
	Name                   string               `json:"name" binding:"required"`
	PrincipalOriginal      decimal.Decimal      `json:"principalOriginal" binding:"required"`
	StartDate              time.Time            `json:"startDate" binding:"required"`
	TermMonths             int                  `json:"termMonths" binding:"required,min=1"`
	RepaymentType          domain.RepaymentType `json:"repaymentType" binding:"required,oneof=ANNUITY EQUAL_PRINCIPAL INTEREST_ONLY"`
	InterestPayDay         int                  `json:"interestPayDay" binding:"required,min=1,max=31"`
	AnnualRate             decimal.Decimal      `json:"annualRate" binding:"required"`
	LinkedPaymentAccountID *string              `json:"linkedPaymentAccountID"`
}

// AddLoanRateRequest appends a row to the loan's rate history.
type AddLoanRateRequest struct {
	EffectiveDate time.Time       `json:"effectiveDate" binding:"required"`
	AnnualRate    decimal.Decimal `json:"annualRate" binding:"required"`
}

// SimulatePrepaymentRequest defines the inputs of a prepayment simulation.
type SimulatePrepaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PostLoanPaymentRequest posts one scheduled period's payment to the ledger.
type PostLoanPaymentRequest struct {
	ScheduleID       string  `json:"scheduleID" binding:"required"`
	PaymentAccountID *string `json:"paymentAccountID"` // nil => loan's linked account
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID                 string               `json:"loanID"`
	HouseholdID            string               `json:"householdID"`
	Name                   string               `json:"name"`
	PrincipalOriginal      decimal.Decimal      `json:"principalOriginal"`
	StartDate              time.Time            `json:"startDate"`
	MaturityDate           time.Time            `json:"maturityDate"`
	TermMonths             int                  `json:"termMonths"`
	RepaymentType          domain.RepaymentType `json:"repaymentType"`
	InterestPayDay         int                  `json:"interestPayDay"`
	LinkedPaymentAccountID *string              `json:"linkedPaymentAccountID,omitempty"`
	IsActive               bool                 `json:"isActive"`
	CreatedAt              time.Time            `json:"createdAt"`
}

// LoanRateResponse defines the data returned for one rate history row.
type LoanRateResponse struct {
	RateID        string          `json:"rateID"`
	LoanID        string          `json:"loanID"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	AnnualRate    decimal.Decimal `json:"annualRate"`
}

// LoanScheduleEntryResponse defines the data returned for one amortization period.
type LoanScheduleEntryResponse struct {
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

// PrepaymentProjectionResponse defines the result of a prepayment simulation.
type PrepaymentProjectionResponse struct {
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	RemainingMonths int             `json:"remainingMonths"`
	OldPayment      decimal.Decimal `json:"oldPayment"`
	NewPayment      decimal.Decimal `json:"newPayment"`
	PaymentDelta    decimal.Decimal `json:"paymentDelta"`
	InterestSaved   decimal.Decimal `json:"interestSaved"`
}

// ToLoanResponse converts a domain.Loan to LoanResponse DTO.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:                 l.LoanID,
		HouseholdID:            l.HouseholdID,
		Name:                   l.Name,
		PrincipalOriginal:      l.PrincipalOriginal,
		StartDate:              l.StartDate,
		MaturityDate:           l.MaturityDate,
		TermMonths:             l.TermMonths,
		RepaymentType:          l.RepaymentType,
		InterestPayDay:         l.InterestPayDay,
		LinkedPaymentAccountID: l.LinkedPaymentAccountID,
		IsActive:               l.IsActive,
		CreatedAt:              l.CreatedAt,
	}
}

// ToListLoanResponse converts a slice of domain.Loan to response DTOs.
func ToListLoanResponse(loans []domain.Loan) []LoanResponse {
	res := make([]LoanResponse, len(loans))
	for i, l := range loans {
		res[i] = ToLoanResponse(&l)
	}
	return res
}

// ToLoanRateResponses converts a slice of domain.LoanRate to response DTOs.
func ToLoanRateResponses(rates []domain.LoanRate) []LoanRateResponse {
	res := make([]LoanRateResponse, len(rates))
	for i, r := range rates {
		res[i] = LoanRateResponse{
			RateID:        r.RateID,
			LoanID:        r.LoanID,
			EffectiveDate: r.EffectiveDate,
			AnnualRate:    r.AnnualRate,
		}
	}
	return res
}

// ToLoanScheduleResponses converts a slice of domain.LoanScheduleEntry to response DTOs.
func ToLoanScheduleResponses(schedule []domain.LoanScheduleEntry) []LoanScheduleEntryResponse {
	res := make([]LoanScheduleEntryResponse, len(schedule))
	for i, s := range schedule {
		res[i] = LoanScheduleEntryResponse{
			ScheduleID:      s.ScheduleID,
			LoanID:          s.LoanID,
			PeriodStart:     s.PeriodStart,
			PeriodEnd:       s.PeriodEnd,
			PostingDate:     s.PostingDate,
			InterestAmount:  s.InterestAmount,
			PrincipalAmount: s.PrincipalAmount,
			FeeAmount:       s.FeeAmount,
			BalanceAfter:    s.BalanceAfter,
			Locked:          s.Locked,
		}
	}
	return res
}

// ToPrepaymentProjectionResponse converts a domain.PrepaymentProjection to response DTO.
func ToPrepaymentProjectionResponse(p *domain.PrepaymentProjection) PrepaymentProjectionResponse {
	return PrepaymentProjectionResponse{
		CurrentBalance:  p.CurrentBalance,
		NewBalance:      p.NewBalance,
		RemainingMonths: p.RemainingMonths,
		OldPayment:      p.OldPayment,
		NewPayment:      p.NewPayment,
		PaymentDelta:    p.PaymentDelta,
		InterestSaved:   p.InterestSaved,
	}
}
