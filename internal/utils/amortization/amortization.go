package amortization

import (
	"fmt"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// moneyScale is the number of decimal places amounts are rounded to.
const moneyScale = 2

// rateScale keeps intermediate rate math precise enough for long terms.
const rateScale = 12

var twelve = decimal.NewFromInt(12)

// MonthlyRate converts an annual rate to its monthly equivalent.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.DivRound(twelve, rateScale)
}

// PowInt computes base^n by repeated multiplication, keeping decimal precision.
// n must be non-negative.
func PowInt(base decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = result.Mul(base)
	}
	return result
}

// AnnuityPayment computes the fixed monthly payment for a loan:
// P * r * (1+r)^n / ((1+r)^n - 1). A zero rate degrades to P / n.
func AnnuityPayment(principal decimal.Decimal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principal.DivRound(n, moneyScale)
	}
	compound := PowInt(decimal.NewFromInt(1).Add(monthlyRate), termMonths)
	numerator := principal.Mul(monthlyRate).Mul(compound)
	denominator := compound.Sub(decimal.NewFromInt(1))
	return numerator.DivRound(denominator, moneyScale)
}

// Period is one computed amortization row, before persistence concerns.
type Period struct {
	PeriodStart     time.Time
	PeriodEnd       time.Time
	PostingDate     time.Time
	InterestAmount  decimal.Decimal
	PrincipalAmount decimal.Decimal
	BalanceAfter    decimal.Decimal
}

// ScheduleParams describes the portion of a loan to amortize. For a fresh loan
// StartBalance equals the original principal and StartDate the loan start; when
// regenerating after a rate change, they describe the remaining portion.
type ScheduleParams struct {
	StartBalance  decimal.Decimal
	AnnualRate    decimal.Decimal
	TermMonths    int
	RepaymentType domain.RepaymentType
	StartDate     time.Time
	PayDay        int // 1-31, clamped to each month's last day
}

// GenerateSchedule computes the amortization periods for the given parameters.
// The final period absorbs rounding residue so the balance lands exactly on zero
// (interest-only loans repay the whole principal in the final period).
func GenerateSchedule(p ScheduleParams) ([]Period, error) {
	if p.TermMonths <= 0 {
		return nil, fmt.Errorf("term must be at least one month")
	}
	if p.StartBalance.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("start balance must be positive")
	}

	monthlyRate := MonthlyRate(p.AnnualRate)
	periods := make([]Period, 0, p.TermMonths)
	balance := p.StartBalance

	var fixedPayment decimal.Decimal
	var fixedPrincipal decimal.Decimal
	switch p.RepaymentType {
	case domain.Annuity:
		fixedPayment = AnnuityPayment(p.StartBalance, monthlyRate, p.TermMonths)
	case domain.EqualPrincipal:
		fixedPrincipal = p.StartBalance.DivRound(decimal.NewFromInt(int64(p.TermMonths)), moneyScale)
	case domain.InterestOnly:
		// Principal is due in full with the last period.
	default:
		return nil, fmt.Errorf("unknown repayment type %q", p.RepaymentType)
	}

	for k := 1; k <= p.TermMonths; k++ {
		periodStart := p.StartDate.AddDate(0, k-1, 0)
		periodEnd := p.StartDate.AddDate(0, k, 0)
		interest := balance.Mul(monthlyRate).Round(moneyScale)

		var principal decimal.Decimal
		last := k == p.TermMonths
		switch p.RepaymentType {
		case domain.Annuity:
			principal = fixedPayment.Sub(interest)
		case domain.EqualPrincipal:
			principal = fixedPrincipal
		case domain.InterestOnly:
			principal = decimal.Zero
		}
		if last || principal.GreaterThan(balance) {
			principal = balance // Absorb rounding residue; never overshoot
		}

		balance = balance.Sub(principal)
		periods = append(periods, Period{
			PeriodStart:     periodStart,
			PeriodEnd:       periodEnd,
			PostingDate:     ClampToDay(periodEnd, p.PayDay),
			InterestAmount:  interest,
			PrincipalAmount: principal,
			BalanceAfter:    balance,
		})
	}

	return periods, nil
}

// TotalInterest sums the interest of a schedule.
func TotalInterest(periods []Period) decimal.Decimal {
	total := decimal.Zero
	for _, p := range periods {
		total = total.Add(p.InterestAmount)
	}
	return total
}

// ClampToDay returns the given day-of-month within t's month, clamped to the
// month's last day (e.g. day 31 in April becomes April 30).
func ClampToDay(t time.Time, day int) time.Time {
	year, month, _ := t.Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
