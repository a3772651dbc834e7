package amortization

import (
	"testing"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAnnuityPayment(t *testing.T) {
	// 100000 at 12% annual (1% monthly) over 12 months: classic textbook value.
	payment := AnnuityPayment(d("100000"), MonthlyRate(d("0.12")), 12)
	assert.True(t, payment.Equal(d("8884.88")), "got %s", payment)
}

func TestAnnuityPayment_ZeroRate(t *testing.T) {
	payment := AnnuityPayment(d("1200"), decimal.Zero, 12)
	assert.True(t, payment.Equal(d("100")), "got %s", payment)
}

func TestGenerateSchedule_Annuity(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	periods, err := GenerateSchedule(ScheduleParams{
		StartBalance:  d("100000"),
		AnnualRate:    d("0.12"),
		TermMonths:    12,
		RepaymentType: domain.Annuity,
		StartDate:     start,
		PayDay:        15,
	})
	require.NoError(t, err)
	require.Len(t, periods, 12)

	// The balance must land exactly on zero and principal must sum to the start balance.
	assert.True(t, periods[11].BalanceAfter.IsZero(), "final balance %s", periods[11].BalanceAfter)
	totalPrincipal := decimal.Zero
	for _, p := range periods {
		totalPrincipal = totalPrincipal.Add(p.PrincipalAmount)
	}
	assert.True(t, totalPrincipal.Equal(d("100000")), "total principal %s", totalPrincipal)

	// Interest declines as the balance amortizes.
	assert.True(t, periods[0].InterestAmount.GreaterThan(periods[11].InterestAmount))
	assert.True(t, periods[0].InterestAmount.Equal(d("1000")), "first interest %s", periods[0].InterestAmount)

	// Posting dates fall on the pay day of the period-end month.
	assert.Equal(t, 15, periods[0].PostingDate.Day())
	assert.Equal(t, time.February, periods[0].PostingDate.Month())
}

func TestGenerateSchedule_EqualPrincipal(t *testing.T) {
	periods, err := GenerateSchedule(ScheduleParams{
		StartBalance:  d("12000"),
		AnnualRate:    d("0.06"),
		TermMonths:    12,
		RepaymentType: domain.EqualPrincipal,
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PayDay:        1,
	})
	require.NoError(t, err)
	require.Len(t, periods, 12)

	// Every period repays the same principal slice.
	for _, p := range periods {
		assert.True(t, p.PrincipalAmount.Equal(d("1000")), "principal %s", p.PrincipalAmount)
	}
	assert.True(t, periods[11].BalanceAfter.IsZero())
	// First month interest: 12000 * 0.5% = 60.
	assert.True(t, periods[0].InterestAmount.Equal(d("60")), "first interest %s", periods[0].InterestAmount)
}

func TestGenerateSchedule_InterestOnly(t *testing.T) {
	periods, err := GenerateSchedule(ScheduleParams{
		StartBalance:  d("50000"),
		AnnualRate:    d("0.12"),
		TermMonths:    6,
		RepaymentType: domain.InterestOnly,
		StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PayDay:        31,
	})
	require.NoError(t, err)
	require.Len(t, periods, 6)

	// Principal stays untouched until the final period repays it all.
	for i := 0; i < 5; i++ {
		assert.True(t, periods[i].PrincipalAmount.IsZero())
		assert.True(t, periods[i].BalanceAfter.Equal(d("50000")))
		assert.True(t, periods[i].InterestAmount.Equal(d("500")), "interest %s", periods[i].InterestAmount)
	}
	assert.True(t, periods[5].PrincipalAmount.Equal(d("50000")))
	assert.True(t, periods[5].BalanceAfter.IsZero())
}

func TestGenerateSchedule_InvalidParams(t *testing.T) {
	_, err := GenerateSchedule(ScheduleParams{
		StartBalance:  d("1000"),
		TermMonths:    0,
		RepaymentType: domain.Annuity,
	})
	assert.Error(t, err)

	_, err = GenerateSchedule(ScheduleParams{
		StartBalance:  decimal.Zero,
		TermMonths:    12,
		RepaymentType: domain.Annuity,
	})
	assert.Error(t, err)

	_, err = GenerateSchedule(ScheduleParams{
		StartBalance:  d("1000"),
		TermMonths:    12,
		RepaymentType: domain.RepaymentType("BALLOON"),
	})
	assert.Error(t, err)
}

func TestTotalInterest(t *testing.T) {
	periods := []Period{
		{InterestAmount: d("10.50")},
		{InterestAmount: d("9.25")},
	}
	assert.True(t, TotalInterest(periods).Equal(d("19.75")))
}

func TestClampToDay(t *testing.T) {
	april := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, ClampToDay(april, 31).Day(), "April has no 31st")

	feb := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 28, ClampToDay(feb, 30).Day())

	jan := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	clamped := ClampToDay(jan, 15)
	assert.Equal(t, 15, clamped.Day())
	assert.Equal(t, time.January, clamped.Month())
}
