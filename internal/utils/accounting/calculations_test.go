package accounting

import (
	"testing"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(accountID string, amount int64) domain.Line {
	return domain.Line{AccountID: accountID, Amount: decimal.NewFromInt(amount)}
}

func TestValidateEntryBalance_Balanced(t *testing.T) {
	lines := []domain.Line{line("a", -100), line("b", 100)}
	assert.NoError(t, ValidateEntryBalance(lines))
}

func TestValidateEntryBalance_SplitLines(t *testing.T) {
	lines := []domain.Line{line("a", -100), line("b", 60), line("c", 40)}
	assert.NoError(t, ValidateEntryBalance(lines))
}

func TestValidateEntryBalance_Unbalanced(t *testing.T) {
	lines := []domain.Line{line("a", -100), line("b", 99)}
	err := ValidateEntryBalance(lines)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "do not balance")
}

func TestValidateEntryBalance_TooFewLines(t *testing.T) {
	err := ValidateEntryBalance([]domain.Line{line("a", 0)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateEntryBalance_ZeroAmountLine(t *testing.T) {
	lines := []domain.Line{line("a", 0), line("b", 0)}
	err := ValidateEntryBalance(lines)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "non-zero")
}

func TestValidateEntryBalance_FractionalResidue(t *testing.T) {
	lines := []domain.Line{
		{AccountID: "a", Amount: decimal.RequireFromString("-10.01")},
		{AccountID: "b", Amount: decimal.RequireFromString("10.00")},
	}
	assert.Error(t, ValidateEntryBalance(lines))
}

func TestSumByAccount(t *testing.T) {
	lines := []domain.Line{line("a", -100), line("b", 60), line("a", -40), line("c", 80)}

	deltas := SumByAccount(lines)

	assert.Len(t, deltas, 3)
	assert.True(t, deltas["a"].Equal(decimal.NewFromInt(-140)))
	assert.True(t, deltas["b"].Equal(decimal.NewFromInt(60)))
	assert.True(t, deltas["c"].Equal(decimal.NewFromInt(80)))
}
