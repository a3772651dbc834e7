package accounting

import (
	"fmt"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateEntryBalance checks that the lines of an entry balance to exactly zero.
// Line amounts are signed: positive increases the account, negative decreases it.
// Failures wrap apperrors.ErrValidation so callers surface them as 400s.
func ValidateEntryBalance(lines []domain.Line) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines", apperrors.ErrValidation)
	}

	sum := decimal.Zero
	for _, line := range lines {
		if line.Amount.IsZero() {
			return fmt.Errorf("%w: line amount must be non-zero for account ID %s", apperrors.ErrValidation, line.AccountID)
		}
		sum = sum.Add(line.Amount)
	}

	if !sum.IsZero() {
		return fmt.Errorf("%w: entry lines do not balance to zero: sum is %s", apperrors.ErrValidation, sum.String())
	}

	return nil
}

// SumByAccount folds signed line amounts into a per-account delta map.
// Used to compute the balance changes an entry applies or rolls back.
func SumByAccount(lines []domain.Line) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		deltas[line.AccountID] = deltas[line.AccountID].Add(line.Amount)
	}
	return deltas
}
