package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
)

// Counter accounts created on demand for system-generated entries.
const (
	openingBalanceAccountName = "Opening Balances"
	investmentAccountName     = "Investments"
)

// findOrCreateSystemAccount looks up a household's counter account by name,
// creating it the first time a flow needs it.
func findOrCreateSystemAccount(ctx context.Context, accountRepo portsrepo.AccountRepositoryFacade, householdID, currencyCode, name string, accountType domain.AccountType, userID string) (*domain.Account, error) {
	account, err := accountRepo.FindAccountByName(ctx, householdID, name)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	created := domain.Account{
		AccountID:    uuid.NewString(),
		HouseholdID:  householdID,
		Name:         name,
		AccountType:  accountType,
		CurrencyCode: currencyCode,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := accountRepo.SaveAccount(ctx, created); err != nil {
		// A concurrent creator may have won the race on the name.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return accountRepo.FindAccountByName(ctx, householdID, name)
		}
		return nil, err
	}
	return &created, nil
}

// loanCounterAccountName names the per-loan external account loan payments post against.
func loanCounterAccountName(loanName string) string {
	return "Loan: " + loanName
}
