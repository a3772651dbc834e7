package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies an account by where the money actually lives.
type AccountType string

const (
	Bank      AccountType = "BANK"
	Brokerage AccountType = "BROKERAGE"
	Virtual   AccountType = "VIRTUAL"
	External  AccountType = "EXTERNAL"
)

// Account represents a financial account within the core domain.
// Balance is maintained transactionally alongside every posted line, so the
// invariant Balance == OpeningBalance + sum(line amounts) holds at all times.
type Account struct {
	AccountID      string          `json:"accountID"`   // Primary Key (e.g., UUID)
	HouseholdID    string          `json:"householdID"` // FK -> households.household_id (NON-NULL)
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	CurrencyCode   string          `json:"currencyCode"`
	OpeningBalance decimal.Decimal `json:"openingBalance"` // Signed; counted into Balance at creation
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"isActive"` // Accounts are soft-deactivated, never deleted
	AuditFields
}
