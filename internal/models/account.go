package models

import "github.com/shopspring/decimal"

// AccountType classifies an account by where the money actually lives.
type AccountType string

const (
	Bank      AccountType = "BANK"
	Brokerage AccountType = "BROKERAGE"
	Virtual   AccountType = "VIRTUAL"
	External  AccountType = "EXTERNAL"
)

// Account mirrors the accounts table.
type Account struct {
	AccountID      string          `json:"accountID"`
	HouseholdID    string          `json:"householdID"`
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	CurrencyCode   string          `json:"currencyCode"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}
