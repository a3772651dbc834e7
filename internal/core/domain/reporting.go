package domain

import "github.com/shopspring/decimal"

// MonthlySummary aggregates a household's entries for one calendar month.
// Computed from lines at read time, independent of the materialized balances.
type MonthlySummary struct {
	HouseholdID   string          `json:"householdID"`
	YearMonth     string          `json:"yearMonth"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpense  decimal.Decimal `json:"totalExpense"`
	TotalTransfer decimal.Decimal `json:"totalTransfer"`
	NetChange     decimal.Decimal `json:"netChange"`
	EntryCount    int             `json:"entryCount"`
}

// CategoryTotal is one row of a per-category breakdown for a month.
type CategoryTotal struct {
	CategoryID   string          `json:"categoryID"`
	CategoryName string          `json:"categoryName"`
	CategoryType CategoryType    `json:"categoryType"`
	Total        decimal.Decimal `json:"total"`
}
