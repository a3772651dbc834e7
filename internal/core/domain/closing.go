package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClosingSummary is the immutable snapshot persisted with a month closing.
type ClosingSummary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	TotalTransfer    decimal.Decimal `json:"total_transfer"`
	NetChange        decimal.Decimal `json:"net_change"`
	EntryCount       int             `json:"entry_count"`
	LockedCount      int             `json:"locked_count"`
	PendingTransfers int             `json:"pending_transfers"`
	ClosedAt         time.Time       `json:"closed_at"`
}

// MonthClosing is a permanent audit record: at most one per (household, year month),
// never updated or deleted once created.
type MonthClosing struct {
	ClosingID   string         `json:"closingID"`
	HouseholdID string         `json:"householdID"`
	YearMonth   string         `json:"yearMonth"` // "YYYY-MM", unique per household
	ClosedAt    time.Time      `json:"closedAt"`
	ClosedBy    string         `json:"closedBy"`
	Summary     ClosingSummary `json:"summary"`
}
