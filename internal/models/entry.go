package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates the economic nature of a ledger entry.
type EntryType string

const (
	EntryIncome     EntryType = "INCOME"
	EntryExpense    EntryType = "EXPENSE"
	EntryTransfer   EntryType = "TRANSFER"
	EntryAdjustment EntryType = "ADJUSTMENT"
)

// EntrySource records which flow produced an entry.
type EntrySource string

const (
	SourceManual       EntrySource = "MANUAL"
	SourceImport       EntrySource = "IMPORT"
	SourceAutoTransfer EntrySource = "AUTO_TRANSFER"
	SourceLoan         EntrySource = "LOAN"
	SourceSystem       EntrySource = "SYSTEM"
)

// Entry mirrors the entries table.
type Entry struct {
	EntryID     string      `json:"entryID"`
	HouseholdID string      `json:"householdID"`
	OccurredAt  time.Time   `json:"occurredAt"`
	EntryType   EntryType   `json:"entryType"`
	CategoryID  *string     `json:"categoryID,omitempty"`
	Memo        string      `json:"memo"`
	Source      EntrySource `json:"source"`
	IsLocked    bool        `json:"isLocked"`
	AuditFields
}

// Line mirrors the entry_lines table.
type Line struct {
	LineID    string          `json:"lineID"`
	EntryID   string          `json:"entryID"`
	AccountID string          `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo"`
	AuditFields
	RunningBalance decimal.Decimal `json:"runningBalance"`
}
