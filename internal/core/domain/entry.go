package domain

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
	EntryAdjustment EntryType = "ADJUSTMENT" // The only type allowed to post into a closed month
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

// Entry represents a single, balanced financial event composed of multiple lines.
// The sum of its line amounts is exactly zero (double-entry invariant).
type Entry struct {
	EntryID     string      `json:"entryID"`     // Primary Key (e.g., UUID)
	HouseholdID string      `json:"householdID"` // FK -> households.household_id (Not Null)
	OccurredAt  time.Time   `json:"occurredAt"`  // Date the event occurred
	EntryType   EntryType   `json:"entryType"`
	CategoryID  *string     `json:"categoryID,omitempty"` // Nullable FK -> categories.category_id
	Memo        string      `json:"memo"`
	Source      EntrySource `json:"source"`
	IsLocked    bool        `json:"isLocked"` // Set true by month closing
	AuditFields

	// Lines are populated on demand; nil when only the header was fetched.
	Lines []Line `json:"lines,omitempty"`
}

// Line represents a single signed movement within an Entry, affecting one account.
type Line struct {
	LineID    string          `json:"lineID"`    // Primary Key (e.g., UUID)
	EntryID   string          `json:"entryID"`   // FK -> entries.entry_id (Not Null)
	AccountID string          `json:"accountID"` // FK -> accounts.account_id (Not Null)
	Amount    decimal.Decimal `json:"amount"`    // Signed; positive increases the account
	Memo      string          `json:"memo"`
	AuditFields
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this line
}
