package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferInstanceStatus is the state of a materialized transfer instance.
// PENDING is the only non-terminal state.
type TransferInstanceStatus string

const (
	TransferPending   TransferInstanceStatus = "PENDING"
	TransferConfirmed TransferInstanceStatus = "CONFIRMED"
	TransferMissed    TransferInstanceStatus = "MISSED"
	TransferSkipped   TransferInstanceStatus = "SKIPPED"
)

// TransferRule describes a recurring transfer between two accounts of a household.
type TransferRule struct {
	RuleID         string          `json:"ruleID"`
	HouseholdID    string          `json:"householdID"`
	Name           string          `json:"name"`
	FromAccountID  string          `json:"fromAccountID"`
	ToAccountID    string          `json:"toAccountID"`
	AmountExpected decimal.Decimal `json:"amountExpected"`
	DayOfMonth     int             `json:"dayOfMonth"` // 1-31, clamped to the month's last day
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// TransferInstance is one due occurrence of a rule, materialized by the scheduler.
// It transitions out of PENDING exactly once.
type TransferInstance struct {
	InstanceID       string                 `json:"instanceID"`
	RuleID           string                 `json:"ruleID"`
	DueDate          time.Time              `json:"dueDate"`
	ExpectedAmount   decimal.Decimal        `json:"expectedAmount"`
	Status           TransferInstanceStatus `json:"status"`
	ConfirmedAt      *time.Time             `json:"confirmedAt,omitempty"`
	GeneratedEntryID *string                `json:"generatedEntryID,omitempty"` // Set only on confirm
	AuditFields
}
