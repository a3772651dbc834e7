package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferInstanceStatus is the state of a materialized transfer instance.
type TransferInstanceStatus string

const (
	TransferPending   TransferInstanceStatus = "PENDING"
	TransferConfirmed TransferInstanceStatus = "CONFIRMED"
	TransferMissed    TransferInstanceStatus = "MISSED"
	TransferSkipped   TransferInstanceStatus = "SKIPPED"
)

// TransferRule mirrors the transfer_rules table.
type TransferRule struct {
	RuleID         string          `json:"ruleID"`
	HouseholdID    string          `json:"householdID"`
	Name           string          `json:"name"`
	FromAccountID  string          `json:"fromAccountID"`
	ToAccountID    string          `json:"toAccountID"`
	AmountExpected decimal.Decimal `json:"amountExpected"`
	DayOfMonth     int             `json:"dayOfMonth"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// TransferInstance mirrors the transfer_instances table.
type TransferInstance struct {
	InstanceID       string                 `json:"instanceID"`
	RuleID           string                 `json:"ruleID"`
	DueDate          time.Time              `json:"dueDate"`
	ExpectedAmount   decimal.Decimal        `json:"expectedAmount"`
	Status           TransferInstanceStatus `json:"status"`
	ConfirmedAt      *time.Time             `json:"confirmedAt,omitempty"`
	GeneratedEntryID *string                `json:"generatedEntryID,omitempty"`
	AuditFields
}
