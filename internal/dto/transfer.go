package dto

import (
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransferRuleRequest defines the data needed to create a recurring transfer rule.
type CreateTransferRuleRequest struct {
	Name           string          `json:"name" binding:"required"`
	FromAccountID  string          `json:"fromAccountID" binding:"required"`
	ToAccountID    string          `json:"toAccountID" binding:"required"`
	AmountExpected decimal.Decimal `json:"amountExpected" binding:"required"`
	DayOfMonth     int             `json:"dayOfMonth" binding:"required,min=1,max=31"`
}

// UpdateTransferRuleRequest defines the rule fields that may change.
type UpdateTransferRuleRequest struct {
	Name           *string          `json:"name"`
	AmountExpected *decimal.Decimal `json:"amountExpected"`
	DayOfMonth     *int             `json:"dayOfMonth" binding:"omitempty,min=1,max=31"`
	IsActive       *bool            `json:"isActive"`
}

// ConfirmTransferRequest defines the optional overrides when confirming an instance.
type ConfirmTransferRequest struct {
	ActualAmount *decimal.Decimal `json:"actualAmount"` // nil => use the expected amount
	OccurredAt   *time.Time       `json:"occurredAt"`   // nil => due date
}

// TransferRuleResponse defines the data returned for a transfer rule.
type TransferRuleResponse struct {
	RuleID         string          `json:"ruleID"`
	HouseholdID    string          `json:"householdID"`
	Name           string          `json:"name"`
	FromAccountID  string          `json:"fromAccountID"`
	ToAccountID    string          `json:"toAccountID"`
	AmountExpected decimal.Decimal `json:"amountExpected"`
	DayOfMonth     int             `json:"dayOfMonth"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// TransferInstanceResponse defines the data returned for a materialized instance.
type TransferInstanceResponse struct {
	InstanceID       string                        `json:"instanceID"`
	RuleID           string                        `json:"ruleID"`
	DueDate          time.Time                     `json:"dueDate"`
	ExpectedAmount   decimal.Decimal               `json:"expectedAmount"`
	Status           domain.TransferInstanceStatus `json:"status"`
	ConfirmedAt      *time.Time                    `json:"confirmedAt,omitempty"`
	GeneratedEntryID *string                       `json:"generatedEntryID,omitempty"`
}

// ToTransferRuleResponse converts a domain.TransferRule to TransferRuleResponse DTO.
func ToTransferRuleResponse(r *domain.TransferRule) TransferRuleResponse {
	return TransferRuleResponse{
		RuleID:         r.RuleID,
		HouseholdID:    r.HouseholdID,
		Name:           r.Name,
		FromAccountID:  r.FromAccountID,
		ToAccountID:    r.ToAccountID,
		AmountExpected: r.AmountExpected,
		DayOfMonth:     r.DayOfMonth,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
	}
}

// ToListTransferRuleResponse converts a slice of domain.TransferRule to response DTOs.
func ToListTransferRuleResponse(rules []domain.TransferRule) []TransferRuleResponse {
	res := make([]TransferRuleResponse, len(rules))
	for i, r := range rules {
		res[i] = ToTransferRuleResponse(&r)
	}
	return res
}

// ToTransferInstanceResponse converts a domain.TransferInstance to response DTO.
func ToTransferInstanceResponse(in *domain.TransferInstance) TransferInstanceResponse {
	return TransferInstanceResponse{
		InstanceID:       in.InstanceID,
		RuleID:           in.RuleID,
		DueDate:          in.DueDate,
		ExpectedAmount:   in.ExpectedAmount,
		Status:           in.Status,
		ConfirmedAt:      in.ConfirmedAt,
		GeneratedEntryID: in.GeneratedEntryID,
	}
}

// ToListTransferInstanceResponse converts a slice of domain.TransferInstance to response DTOs.
func ToListTransferInstanceResponse(instances []domain.TransferInstance) []TransferInstanceResponse {
	res := make([]TransferInstanceResponse, len(instances))
	for i, in := range instances {
		res[i] = ToTransferInstanceResponse(&in)
	}
	return res
}

// ListTransferInstancesParams defines query parameters for listing instances.
type ListTransferInstancesParams struct {
	Status    *string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED MISSED SKIPPED"`
	YearMonth *string `form:"yearMonth"`
}
