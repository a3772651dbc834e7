package services

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// TransferRuleSvc defines operations for managing recurring transfer rules
type TransferRuleSvc interface {
	// CreateRule persists a new transfer rule. No instances are generated here;
	// the scheduler materializes them when they come due.
	CreateRule(ctx context.Context, householdID string, req dto.CreateTransferRuleRequest, creatorUserID string) (*domain.TransferRule, error)

	// UpdateRule updates rule details. Existing instances are unaffected.
	UpdateRule(ctx context.Context, householdID string, ruleID string, req dto.UpdateTransferRuleRequest, requestingUserID string) (*domain.TransferRule, error)

	// DeactivateRule stops future instance generation. Pending instances remain.
	DeactivateRule(ctx context.Context, householdID string, ruleID string, requestingUserID string) error

	// ListRules retrieves the transfer rules of a household.
	ListRules(ctx context.Context, householdID string, requestingUserID string, includeInactive bool) ([]domain.TransferRule, error)
}

// TransferInstanceSvc defines operations on materialized transfer instances
type TransferInstanceSvc interface {
	// ListInstances retrieves instances of a household's rules, optionally
	// filtered by status or month.
	ListInstances(ctx context.Context, householdID string, requestingUserID string, params dto.ListTransferInstancesParams) ([]domain.TransferInstance, error)

	// ConfirmInstance posts the transfer entry and marks the instance CONFIRMED.
	// Confirming is idempotent-guarded: only a PENDING instance transitions, a
	// second confirm returns an already-confirmed conflict.
	ConfirmInstance(ctx context.Context, householdID string, instanceID string, req dto.ConfirmTransferRequest, requestingUserID string) (*domain.TransferInstance, error)

	// SkipInstance marks a PENDING instance SKIPPED without posting an entry.
	SkipInstance(ctx context.Context, householdID string, instanceID string, requestingUserID string) (*domain.TransferInstance, error)
}

// TransferSchedulerSvc defines the periodic materialization run.
// It is invoked by the scheduler binary, not by HTTP handlers.
type TransferSchedulerSvc interface {
	// MaterializeDueInstances creates PENDING instances for every active rule
	// whose next due date is on or before now, and flags instances still
	// pending more than one period past due as MISSED. Safe to run repeatedly.
	MaterializeDueInstances(ctx context.Context, now time.Time) (created int, missed int, err error)
}

// TransferSvcFacade combines all transfer-related service interfaces
type TransferSvcFacade interface {
	TransferRuleSvc
	TransferInstanceSvc
	TransferSchedulerSvc
}
