package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRuleReader defines read operations for transfer rules.
type TransferRuleReader interface {
	FindRuleByID(ctx context.Context, ruleID string) (*domain.TransferRule, error)
	ListRulesByHousehold(ctx context.Context, householdID string) ([]domain.TransferRule, error)
	// ListActiveRules returns every active rule across all households. Used by the scheduler.
	ListActiveRules(ctx context.Context) ([]domain.TransferRule, error)
}

// TransferRuleWriter defines write operations for transfer rules.
type TransferRuleWriter interface {
	SaveRule(ctx context.Context, rule domain.TransferRule) error
	UpdateRule(ctx context.Context, rule domain.TransferRule) error
	DeactivateRule(ctx context.Context, ruleID string, userID string, now time.Time) error
}

// TransferInstanceReader defines read operations for transfer instances.
type TransferInstanceReader interface {
	FindInstanceByID(ctx context.Context, instanceID string) (*domain.TransferInstance, error)
	ListInstancesByHousehold(ctx context.Context, householdID string, status *domain.TransferInstanceStatus) ([]domain.TransferInstance, error)
	// FindLatestDueDate returns the most recent materialized due date for a rule,
	// or nil when no instance exists yet.
	FindLatestDueDate(ctx context.Context, ruleID string) (*time.Time, error)
}

// TransferInstanceWriter defines write operations for transfer instances.
type TransferInstanceWriter interface {
	// SaveInstance inserts a pending instance; duplicates on (rule_id, due_date)
	// are ignored so materialization stays idempotent.
	SaveInstance(ctx context.Context, instance domain.TransferInstance) error
	// ConfirmInstance atomically flips a PENDING instance to CONFIRMED and posts
	// the generated transfer entry. A non-pending instance yields apperrors.ErrConflict.
	ConfirmInstance(ctx context.Context, instance domain.TransferInstance, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal) error
	// SkipInstance flips a PENDING instance to SKIPPED.
	SkipInstance(ctx context.Context, instanceID string, userID string, now time.Time) error
	// MarkMissedBefore marks PENDING instances due before the cutoff as MISSED
	// and returns how many were affected.
	MarkMissedBefore(ctx context.Context, cutoff time.Time, now time.Time) (int, error)
}

// TransferRepositoryFacade combines all transfer repository interfaces.
type TransferRepositoryFacade interface {
	TransferRuleReader
	TransferRuleWriter
	TransferInstanceReader
	TransferInstanceWriter
}
