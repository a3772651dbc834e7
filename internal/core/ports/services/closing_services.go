package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// ClosingReaderSvc defines read operations for month closings
type ClosingReaderSvc interface {
	// GetClosing retrieves the closing record of a month, if any.
	GetClosing(ctx context.Context, householdID string, yearMonth string, requestingUserID string) (*domain.MonthClosing, error)

	// ListClosings retrieves all closing records of a household, newest first.
	ListClosings(ctx context.Context, householdID string, requestingUserID string) ([]domain.MonthClosing, error)

	// PreviewClosing computes the summary a closing would snapshot, without closing.
	PreviewClosing(ctx context.Context, householdID string, yearMonth string, requestingUserID string) (*dto.ClosingPreviewResponse, error)
}

// ClosingWriterSvc defines the closing operation
type ClosingWriterSvc interface {
	// CloseMonth locks every entry of the month and records the closing.
	// At most one closing can exist per (household, yearMonth); a concurrent or
	// repeated close returns an already-closed conflict.
	CloseMonth(ctx context.Context, householdID string, req dto.CloseMonthRequest, requestingUserID string) (*domain.MonthClosing, error)
}

// ClosingSvcFacade combines all closing-related service interfaces
type ClosingSvcFacade interface {
	ClosingReaderSvc
	ClosingWriterSvc
}
