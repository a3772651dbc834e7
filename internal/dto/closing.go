package dto

import (
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// CloseMonthRequest defines the data needed to close a month.
type CloseMonthRequest struct {
	YearMonth string `json:"yearMonth" binding:"required,len=7"` // "YYYY-MM"
}

// MonthClosingResponse defines the data returned for a month closing record.
type MonthClosingResponse struct {
	ClosingID   string                `json:"closingID"`
	HouseholdID string                `json:"householdID"`
	YearMonth   string                `json:"yearMonth"`
	ClosedAt    time.Time             `json:"closedAt"`
	ClosedBy    string                `json:"closedBy"`
	Summary     domain.ClosingSummary `json:"summary"`
}

// ToMonthClosingResponse converts a domain.MonthClosing to MonthClosingResponse DTO.
func ToMonthClosingResponse(c *domain.MonthClosing) MonthClosingResponse {
	return MonthClosingResponse{
		ClosingID:   c.ClosingID,
		HouseholdID: c.HouseholdID,
		YearMonth:   c.YearMonth,
		ClosedAt:    c.ClosedAt,
		ClosedBy:    c.ClosedBy,
		Summary:     c.Summary,
	}
}

// ToListMonthClosingResponse converts a slice of domain.MonthClosing to response DTOs.
func ToListMonthClosingResponse(closings []domain.MonthClosing) []MonthClosingResponse {
	res := make([]MonthClosingResponse, len(closings))
	for i, c := range closings {
		res[i] = ToMonthClosingResponse(&c)
	}
	return res
}

// ClosingPreviewResponse is the dry-run summary shown before closing a month.
type ClosingPreviewResponse struct {
	YearMonth        string                `json:"yearMonth"`
	AlreadyClosed    bool                  `json:"alreadyClosed"`
	Summary          domain.ClosingSummary `json:"summary"`
	PendingTransfers int                   `json:"pendingTransfers"`
}
