package dto

import (
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one signed movement within a new entry.
type CreateLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Memo      string          `json:"memo"`
}

// CreateEntryRequest defines the data needed to post a ledger entry.
// The line amounts must sum to exactly zero.
type CreateEntryRequest struct {
	OccurredAt time.Time           `json:"occurredAt" binding:"required"`
	EntryType  domain.EntryType    `json:"entryType" binding:"required,oneof=INCOME EXPENSE TRANSFER ADJUSTMENT"`
	CategoryID *string             `json:"categoryID"`
	Memo       string              `json:"memo"`
	Source     domain.EntrySource  `json:"source" binding:"omitempty,oneof=MANUAL IMPORT AUTO_TRANSFER LOAN SYSTEM"`
	Lines      []CreateLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateEntryRequest defines the header fields of an unlocked entry that may change.
type UpdateEntryRequest struct {
	OccurredAt *time.Time `json:"occurredAt"`
	CategoryID *string    `json:"categoryID"`
	Memo       *string    `json:"memo"`
}

// LineResponse defines the data returned for an entry line.
type LineResponse struct {
	LineID         string          `json:"lineID"`
	EntryID        string          `json:"entryID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	EntryID    string             `json:"entryID"`
	OccurredAt time.Time          `json:"occurredAt"`
	EntryType  domain.EntryType   `json:"entryType"`
	CategoryID *string            `json:"categoryID,omitempty"`
	Memo       string             `json:"memo"`
	Source     domain.EntrySource `json:"source"`
	IsLocked   bool               `json:"isLocked"`
	CreatedAt  time.Time          `json:"createdAt"`
	CreatedBy  string             `json:"createdBy"`
	Lines      []LineResponse     `json:"lines,omitempty"`
}

// ToLineResponse converts a domain.Line to LineResponse DTO.
func ToLineResponse(l *domain.Line) LineResponse {
	return LineResponse{
		LineID:         l.LineID,
		EntryID:        l.EntryID,
		AccountID:      l.AccountID,
		Amount:         l.Amount,
		Memo:           l.Memo,
		RunningBalance: l.RunningBalance,
	}
}

// ToLineResponses converts a slice of domain.Line to response DTOs.
func ToLineResponses(lines []domain.Line) []LineResponse {
	res := make([]LineResponse, len(lines))
	for i, l := range lines {
		res[i] = ToLineResponse(&l)
	}
	return res
}

// ToEntryResponse converts a domain.Entry to EntryResponse DTO.
func ToEntryResponse(e *domain.Entry) EntryResponse {
	resp := EntryResponse{
		EntryID:    e.EntryID,
		OccurredAt: e.OccurredAt,
		EntryType:  e.EntryType,
		CategoryID: e.CategoryID,
		Memo:       e.Memo,
		Source:     e.Source,
		IsLocked:   e.IsLocked,
		CreatedAt:  e.CreatedAt,
		CreatedBy:  e.CreatedBy,
	}
	if e.Lines != nil {
		resp.Lines = ToLineResponses(e.Lines)
	}
	return resp
}

// ListEntriesParams defines query parameters for listing entries.
type ListEntriesParams struct {
	Limit        int     `form:"limit,default=20"`
	NextToken    *string `form:"nextToken"`
	YearMonth    *string `form:"yearMonth"` // "YYYY-MM"
	AccountID    *string `form:"accountID"`
	CategoryID   *string `form:"categoryID"`
	EntryType    *string `form:"entryType"`
	IncludeLines bool    `form:"includeLines,default=false"`
}

// ListEntriesResponse wraps a page of entries and the token for the next page.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListLinesParams defines query parameters for listing an account's lines.
type ListLinesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse wraps a page of lines and the token for the next page.
type ListLinesResponse struct {
	Lines     []LineResponse `json:"lines"`
	NextToken *string        `json:"nextToken,omitempty"`
}
