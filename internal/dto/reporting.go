package dto

import (
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MonthlySummaryResponse defines the data returned for a monthly summary.
type MonthlySummaryResponse struct {
	HouseholdID   string          `json:"householdID"`
	YearMonth     string          `json:"yearMonth"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpense  decimal.Decimal `json:"totalExpense"`
	TotalTransfer decimal.Decimal `json:"totalTransfer"`
	NetChange     decimal.Decimal `json:"netChange"`
	EntryCount    int             `json:"entryCount"`
}

// CategoryTotalResponse is one row of a per-category monthly breakdown.
type CategoryTotalResponse struct {
	CategoryID   string              `json:"categoryID"`
	CategoryName string              `json:"categoryName"`
	CategoryType domain.CategoryType `json:"categoryType"`
	Total        decimal.Decimal     `json:"total"`
}

// CategoryBreakdownResponse wraps a month's per-category totals.
type CategoryBreakdownResponse struct {
	YearMonth  string                  `json:"yearMonth"`
	Categories []CategoryTotalResponse `json:"categories"`
}

// ToMonthlySummaryResponse converts a domain.MonthlySummary to response DTO.
func ToMonthlySummaryResponse(s *domain.MonthlySummary) MonthlySummaryResponse {
	return MonthlySummaryResponse{
		HouseholdID:   s.HouseholdID,
		YearMonth:     s.YearMonth,
		TotalIncome:   s.TotalIncome,
		TotalExpense:  s.TotalExpense,
		TotalTransfer: s.TotalTransfer,
		NetChange:     s.NetChange,
		EntryCount:    s.EntryCount,
	}
}

// ToCategoryBreakdownResponse converts per-category totals to response DTO.
func ToCategoryBreakdownResponse(yearMonth string, totals []domain.CategoryTotal) CategoryBreakdownResponse {
	categories := make([]CategoryTotalResponse, len(totals))
	for i, t := range totals {
		categories[i] = CategoryTotalResponse{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			CategoryType: t.CategoryType,
			Total:        t.Total,
		}
	}
	return CategoryBreakdownResponse{YearMonth: yearMonth, Categories: categories}
}
