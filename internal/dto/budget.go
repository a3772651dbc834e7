package dto

import (
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpsertBudgetRequest sets the monthly budget amount for a category.
type UpsertBudgetRequest struct {
	CategoryID    string          `json:"categoryID" binding:"required"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount" binding:"required"`
}

// BudgetTemplateResponse defines the data returned for a budget template.
type BudgetTemplateResponse struct {
	BudgetID      string          `json:"budgetID"`
	HouseholdID   string          `json:"householdID"`
	CategoryID    string          `json:"categoryID"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	IsActive      bool            `json:"isActive"`
}

// BudgetPerformanceResponse compares one category's budget to its actual spend.
type BudgetPerformanceResponse struct {
	CategoryID    string          `json:"categoryID"`
	CategoryName  string          `json:"categoryName"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	ActualAmount  decimal.Decimal `json:"actualAmount"`
	Remaining     decimal.Decimal `json:"remaining"`
	OverBudget    bool            `json:"overBudget"`
}

// ToBudgetTemplateResponse converts a domain.BudgetTemplate to response DTO.
func ToBudgetTemplateResponse(b *domain.BudgetTemplate) BudgetTemplateResponse {
	return BudgetTemplateResponse{
		BudgetID:      b.BudgetID,
		HouseholdID:   b.HouseholdID,
		CategoryID:    b.CategoryID,
		MonthlyAmount: b.MonthlyAmount,
		IsActive:      b.IsActive,
	}
}

// ToListBudgetTemplateResponse converts a slice of domain.BudgetTemplate to response DTOs.
func ToListBudgetTemplateResponse(budgets []domain.BudgetTemplate) []BudgetTemplateResponse {
	res := make([]BudgetTemplateResponse, len(budgets))
	for i, b := range budgets {
		res[i] = ToBudgetTemplateResponse(&b)
	}
	return res
}

// ToListBudgetPerformanceResponse converts domain budget performance rows to response DTOs.
func ToListBudgetPerformanceResponse(rows []domain.BudgetPerformance) []BudgetPerformanceResponse {
	res := make([]BudgetPerformanceResponse, len(rows))
	for i, r := range rows {
		res[i] = BudgetPerformanceResponse{
			CategoryID:    r.CategoryID,
			CategoryName:  r.CategoryName,
			MonthlyAmount: r.MonthlyAmount,
			ActualAmount:  r.ActualAmount,
			Remaining:     r.MonthlyAmount.Sub(r.ActualAmount),
			OverBudget:    r.OverBudget,
		}
	}
	return res
}
