package models

import "github.com/shopspring/decimal"

// BudgetTemplate mirrors the budget_templates table.
type BudgetTemplate struct {
	BudgetID      string          `json:"budgetID"`
	HouseholdID   string          `json:"householdID"`
	CategoryID    string          `json:"categoryID"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}
