package domain

import "github.com/shopspring/decimal"

// BudgetTemplate sets the monthly budget for one category of a household.
type BudgetTemplate struct {
	BudgetID      string          `json:"budgetID"`
	HouseholdID   string          `json:"householdID"`
	CategoryID    string          `json:"categoryID"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// BudgetPerformance compares a category's budget against its actual spend for a month.
type BudgetPerformance struct {
	CategoryID    string          `json:"categoryID"`
	CategoryName  string          `json:"categoryName"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	ActualAmount  decimal.Decimal `json:"actualAmount"`
	OverBudget    bool            `json:"overBudget"`
}
