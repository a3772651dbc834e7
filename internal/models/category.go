package models

// CategoryType tags a category by the entry kinds it can classify.
type CategoryType string

const (
	CategoryExpense CategoryType = "EXPENSE"
	CategoryIncome  CategoryType = "INCOME"
	CategoryBoth    CategoryType = "BOTH"
)

// Category mirrors the categories table.
type Category struct {
	CategoryID   string       `json:"categoryID"`
	HouseholdID  string       `json:"householdID"`
	ParentID     *string      `json:"parentID,omitempty"`
	Name         string       `json:"name"`
	CategoryType CategoryType `json:"categoryType"`
	IsActive     bool         `json:"isActive"`
	AuditFields
}
