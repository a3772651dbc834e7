package domain

// CategoryType tags a category by the entry kinds it can classify.
type CategoryType string

const (
	CategoryExpense CategoryType = "EXPENSE"
	CategoryIncome  CategoryType = "INCOME"
	CategoryBoth    CategoryType = "BOTH"
)

// Category is a node in the two-level classification taxonomy of a household.
// ParentID, when set, must reference a top-level category (max depth 2).
type Category struct {
	CategoryID   string       `json:"categoryID"`
	HouseholdID  string       `json:"householdID"`
	ParentID     *string      `json:"parentID,omitempty"` // nil => top-level
	Name         string       `json:"name"`
	CategoryType CategoryType `json:"categoryType"`
	IsActive     bool         `json:"isActive"`
	AuditFields
}
