package domain

import "time"

// Household represents an isolated environment containing accounts, entries, budgets, etc.
type Household struct {
	HouseholdID  string `json:"householdID"`  // Primary Key (e.g., UUID)
	Name         string `json:"name"`         // User-defined name for the household
	CurrencyCode string `json:"currencyCode"` // Single ledger currency for this household (e.g., "KRW")
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// UserHouseholdRole defines the possible roles a user can have within a household.
type UserHouseholdRole string

const (
	RoleOwner    UserHouseholdRole = "OWNER"
	RoleMember   UserHouseholdRole = "MEMBER"
	RoleReadOnly UserHouseholdRole = "READONLY"
	RoleRemoved  UserHouseholdRole = "REMOVED" // For users who have been removed from the household
)

// UserHousehold represents the membership of a User in a Household.
type UserHousehold struct {
	UserID      string            `json:"userID"`
	UserName    string            `json:"userName"`
	HouseholdID string            `json:"householdID"`
	Role        UserHouseholdRole `json:"role"`
	JoinedAt    time.Time         `json:"joinedAt"`
}
