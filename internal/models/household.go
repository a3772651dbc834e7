package models

import "time"

// Household mirrors the households table.
type Household struct {
	HouseholdID  string `json:"householdID"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// UserHouseholdRole defines the possible roles a user can have within a household.
type UserHouseholdRole string

const (
	RoleOwner    UserHouseholdRole = "OWNER"
	RoleMember   UserHouseholdRole = "MEMBER"
	RoleReadOnly UserHouseholdRole = "READONLY"
	RoleRemoved  UserHouseholdRole = "REMOVED"
)

// UserHousehold mirrors the user_households membership table.
type UserHousehold struct {
	UserID      string            `json:"userID"`
	HouseholdID string            `json:"householdID"`
	Role        UserHouseholdRole `json:"role"`
	JoinedAt    time.Time         `json:"joinedAt"`
}
