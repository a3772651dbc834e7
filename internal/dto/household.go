package dto

import (
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// --- Household DTOs ---

// CreateHouseholdRequest defines data for creating a new household.
type CreateHouseholdRequest struct {
	Name         string `json:"name" binding:"required"`
	CurrencyCode string `json:"currencyCode" binding:"required,iso4217"`
}

// HouseholdResponse defines data returned for a household.
type HouseholdResponse struct {
	HouseholdID   string    `json:"householdID"`
	Name          string    `json:"name"`
	CurrencyCode  string    `json:"currencyCode"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToHouseholdResponse converts domain.Household to DTO.
func ToHouseholdResponse(h *domain.Household) HouseholdResponse {
	return HouseholdResponse{
		HouseholdID:   h.HouseholdID,
		Name:          h.Name,
		CurrencyCode:  h.CurrencyCode,
		IsActive:      h.IsActive,
		CreatedAt:     h.CreatedAt,
		CreatedBy:     h.CreatedBy,
		LastUpdatedAt: h.LastUpdatedAt,
		LastUpdatedBy: h.LastUpdatedBy,
	}
}

// ListHouseholdsResponse wraps a list of households.
type ListHouseholdsResponse struct {
	Households []HouseholdResponse `json:"households"`
}

// ToListHouseholdsResponse converts a slice of domain.Household to DTO.
func ToListHouseholdsResponse(hs []domain.Household) ListHouseholdsResponse {
	list := make([]HouseholdResponse, len(hs))
	for i, h := range hs {
		list[i] = ToHouseholdResponse(&h)
	}
	return ListHouseholdsResponse{Households: list}
}

// --- Household Membership DTOs ---

// AddMemberRequest defines data for adding a user to a household.
type AddMemberRequest struct {
	UserID string                   `json:"userID" binding:"required"`
	Role   domain.UserHouseholdRole `json:"role" binding:"required,oneof=MEMBER READONLY"`
}

// UpdateMemberRoleRequest changes a member's role.
type UpdateMemberRoleRequest struct {
	Role domain.UserHouseholdRole `json:"role" binding:"required,oneof=MEMBER READONLY REMOVED"`
}

// MemberResponse defines data returned about a user's membership.
type MemberResponse struct {
	UserID      string                   `json:"userID"`
	UserName    string                   `json:"userName"`
	HouseholdID string                   `json:"householdID"`
	Role        domain.UserHouseholdRole `json:"role"`
	JoinedAt    time.Time                `json:"joinedAt"`
}

// ToMemberResponse converts domain.UserHousehold to DTO.
func ToMemberResponse(uh *domain.UserHousehold) MemberResponse {
	return MemberResponse{
		UserID:      uh.UserID,
		UserName:    uh.UserName,
		HouseholdID: uh.HouseholdID,
		Role:        uh.Role,
		JoinedAt:    uh.JoinedAt,
	}
}

// ToListMemberResponse converts a slice of domain.UserHousehold to DTOs.
func ToListMemberResponse(members []domain.UserHousehold) []MemberResponse {
	res := make([]MemberResponse, len(members))
	for i, m := range members {
		res[i] = ToMemberResponse(&m)
	}
	return res
}
