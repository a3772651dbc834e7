package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// HouseholdReaderSvc defines read operations for household data
type HouseholdReaderSvc interface {
	// FindHouseholdByID retrieves a specific household by its ID.
	FindHouseholdByID(ctx context.Context, householdID string) (*domain.Household, error)

	// ListUserHouseholds retrieves households a user belongs to.
	ListUserHouseholds(ctx context.Context, userID string) ([]domain.Household, error)

	// ListHouseholdMembers retrieves all users and their roles for a household.
	// Only members of the household can access this data.
	ListHouseholdMembers(ctx context.Context, householdID string, requestingUserID string) ([]domain.UserHousehold, error)
}

// HouseholdWriterSvc defines write operations for household data
type HouseholdWriterSvc interface {
	// CreateHousehold persists a new household with the creator as OWNER and
	// seeds the default category tree.
	CreateHousehold(ctx context.Context, name, currencyCode, creatorUserID string) (*domain.Household, error)
}

// HouseholdMembershipSvc defines operations for managing household membership
type HouseholdMembershipSvc interface {
	// AddUserToHousehold adds a user to a household with a specific role.
	// Only the OWNER can add members.
	AddUserToHousehold(ctx context.Context, addingUserID, targetUserID, householdID string, role domain.UserHouseholdRole) error

	// UpdateUserHouseholdRole updates a user's role in a household.
	// Only the OWNER can update roles; the OWNER role itself cannot be given away here.
	UpdateUserHouseholdRole(ctx context.Context, requestingUserID, targetUserID, householdID string, newRole domain.UserHouseholdRole) error
}

// HouseholdAuthorizerSvc defines operations for household authorization
type HouseholdAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a household.
	AuthorizeUserAction(ctx context.Context, userID, householdID string, requiredRole domain.UserHouseholdRole) error
}

// HouseholdSvcFacade combines all household-related service interfaces
// This is a facade for clients that need access to all operations
type HouseholdSvcFacade interface {
	HouseholdReaderSvc
	HouseholdWriterSvc
	HouseholdMembershipSvc
	HouseholdAuthorizerSvc
}
