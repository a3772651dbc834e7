package repositories

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// HouseholdRepositoryFacade defines persistence operations for households and memberships.
type HouseholdRepositoryFacade interface {
	// SaveHouseholdWithOwner creates the household, the owner membership and the
	// seeded default categories in one database transaction.
	SaveHouseholdWithOwner(ctx context.Context, household domain.Household, owner domain.UserHousehold, seedCategories []domain.Category) error

	FindHouseholdByID(ctx context.Context, householdID string) (*domain.Household, error)
	ListHouseholdsByUser(ctx context.Context, userID string) ([]domain.Household, error)
	ListHouseholdIDs(ctx context.Context) ([]string, error)

	FindMembership(ctx context.Context, userID string, householdID string) (*domain.UserHousehold, error)
	SaveMembership(ctx context.Context, membership domain.UserHousehold) error
	UpdateMembershipRole(ctx context.Context, userID string, householdID string, role domain.UserHouseholdRole) error
	ListMembers(ctx context.Context, householdID string) ([]domain.UserHousehold, error)
}
