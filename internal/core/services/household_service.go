package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/middleware"
)

// roleRank orders membership roles for authorization checks. Higher outranks lower.
var roleRank = map[domain.UserHouseholdRole]int{
	domain.RoleReadOnly: 1,
	domain.RoleMember:   2,
	domain.RoleOwner:    3,
}

// seedCategory is one node of the default category tree created with every household.
type seedCategory struct {
	name         string
	categoryType domain.CategoryType
	children     []string
}

var defaultCategorySeed = []seedCategory{
	{name: "Income", categoryType: domain.CategoryIncome, children: []string{"Salary", "Interest", "Other Income"}},
	{name: "Food", categoryType: domain.CategoryExpense, children: []string{"Groceries", "Dining Out"}},
	{name: "Housing", categoryType: domain.CategoryExpense, children: []string{"Rent", "Utilities", "Maintenance"}},
	{name: "Transport", categoryType: domain.CategoryExpense, children: []string{"Public Transit", "Fuel"}},
	{name: "Living", categoryType: domain.CategoryExpense, children: []string{"Health", "Education", "Leisure"}},
	{name: "Other", categoryType: domain.CategoryBoth},
}

// HouseholdService handles business logic related to households and memberships.
type HouseholdService struct {
	householdRepo portsrepo.HouseholdRepositoryFacade
}

// NewHouseholdService creates a new HouseholdService.
func NewHouseholdService(hr portsrepo.HouseholdRepositoryFacade) portssvc.HouseholdSvcFacade {
	return &HouseholdService{householdRepo: hr}
}

// Ensure HouseholdService implements the portssvc.HouseholdSvcFacade interface
var _ portssvc.HouseholdSvcFacade = (*HouseholdService)(nil)

// CreateHousehold creates a new household, makes the creator the OWNER and
// seeds the default category tree, all in one transaction.
func (s *HouseholdService) CreateHousehold(ctx context.Context, name, currencyCode, creatorUserID string) (*domain.Household, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	newHouseholdID := uuid.NewString()

	household := domain.Household{
		HouseholdID:  newHouseholdID,
		Name:         name,
		CurrencyCode: currencyCode,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	owner := domain.UserHousehold{
		UserID:      creatorUserID,
		HouseholdID: newHouseholdID,
		Role:        domain.RoleOwner,
		JoinedAt:    now,
	}

	seed := buildSeedCategories(newHouseholdID, creatorUserID, now)

	if err := s.householdRepo.SaveHouseholdWithOwner(ctx, household, owner, seed); err != nil {
		logger.Error("Failed to save household in repository", slog.String("error", err.Error()), slog.String("household_name", name))
		return nil, fmt.Errorf("failed to create household: %w", err)
	}

	logger.Info("Household created successfully", slog.String("household_id", newHouseholdID), slog.String("creator_user_id", creatorUserID))
	return &household, nil
}

// buildSeedCategories expands the default category tree into domain rows.
func buildSeedCategories(householdID, creatorUserID string, now time.Time) []domain.Category {
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	categories := []domain.Category{}
	for _, parent := range defaultCategorySeed {
		parentID := uuid.NewString()
		categories = append(categories, domain.Category{
			CategoryID:   parentID,
			HouseholdID:  householdID,
			Name:         parent.name,
			CategoryType: parent.categoryType,
			IsActive:     true,
			AuditFields:  audit,
		})
		for _, child := range parent.children {
			pid := parentID
			categories = append(categories, domain.Category{
				CategoryID:   uuid.NewString(),
				HouseholdID:  householdID,
				ParentID:     &pid,
				Name:         child,
				CategoryType: parent.categoryType,
				IsActive:     true,
				AuditFields:  audit,
			})
		}
	}
	return categories
}

// AddUserToHousehold adds a user to a household with a specific role.
func (s *HouseholdService) AddUserToHousehold(ctx context.Context, addingUserID, targetUserID, householdID string, role domain.UserHouseholdRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Only the OWNER can add members.
	if err := s.AuthorizeUserAction(ctx, addingUserID, householdID, domain.RoleOwner); err != nil {
		return err
	}

	if role == domain.RoleOwner {
		return fmt.Errorf("%w: a household has exactly one owner", apperrors.ErrValidation)
	}

	now := time.Now()
	membership := domain.UserHousehold{
		UserID:      targetUserID,
		HouseholdID: householdID,
		Role:        role,
		JoinedAt:    now,
	}

	if err := s.householdRepo.SaveMembership(ctx, membership); err != nil {
		logger.Error("Failed to add user to household in repository", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("household_id", householdID))
		return err
	}

	logger.Info("User added to household successfully", slog.String("target_user_id", targetUserID), slog.String("household_id", householdID), slog.String("role", string(role)), slog.String("added_by_user_id", addingUserID))
	return nil
}

// UpdateUserHouseholdRole changes a member's role. The OWNER role cannot be
// assigned here and the owner cannot demote themselves.
func (s *HouseholdService) UpdateUserHouseholdRole(ctx context.Context, requestingUserID, targetUserID, householdID string, newRole domain.UserHouseholdRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, householdID, domain.RoleOwner); err != nil {
		return err
	}

	if newRole == domain.RoleOwner {
		return fmt.Errorf("%w: ownership cannot be reassigned through role updates", apperrors.ErrValidation)
	}
	if requestingUserID == targetUserID {
		return fmt.Errorf("%w: the owner cannot change their own role", apperrors.ErrValidation)
	}

	// Confirm the target membership exists before updating.
	if _, err := s.householdRepo.FindMembership(ctx, targetUserID, householdID); err != nil {
		return err
	}

	if err := s.householdRepo.UpdateMembershipRole(ctx, targetUserID, householdID, newRole); err != nil {
		logger.Error("Failed to update membership role in repository", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("household_id", householdID))
		return err
	}

	logger.Info("Membership role updated", slog.String("target_user_id", targetUserID), slog.String("household_id", householdID), slog.String("new_role", string(newRole)))
	return nil
}

// ListUserHouseholds retrieves the list of households a given user belongs to.
func (s *HouseholdService) ListUserHouseholds(ctx context.Context, userID string) ([]domain.Household, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	households, err := s.householdRepo.ListHouseholdsByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list households for user from repository", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list households for user %s: %w", userID, err)
	}

	if households == nil {
		return []domain.Household{}, nil
	}
	return households, nil
}

// ListHouseholdMembers retrieves the memberships of a household. Any member may look.
func (s *HouseholdService) ListHouseholdMembers(ctx context.Context, householdID string, requestingUserID string) ([]domain.UserHousehold, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	members, err := s.householdRepo.ListMembers(ctx, householdID)
	if err != nil {
		logger.Error("Failed to list household members from repository", slog.String("error", err.Error()), slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list members for household %s: %w", householdID, err)
	}
	return members, nil
}

// FindHouseholdByID retrieves a household by its ID.
func (s *HouseholdService) FindHouseholdByID(ctx context.Context, householdID string) (*domain.Household, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	household, err := s.householdRepo.FindHouseholdByID(ctx, householdID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find household by ID in repository", slog.String("error", err.Error()), slog.String("household_id", householdID))
		}
		return nil, err
	}
	return household, nil
}

// AuthorizeUserAction checks if a user has the required role (or higher) within
// a specific household. Returns apperrors.ErrNotFound when the user is not a
// member, apperrors.ErrForbidden when the role is insufficient.
func (s *HouseholdService) AuthorizeUserAction(ctx context.Context, userID, householdID string, requiredRole domain.UserHouseholdRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	membership, err := s.householdRepo.FindMembership(ctx, userID, householdID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Authorization failed: user not a member of household", slog.String("user_id", userID), slog.String("household_id", householdID))
			// Return NotFound to avoid revealing household existence
			return apperrors.ErrNotFound
		}
		logger.Error("Failed to check household membership in repository", slog.String("error", err.Error()), slog.String("user_id", userID), slog.String("household_id", householdID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	if membership.Role == domain.RoleRemoved {
		return apperrors.ErrNotFound
	}

	if roleRank[membership.Role] >= roleRank[requiredRole] {
		return nil
	}

	logger.Warn("Authorization failed: user lacks required role", slog.String("user_id", userID), slog.String("household_id", householdID), slog.String("user_role", string(membership.Role)), slog.String("required_role", string(requiredRole)))
	return apperrors.ErrForbidden
}
