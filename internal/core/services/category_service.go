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
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// categoryService implements the CategorySvcFacade interface
type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo portsrepo.CategoryRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.CategorySvcFacade {
	return &categoryService{
		BaseService:  BaseService{HouseholdAuthorizer: authorizer},
		categoryRepo: repo,
	}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// CreateCategory persists a new category. The taxonomy is at most two levels
// deep, so a parent must itself be top-level.
func (s *categoryService) CreateCategory(ctx context.Context, householdID string, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindCategoryByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent category not found", apperrors.ErrValidation)
			}
			s.LogError(ctx, err, "Failed to find parent category", slog.String("parent_id", *req.ParentID))
			return nil, err
		}
		if parent.HouseholdID != householdID {
			return nil, fmt.Errorf("%w: parent category belongs to a different household", apperrors.ErrValidation)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: parent category must be top-level", apperrors.ErrValidation)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent category is inactive", apperrors.ErrValidation)
		}
	}

	now := time.Now()
	category := domain.Category{
		CategoryID:   uuid.NewString(),
		HouseholdID:  householdID,
		ParentID:     req.ParentID,
		Name:         req.Name,
		CategoryType: req.CategoryType,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save category", slog.String("name", req.Name))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Category created successfully", slog.String("category_id", category.CategoryID))
	return &category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, householdID string, categoryID string, requestingUserID string) (*domain.Category, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find category by ID", slog.String("category_id", categoryID))
		}
		return nil, err
	}
	if category.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}
	return category, nil
}

// ListCategories returns the household's category tree as a flat list ordered
// parent-first by the repository.
func (s *categoryService) ListCategories(ctx context.Context, householdID string, requestingUserID string, includeInactive bool) ([]domain.Category, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListCategories(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if includeInactive {
		return categories, nil
	}

	active := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, householdID string, categoryID string, req dto.UpdateCategoryRequest, requestingUserID string) (*domain.Category, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	category, err := s.GetCategoryByID(ctx, householdID, categoryID, requestingUserID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != category.Name {
		category.Name = *req.Name
		updated = true
	}
	if req.IsActive != nil && *req.IsActive != category.IsActive {
		if !*req.IsActive {
			// Deactivation carries structural rules; route through DeactivateCategory.
			return nil, fmt.Errorf("%w: use the deactivate operation to deactivate a category", apperrors.ErrValidation)
		}
		category.IsActive = true
		updated = true
	}
	if !updated {
		return category, nil
	}

	now := time.Now()
	category.LastUpdatedAt = now
	category.LastUpdatedBy = requestingUserID

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to update category", slog.String("category_id", categoryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Category updated successfully", slog.String("category_id", categoryID))
	return category, nil
}

// DeactivateCategory marks a category inactive. A parent with active children
// stays active until its children are deactivated first.
func (s *categoryService) DeactivateCategory(ctx context.Context, householdID string, categoryID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return err
	}

	category, err := s.GetCategoryByID(ctx, householdID, categoryID, requestingUserID)
	if err != nil {
		return err
	}

	if category.ParentID == nil {
		categories, err := s.categoryRepo.ListCategories(ctx, householdID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list categories for deactivation check")
			return fmt.Errorf("failed to list categories: %w", err)
		}
		for _, c := range categories {
			if c.ParentID != nil && *c.ParentID == categoryID && c.IsActive {
				return fmt.Errorf("%w: category has active child categories", apperrors.ErrValidation)
			}
		}
	}

	now := time.Now()
	if err := s.categoryRepo.DeactivateCategory(ctx, categoryID, requestingUserID, now); err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate category", slog.String("category_id", categoryID))
		}
		return err
	}

	s.LogInfo(ctx, "Category deactivated successfully", slog.String("category_id", categoryID))
	return nil
}
