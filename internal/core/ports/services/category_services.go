package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// CategoryReaderSvc defines read operations for category data
type CategoryReaderSvc interface {
	// GetCategoryByID retrieves a specific category by its ID.
	GetCategoryByID(ctx context.Context, householdID string, categoryID string, requestingUserID string) (*domain.Category, error)

	// ListCategories retrieves the category tree of a household as a flat list.
	ListCategories(ctx context.Context, householdID string, requestingUserID string, includeInactive bool) ([]domain.Category, error)
}

// CategoryWriterSvc defines write operations for category data
type CategoryWriterSvc interface {
	// CreateCategory persists a new category. Parents must be top-level, so the
	// tree never exceeds two levels.
	CreateCategory(ctx context.Context, householdID string, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error)

	// UpdateCategory updates category details.
	UpdateCategory(ctx context.Context, householdID string, categoryID string, req dto.UpdateCategoryRequest, requestingUserID string) (*domain.Category, error)

	// DeactivateCategory marks a category as inactive. Entries keep referencing it;
	// a parent with active children cannot be deactivated.
	DeactivateCategory(ctx context.Context, householdID string, categoryID string, requestingUserID string) error
}

// CategorySvcFacade combines all category-related service interfaces
type CategorySvcFacade interface {
	CategoryReaderSvc
	CategoryWriterSvc
}
