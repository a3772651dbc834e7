package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// CategoryRepositoryFacade defines persistence operations for the category tree.
type CategoryRepositoryFacade interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	SaveCategories(ctx context.Context, categories []domain.Category) error
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	ListCategories(ctx context.Context, householdID string) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) error
	DeactivateCategory(ctx context.Context, categoryID string, userID string, now time.Time) error
}
