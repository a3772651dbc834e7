package dto

import (
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name         string              `json:"name" binding:"required"`
	ParentID     *string             `json:"parentID"` // nil => top-level
	CategoryType domain.CategoryType `json:"categoryType" binding:"required,oneof=EXPENSE INCOME BOTH"`
}

// UpdateCategoryRequest defines the data allowed for updating a category.
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID   string              `json:"categoryID"`
	ParentID     *string             `json:"parentID,omitempty"`
	Name         string              `json:"name"`
	CategoryType domain.CategoryType `json:"categoryType"`
	IsActive     bool                `json:"isActive"`
}

// ToCategoryResponse converts a domain.Category to CategoryResponse DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:   c.CategoryID,
		ParentID:     c.ParentID,
		Name:         c.Name,
		CategoryType: c.CategoryType,
		IsActive:     c.IsActive,
	}
}

// ToListCategoryResponse converts a slice of domain.Category to response DTOs.
func ToListCategoryResponse(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		res[i] = ToCategoryResponse(&c)
	}
	return res
}
