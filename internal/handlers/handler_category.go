package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// categoryHandler handles HTTP requests related to categories.
type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

func newCategoryHandler(cs portssvc.CategorySvcFacade) *categoryHandler {
	return &categoryHandler{categoryService: cs}
}

// registerCategoryRoutes registers category routes within a household-specific group.
func registerCategoryRoutes(hg *gin.RouterGroup, categoryService portssvc.CategorySvcFacade) {
	h := newCategoryHandler(categoryService)

	categories := hg.Group("/categories")
	{
		categories.POST("", h.createCategory)
		categories.GET("", h.listCategories)
		categories.GET("/:category_id", h.getCategory)
		categories.PUT("/:category_id", h.updateCategory)
		categories.DELETE("/:category_id", h.deactivateCategory)
	}
}

// createCategory godoc
// @Summary Create a category
// @Description Creates a category. A parent must be a top-level category, keeping the tree at two levels.
// @Tags categories
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param category body dto.CreateCategoryRequest true "Category details"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/categories [post]
func (h *categoryHandler) createCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(category))
}

// listCategories godoc
// @Summary List categories of a household
// @Tags categories
// @Produce json
// @Param household_id path string true "Household ID"
// @Param includeInactive query bool false "Include inactive categories" default(false)
// @Success 200 {array} dto.CategoryResponse
// @Security BearerAuth
// @Router /households/{household_id}/categories [get]
func (h *categoryHandler) listCategories(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	includeInactive := c.Query("includeInactive") == "true"

	categories, err := h.categoryService.ListCategories(c.Request.Context(), householdIDParam(c), userID, includeInactive)
	if err != nil {
		respondServiceError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCategoryResponse(categories))
}

// getCategory godoc
// @Summary Get a category by ID
// @Tags categories
// @Produce json
// @Param household_id path string true "Household ID"
// @Param category_id path string true "Category ID"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/categories/{category_id} [get]
func (h *categoryHandler) getCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), householdIDParam(c), c.Param("category_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(category))
}

// updateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param category_id path string true "Category ID"
// @Param category body dto.UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/categories/{category_id} [put]
func (h *categoryHandler) updateCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), householdIDParam(c), c.Param("category_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(category))
}

// deactivateCategory godoc
// @Summary Deactivate a category
// @Description Marks the category inactive. Existing entries keep referencing it. A parent with active children cannot be deactivated.
// @Tags categories
// @Param household_id path string true "Household ID"
// @Param category_id path string true "Category ID"
// @Success 204 "No content"
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/categories/{category_id} [delete]
func (h *categoryHandler) deactivateCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeactivateCategory(c.Request.Context(), householdIDParam(c), c.Param("category_id"), userID); err != nil {
		respondServiceError(c, err, "Failed to deactivate category")
		return
	}
	c.Status(http.StatusNoContent)
}
