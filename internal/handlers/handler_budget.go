package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// budgetHandler handles HTTP requests related to budget templates.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs}
}

// registerBudgetRoutes registers budget routes within a household-specific group.
func registerBudgetRoutes(hg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	budgets := hg.Group("/budgets")
	{
		budgets.PUT("", h.upsertBudget)
		budgets.GET("", h.listBudgets)
		budgets.DELETE("/:budget_id", h.removeBudget)
		budgets.GET("/performance/:year_month", h.getPerformance)
	}
}

// upsertBudget godoc
// @Summary Set a category's monthly budget
// @Description Creates or replaces the monthly budget template of a category.
// @Tags budgets
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param budget body dto.UpsertBudgetRequest true "Category and monthly amount"
// @Success 200 {object} dto.BudgetTemplateResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/budgets [put]
func (h *budgetHandler) upsertBudget(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpsertBudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.UpsertBudget(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to upsert budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetTemplateResponse(budget))
}

// listBudgets godoc
// @Summary List budget templates
// @Tags budgets
// @Produce json
// @Param household_id path string true "Household ID"
// @Success 200 {array} dto.BudgetTemplateResponse
// @Security BearerAuth
// @Router /households/{household_id}/budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), householdIDParam(c), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list budgets")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBudgetTemplateResponse(budgets))
}

// removeBudget godoc
// @Summary Remove a budget template
// @Tags budgets
// @Param household_id path string true "Household ID"
// @Param budget_id path string true "Budget ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/budgets/{budget_id} [delete]
func (h *budgetHandler) removeBudget(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.budgetService.RemoveBudget(c.Request.Context(), householdIDParam(c), c.Param("budget_id"), userID); err != nil {
		respondServiceError(c, err, "Failed to remove budget")
		return
	}
	c.Status(http.StatusNoContent)
}

// getPerformance godoc
// @Summary Budget performance for a month
// @Description Compares each budgeted category's template against its actual expense total.
// @Tags budgets
// @Produce json
// @Param household_id path string true "Household ID"
// @Param year_month path string true "Month (YYYY-MM)"
// @Success 200 {array} dto.BudgetPerformanceResponse
// @Security BearerAuth
// @Router /households/{household_id}/budgets/performance/{year_month} [get]
func (h *budgetHandler) getPerformance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.budgetService.GetPerformance(c.Request.Context(), householdIDParam(c), c.Param("year_month"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute budget performance")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBudgetPerformanceResponse(rows))
}
