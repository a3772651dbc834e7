package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// reportingHandler handles HTTP requests for ledger aggregations.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers reporting routes within a household-specific group.
func registerReportingRoutes(hg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := hg.Group("/reports")
	{
		reports.GET("/monthly/:year_month", h.getMonthlySummary)
		reports.GET("/categories/:year_month", h.getCategoryBreakdown)
	}
}

// getMonthlySummary godoc
// @Summary Monthly income and expense summary
// @Description Aggregates a month's income, expense, transfer volume and net change from the ledger lines.
// @Tags reports
// @Produce json
// @Param household_id path string true "Household ID"
// @Param year_month path string true "Month (YYYY-MM)"
// @Success 200 {object} dto.MonthlySummaryResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/reports/monthly/{year_month} [get]
func (h *reportingHandler) getMonthlySummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.reportingService.GetMonthlySummary(c.Request.Context(), householdIDParam(c), c.Param("year_month"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute monthly summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToMonthlySummaryResponse(summary))
}

// getCategoryBreakdown godoc
// @Summary Per-category totals for a month
// @Description Totals a month's entries per category. Child categories also roll up into their parent's total.
// @Tags reports
// @Produce json
// @Param household_id path string true "Household ID"
// @Param year_month path string true "Month (YYYY-MM)"
// @Success 200 {object} dto.CategoryBreakdownResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/reports/categories/{year_month} [get]
func (h *reportingHandler) getCategoryBreakdown(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	yearMonth := c.Param("year_month")

	totals, err := h.reportingService.GetCategoryBreakdown(c.Request.Context(), householdIDParam(c), yearMonth, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute category breakdown")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryBreakdownResponse(yearMonth, totals))
}
