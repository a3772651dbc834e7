package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
	"github.com/hearthsoft/household_ledger_app/internal/middleware"
)

// closingHandler handles HTTP requests related to month closings.
type closingHandler struct {
	closingService    portssvc.ClosingSvcFacade
	investmentService portssvc.InvestmentSvcFacade
}

func newClosingHandler(cs portssvc.ClosingSvcFacade, is portssvc.InvestmentSvcFacade) *closingHandler {
	return &closingHandler{closingService: cs, investmentService: is}
}

// registerClosingRoutes registers closing routes within a household-specific group.
func registerClosingRoutes(hg *gin.RouterGroup, closingService portssvc.ClosingSvcFacade, investmentService portssvc.InvestmentSvcFacade) {
	h := newClosingHandler(closingService, investmentService)

	closings := hg.Group("/closings")
	{
		closings.POST("", h.closeMonth)
		closings.GET("", h.listClosings)
		closings.GET("/:year_month", h.getClosing)
		closings.GET("/:year_month/preview", h.previewClosing)
	}
}

// closeMonth godoc
// @Summary Close a month
// @Description Locks every entry of the month and records the closing with a snapshot summary. Only the OWNER may close; a month can be closed at most once.
// @Tags closings
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param closing body dto.CloseMonthRequest true "Month to close (YYYY-MM)"
// @Success 201 {object} dto.MonthClosingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Month already closed"
// @Security BearerAuth
// @Router /households/{household_id}/closings [post]
func (h *closingHandler) closeMonth(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CloseMonthRequest
	if !bindJSON(c, &req) {
		return
	}

	closing, err := h.closingService.CloseMonth(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to close month")
		return
	}

	// Best-effort valuation snapshot as of the last day of the closed month.
	// The close itself already succeeded, so a snapshot failure only logs.
	if monthStart, parseErr := time.Parse("2006-01", req.YearMonth); parseErr == nil {
		snapshotDate := monthStart.AddDate(0, 1, -1)
		snapReq := dto.SnapshotHoldingsRequest{SnapshotDate: snapshotDate}
		if _, snapErr := h.investmentService.SnapshotHoldings(c.Request.Context(), householdIDParam(c), snapReq, userID); snapErr != nil {
			middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Holding snapshot after close failed",
				slog.String("year_month", req.YearMonth), slog.String("error", snapErr.Error()))
		}
	}

	c.JSON(http.StatusCreated, dto.ToMonthClosingResponse(closing))
}

// listClosings godoc
// @Summary List month closings
// @Tags closings
// @Produce json
// @Param household_id path string true "Household ID"
// @Success 200 {array} dto.MonthClosingResponse
// @Security BearerAuth
// @Router /households/{household_id}/closings [get]
func (h *closingHandler) listClosings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	closings, err := h.closingService.ListClosings(c.Request.Context(), householdIDParam(c), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list closings")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMonthClosingResponse(closings))
}

// getClosing godoc
// @Summary Get the closing record of a month
// @Tags closings
// @Produce json
// @Param household_id path string true "Household ID"
// @Param year_month path string true "Month (YYYY-MM)"
// @Success 200 {object} dto.MonthClosingResponse
// @Failure 404 {object} ErrorResponse "Month is not closed"
// @Security BearerAuth
// @Router /households/{household_id}/closings/{year_month} [get]
func (h *closingHandler) getClosing(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	closing, err := h.closingService.GetClosing(c.Request.Context(), householdIDParam(c), c.Param("year_month"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve closing")
		return
	}
	c.JSON(http.StatusOK, dto.ToMonthClosingResponse(closing))
}

// previewClosing godoc
// @Summary Preview a month closing
// @Description Computes the summary a closing would snapshot without locking anything.
// @Tags closings
// @Produce json
// @Param household_id path string true "Household ID"
// @Param year_month path string true "Month (YYYY-MM)"
// @Success 200 {object} dto.ClosingPreviewResponse
// @Security BearerAuth
// @Router /households/{household_id}/closings/{year_month}/preview [get]
func (h *closingHandler) previewClosing(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	preview, err := h.closingService.PreviewClosing(c.Request.Context(), householdIDParam(c), c.Param("year_month"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to preview closing")
		return
	}
	c.JSON(http.StatusOK, preview)
}
