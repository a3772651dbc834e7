package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// investmentHandler handles HTTP requests related to securities, trades and holdings.
type investmentHandler struct {
	investmentService portssvc.InvestmentSvcFacade
}

func newInvestmentHandler(is portssvc.InvestmentSvcFacade) *investmentHandler {
	return &investmentHandler{investmentService: is}
}

// registerInvestmentRoutes registers investment routes within a household-specific group.
func registerInvestmentRoutes(hg *gin.RouterGroup, investmentService portssvc.InvestmentSvcFacade) {
	h := newInvestmentHandler(investmentService)

	securities := hg.Group("/securities")
	{
		securities.POST("", h.createSecurity)
		securities.GET("", h.listSecurities)
		securities.PUT("/prices", h.updatePrices)
	}

	trades := hg.Group("/trades")
	{
		trades.POST("", h.recordTrade)
		trades.GET("", h.listTrades)
	}

	holdings := hg.Group("/holdings")
	{
		holdings.GET("", h.listHoldings)
		holdings.POST("/snapshots", h.snapshotHoldings)
		holdings.GET("/snapshots", h.listSnapshots)
	}
}

// createSecurity godoc
// @Summary Register a security
// @Description Registers a tradable instrument. Tickers are unique per household.
// @Tags investments
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param security body dto.CreateSecurityRequest true "Security details"
// @Success 201 {object} dto.SecurityResponse
// @Failure 409 {object} ErrorResponse "Ticker already registered"
// @Security BearerAuth
// @Router /households/{household_id}/securities [post]
func (h *investmentHandler) createSecurity(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateSecurityRequest
	if !bindJSON(c, &req) {
		return
	}

	security, err := h.investmentService.CreateSecurity(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create security")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSecurityResponse(security))
}

// listSecurities godoc
// @Summary List securities of a household
// @Tags investments
// @Produce json
// @Param household_id path string true "Household ID"
// @Success 200 {array} dto.SecurityResponse
// @Security BearerAuth
// @Router /households/{household_id}/securities [get]
func (h *investmentHandler) listSecurities(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	securities, err := h.investmentService.ListSecurities(c.Request.Context(), householdIDParam(c), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list securities")
		return
	}
	c.JSON(http.StatusOK, dto.ToListSecurityResponse(securities))
}

// updatePrices godoc
// @Summary Update security prices
// @Description Sets the last known market price of several securities. Prices never touch holdings' average cost.
// @Tags investments
// @Accept json
// @Param household_id path string true "Household ID"
// @Param prices body dto.UpdatePricesRequest true "New prices"
// @Success 204 "No content"
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/securities/prices [put]
func (h *investmentHandler) updatePrices(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdatePricesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.investmentService.UpdatePrices(c.Request.Context(), householdIDParam(c), req, userID); err != nil {
		respondServiceError(c, err, "Failed to update prices")
		return
	}
	c.Status(http.StatusNoContent)
}

// recordTrade godoc
// @Summary Record a trade
// @Description Records a buy or sell, adjusting the weighted-average-cost holding and posting the balanced ledger entry in one transaction. Sells may not exceed the held quantity.
// @Tags investments
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param trade body dto.RecordTradeRequest true "Trade details"
// @Success 201 {object} dto.TradeResponse
// @Failure 400 {object} ErrorResponse "Oversell or invalid amounts"
// @Security BearerAuth
// @Router /households/{household_id}/trades [post]
func (h *investmentHandler) recordTrade(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.RecordTradeRequest
	if !bindJSON(c, &req) {
		return
	}

	trade, err := h.investmentService.RecordTrade(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to record trade")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTradeResponse(trade))
}

// listTrades godoc
// @Summary List trades
// @Tags investments
// @Produce json
// @Param household_id path string true "Household ID"
// @Param securityID query string false "Filter by security"
// @Param accountID query string false "Filter by account"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.TradeResponse
// @Security BearerAuth
// @Router /households/{household_id}/trades [get]
func (h *investmentHandler) listTrades(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListTradesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	trades, err := h.investmentService.ListTrades(c.Request.Context(), householdIDParam(c), userID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list trades")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTradeResponse(trades))
}

// listHoldings godoc
// @Summary List open positions
// @Description Lists the household's holdings with valuations derived from the last known prices.
// @Tags investments
// @Produce json
// @Param household_id path string true "Household ID"
// @Success 200 {array} dto.HoldingResponse
// @Security BearerAuth
// @Router /households/{household_id}/holdings [get]
func (h *investmentHandler) listHoldings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	holdings, err := h.investmentService.ListHoldings(c.Request.Context(), householdIDParam(c), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list holdings")
		return
	}
	c.JSON(http.StatusOK, holdings)
}

// snapshotHoldings godoc
// @Summary Snapshot holdings
// @Description Captures a per-security valuation as of a date, upserting on (household, date, security) so reruns overwrite.
// @Tags investments
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param snapshot body dto.SnapshotHoldingsRequest true "Snapshot date"
// @Success 201 {array} dto.HoldingSnapshotResponse
// @Security BearerAuth
// @Router /households/{household_id}/holdings/snapshots [post]
func (h *investmentHandler) snapshotHoldings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.SnapshotHoldingsRequest
	if !bindJSON(c, &req) {
		return
	}

	snapshots, err := h.investmentService.SnapshotHoldings(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to snapshot holdings")
		return
	}
	c.JSON(http.StatusCreated, dto.ToListHoldingSnapshotResponse(snapshots))
}

// listSnapshots godoc
// @Summary List holding snapshots of a date
// @Tags investments
// @Produce json
// @Param household_id path string true "Household ID"
// @Param date query string true "Snapshot date (YYYY-MM-DD)"
// @Success 200 {array} dto.HoldingSnapshotResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/holdings/snapshots [get]
func (h *investmentHandler) listSnapshots(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	snapshots, err := h.investmentService.ListSnapshots(c.Request.Context(), householdIDParam(c), userID, c.Query("date"))
	if err != nil {
		respondServiceError(c, err, "Failed to list snapshots")
		return
	}
	c.JSON(http.StatusOK, dto.ToListHoldingSnapshotResponse(snapshots))
}
