package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// ledgerHandler handles HTTP requests related to ledger entries and lines.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerEntryRoutes registers entry and line routes within a household-specific group.
func registerEntryRoutes(hg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	entries := hg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entry_id", h.getEntry)
		entries.PUT("/:entry_id", h.updateEntry)
		entries.DELETE("/:entry_id", h.deleteEntry)
	}

	hg.GET("/accounts/:account_id/lines", h.listAccountLines)
}

// createEntry godoc
// @Summary Post a ledger entry
// @Description Creates a balanced entry. Line amounts must sum to exactly zero and the target month must be open, unless the entry type is ADJUSTMENT.
// @Tags entries
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param entry body dto.CreateEntryRequest true "Entry with its lines"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse "Lines do not balance"
// @Failure 409 {object} ErrorResponse "Month is closed"
// @Security BearerAuth
// @Router /households/{household_id}/entries [post]
func (h *ledgerHandler) createEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.ledgerService.CreateEntry(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List ledger entries
// @Description Lists entries newest first with token-based pagination and optional filters.
// @Tags entries
// @Produce json
// @Param household_id path string true "Household ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Param yearMonth query string false "Filter to a month (YYYY-MM)"
// @Param accountID query string false "Filter to entries touching an account"
// @Param categoryID query string false "Filter by category"
// @Param entryType query string false "Filter by entry type"
// @Param includeLines query bool false "Include lines in each entry" default(false)
// @Success 200 {object} dto.ListEntriesResponse
// @Security BearerAuth
// @Router /households/{household_id}/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), householdIDParam(c), userID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get an entry with its lines
// @Tags entries
// @Produce json
// @Param household_id path string true "Household ID"
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/entries/{entry_id} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), householdIDParam(c), c.Param("entry_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// updateEntry godoc
// @Summary Update an entry header
// @Description Updates the header of an unlocked entry. Lines are immutable; delete and re-post to change amounts.
// @Tags entries
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param entry_id path string true "Entry ID"
// @Param entry body dto.UpdateEntryRequest true "Header fields to update"
// @Success 200 {object} dto.EntryResponse
// @Failure 409 {object} ErrorResponse "Entry is locked"
// @Security BearerAuth
// @Router /households/{household_id}/entries/{entry_id} [put]
func (h *ledgerHandler) updateEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.ledgerService.UpdateEntry(c.Request.Context(), householdIDParam(c), c.Param("entry_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete an entry
// @Description Deletes an unlocked entry and rolls its lines out of the affected account balances.
// @Tags entries
// @Param household_id path string true "Household ID"
// @Param entry_id path string true "Entry ID"
// @Success 204 "No content"
// @Failure 409 {object} ErrorResponse "Entry is locked"
// @Security BearerAuth
// @Router /households/{household_id}/entries/{entry_id} [delete]
func (h *ledgerHandler) deleteEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteEntry(c.Request.Context(), householdIDParam(c), c.Param("entry_id"), userID); err != nil {
		respondServiceError(c, err, "Failed to delete entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// listAccountLines godoc
// @Summary List the lines of an account
// @Description Lists an account's lines newest first, each with the running balance after it was applied.
// @Tags entries
// @Produce json
// @Param household_id path string true "Household ID"
// @Param account_id path string true "Account ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListLinesResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/accounts/{account_id}/lines [get]
func (h *ledgerHandler) listAccountLines(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListLinesByAccount(c.Request.Context(), householdIDParam(c), c.Param("account_id"), userID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list account lines")
		return
	}
	c.JSON(http.StatusOK, resp)
}
