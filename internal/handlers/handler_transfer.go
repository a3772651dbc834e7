package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// transferHandler handles HTTP requests related to auto-transfer rules and instances.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{transferService: ts}
}

// registerTransferRoutes registers transfer routes within a household-specific group.
func registerTransferRoutes(hg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)

	rules := hg.Group("/transfer-rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.PUT("/:rule_id", h.updateRule)
		rules.DELETE("/:rule_id", h.deactivateRule)
	}

	instances := hg.Group("/transfer-instances")
	{
		instances.GET("", h.listInstances)
		instances.POST("/:instance_id/confirm", h.confirmInstance)
		instances.POST("/:instance_id/skip", h.skipInstance)
	}
}

// createRule godoc
// @Summary Create a recurring transfer rule
// @Description Creates a rule. Instances are not generated here; the scheduler materializes them when they come due.
// @Tags transfers
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param rule body dto.CreateTransferRuleRequest true "Rule details"
// @Success 201 {object} dto.TransferRuleResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/transfer-rules [post]
func (h *transferHandler) createRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateTransferRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.transferService.CreateRule(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create transfer rule")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransferRuleResponse(rule))
}

// listRules godoc
// @Summary List transfer rules
// @Tags transfers
// @Produce json
// @Param household_id path string true "Household ID"
// @Param includeInactive query bool false "Include deactivated rules" default(false)
// @Success 200 {array} dto.TransferRuleResponse
// @Security BearerAuth
// @Router /households/{household_id}/transfer-rules [get]
func (h *transferHandler) listRules(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	includeInactive := c.Query("includeInactive") == "true"

	rules, err := h.transferService.ListRules(c.Request.Context(), householdIDParam(c), userID, includeInactive)
	if err != nil {
		respondServiceError(c, err, "Failed to list transfer rules")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransferRuleResponse(rules))
}

// updateRule godoc
// @Summary Update a transfer rule
// @Description Updates rule details. Already-materialized instances are unaffected.
// @Tags transfers
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param rule_id path string true "Rule ID"
// @Param rule body dto.UpdateTransferRuleRequest true "Fields to update"
// @Success 200 {object} dto.TransferRuleResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/transfer-rules/{rule_id} [put]
func (h *transferHandler) updateRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateTransferRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.transferService.UpdateRule(c.Request.Context(), householdIDParam(c), c.Param("rule_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update transfer rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferRuleResponse(rule))
}

// deactivateRule godoc
// @Summary Deactivate a transfer rule
// @Description Stops future instance generation. Pending instances remain actionable.
// @Tags transfers
// @Param household_id path string true "Household ID"
// @Param rule_id path string true "Rule ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/transfer-rules/{rule_id} [delete]
func (h *transferHandler) deactivateRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.transferService.DeactivateRule(c.Request.Context(), householdIDParam(c), c.Param("rule_id"), userID); err != nil {
		respondServiceError(c, err, "Failed to deactivate transfer rule")
		return
	}
	c.Status(http.StatusNoContent)
}

// listInstances godoc
// @Summary List transfer instances
// @Tags transfers
// @Produce json
// @Param household_id path string true "Household ID"
// @Param status query string false "Filter by status" Enums(PENDING, CONFIRMED, MISSED, SKIPPED)
// @Param yearMonth query string false "Filter by due month (YYYY-MM)"
// @Success 200 {array} dto.TransferInstanceResponse
// @Security BearerAuth
// @Router /households/{household_id}/transfer-instances [get]
func (h *transferHandler) listInstances(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListTransferInstancesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	instances, err := h.transferService.ListInstances(c.Request.Context(), householdIDParam(c), userID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list transfer instances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransferInstanceResponse(instances))
}

// confirmInstance godoc
// @Summary Confirm a transfer instance
// @Description Posts the transfer entry and marks the instance CONFIRMED. Only a PENDING instance can be confirmed; repeating the confirm returns a conflict.
// @Tags transfers
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param instance_id path string true "Instance ID"
// @Param confirm body dto.ConfirmTransferRequest true "Optional amount and date overrides"
// @Success 200 {object} dto.TransferInstanceResponse
// @Failure 409 {object} ErrorResponse "Instance is not pending"
// @Security BearerAuth
// @Router /households/{household_id}/transfer-instances/{instance_id}/confirm [post]
func (h *transferHandler) confirmInstance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.ConfirmTransferRequest
	if !bindJSON(c, &req) {
		return
	}

	instance, err := h.transferService.ConfirmInstance(c.Request.Context(), householdIDParam(c), c.Param("instance_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to confirm transfer instance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferInstanceResponse(instance))
}

// skipInstance godoc
// @Summary Skip a transfer instance
// @Description Marks a PENDING instance SKIPPED without posting an entry.
// @Tags transfers
// @Produce json
// @Param household_id path string true "Household ID"
// @Param instance_id path string true "Instance ID"
// @Success 200 {object} dto.TransferInstanceResponse
// @Failure 409 {object} ErrorResponse "Instance is not pending"
// @Security BearerAuth
// @Router /households/{household_id}/transfer-instances/{instance_id}/skip [post]
func (h *transferHandler) skipInstance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	instance, err := h.transferService.SkipInstance(c.Request.Context(), householdIDParam(c), c.Param("instance_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to skip transfer instance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferInstanceResponse(instance))
}
