package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// householdHandler handles HTTP requests related to households and membership.
type householdHandler struct {
	householdService portssvc.HouseholdSvcFacade
}

func newHouseholdHandler(hs portssvc.HouseholdSvcFacade) *householdHandler {
	return &householdHandler{householdService: hs}
}

// registerHouseholdRoutes registers household routes and nests every
// household-scoped entity under /households/:household_id.
func registerHouseholdRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newHouseholdHandler(services.Household)

	households := rg.Group("/households")
	{
		households.POST("", h.createHousehold)
		households.GET("", h.listUserHouseholds)
	}

	householdSpecific := rg.Group("/households/:household_id")
	{
		householdSpecific.GET("", h.getHousehold)

		members := householdSpecific.Group("/members")
		{
			members.POST("", h.addMember)
			members.GET("", h.listMembers)
			members.PUT("/:user_id", h.updateMemberRole)
		}

		registerAccountRoutes(householdSpecific, services.Account)
		registerCategoryRoutes(householdSpecific, services.Category)
		registerEntryRoutes(householdSpecific, services.Ledger)
		registerClosingRoutes(householdSpecific, services.Closing, services.Investment)
		registerTransferRoutes(householdSpecific, services.Transfer)
		registerLoanRoutes(householdSpecific, services.Loan)
		registerInvestmentRoutes(householdSpecific, services.Investment)
		registerBudgetRoutes(householdSpecific, services.Budget)
		registerReportingRoutes(householdSpecific, services.Reporting)
	}
}

// createHousehold godoc
// @Summary Create a new household
// @Description Creates a household with the caller as OWNER and seeds the default category tree.
// @Tags households
// @Accept json
// @Produce json
// @Param household body dto.CreateHouseholdRequest true "Household details"
// @Success 201 {object} dto.HouseholdResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households [post]
func (h *householdHandler) createHousehold(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateHouseholdRequest
	if !bindJSON(c, &req) {
		return
	}

	household, err := h.householdService.CreateHousehold(c.Request.Context(), req.Name, req.CurrencyCode, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create household")
		return
	}
	c.JSON(http.StatusCreated, dto.ToHouseholdResponse(household))
}

// listUserHouseholds godoc
// @Summary List the caller's households
// @Tags households
// @Produce json
// @Success 200 {object} dto.ListHouseholdsResponse
// @Security BearerAuth
// @Router /households [get]
func (h *householdHandler) listUserHouseholds(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	households, err := h.householdService.ListUserHouseholds(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list households")
		return
	}
	c.JSON(http.StatusOK, dto.ToListHouseholdsResponse(households))
}

// getHousehold godoc
// @Summary Get a household by ID
// @Tags households
// @Produce json
// @Param household_id path string true "Household ID"
// @Success 200 {object} dto.HouseholdResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id} [get]
func (h *householdHandler) getHousehold(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	householdID := householdIDParam(c)

	// Membership check before exposing household details.
	if _, err := h.householdService.ListHouseholdMembers(c.Request.Context(), householdID, userID); err != nil {
		respondServiceError(c, err, "Failed to retrieve household")
		return
	}
	household, err := h.householdService.FindHouseholdByID(c.Request.Context(), householdID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve household")
		return
	}
	c.JSON(http.StatusOK, dto.ToHouseholdResponse(household))
}

// addMember godoc
// @Summary Add a member to a household
// @Description Only the OWNER can add members; a household has exactly one OWNER.
// @Tags households
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param member body dto.AddMemberRequest true "User and role"
// @Success 201 "Created"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/members [post]
func (h *householdHandler) addMember(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.householdService.AddUserToHousehold(c.Request.Context(), userID, req.UserID, householdIDParam(c), req.Role); err != nil {
		respondServiceError(c, err, "Failed to add member")
		return
	}
	c.Status(http.StatusCreated)
}

// listMembers godoc
// @Summary List household members
// @Tags households
// @Produce json
// @Param household_id path string true "Household ID"
// @Success 200 {array} dto.MemberResponse
// @Security BearerAuth
// @Router /households/{household_id}/members [get]
func (h *householdHandler) listMembers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	members, err := h.householdService.ListHouseholdMembers(c.Request.Context(), householdIDParam(c), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMemberResponse(members))
}

// updateMemberRole godoc
// @Summary Change a member's role
// @Description Only the OWNER can change roles, and the OWNER role cannot be reassigned.
// @Tags households
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param user_id path string true "Target user ID"
// @Param role body dto.UpdateMemberRoleRequest true "New role"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/members/{user_id} [put]
func (h *householdHandler) updateMemberRole(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateMemberRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.householdService.UpdateUserHouseholdRole(c.Request.Context(), userID, c.Param("user_id"), householdIDParam(c), req.Role); err != nil {
		respondServiceError(c, err, "Failed to update member role")
		return
	}
	c.Status(http.StatusNoContent)
}
