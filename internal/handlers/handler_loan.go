package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// loanHandler handles HTTP requests related to loans.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

func newLoanHandler(ls portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{loanService: ls}
}

// registerLoanRoutes registers loan routes within a household-specific group.
func registerLoanRoutes(hg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := hg.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("", h.listLoans)
		loans.GET("/:loan_id", h.getLoan)
		loans.GET("/:loan_id/schedule", h.getSchedule)
		loans.GET("/:loan_id/rates", h.getRateHistory)
		loans.POST("/:loan_id/rates", h.addRate)
		loans.POST("/:loan_id/payments", h.postPayment)
		loans.POST("/:loan_id/simulate-prepayment", h.simulatePrepayment)
		loans.DELETE("/:loan_id", h.deactivateLoan)
	}
}

// createLoan godoc
// @Summary Register a loan
// @Description Registers a loan, records its initial rate and generates the full amortization schedule.
// @Tags loans
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param loan body dto.CreateLoanRequest true "Loan details"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans [post]
func (h *loanHandler) createLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateLoanRequest
	if !bindJSON(c, &req) {
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create loan")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// listLoans godoc
// @Summary List loans of a household
// @Tags loans
// @Produce json
// @Param household_id path string true "Household ID"
// @Param includeInactive query bool false "Include deactivated loans" default(false)
// @Success 200 {array} dto.LoanResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	includeInactive := c.Query("includeInactive") == "true"

	loans, err := h.loanService.ListLoans(c.Request.Context(), householdIDParam(c), userID, includeInactive)
	if err != nil {
		respondServiceError(c, err, "Failed to list loans")
		return
	}
	c.JSON(http.StatusOK, dto.ToListLoanResponse(loans))
}

// getLoan godoc
// @Summary Get a loan by ID
// @Tags loans
// @Produce json
// @Param household_id path string true "Household ID"
// @Param loan_id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans/{loan_id} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.GetLoanByID(c.Request.Context(), householdIDParam(c), c.Param("loan_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// getSchedule godoc
// @Summary Get the amortization schedule of a loan
// @Tags loans
// @Produce json
// @Param household_id path string true "Household ID"
// @Param loan_id path string true "Loan ID"
// @Success 200 {array} dto.LoanScheduleEntryResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans/{loan_id}/schedule [get]
func (h *loanHandler) getSchedule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	schedule, err := h.loanService.GetSchedule(c.Request.Context(), householdIDParam(c), c.Param("loan_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve loan schedule")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanScheduleResponses(schedule))
}

// getRateHistory godoc
// @Summary Get the rate history of a loan
// @Description Returns the append-only rate history, oldest first.
// @Tags loans
// @Produce json
// @Param household_id path string true "Household ID"
// @Param loan_id path string true "Loan ID"
// @Success 200 {array} dto.LoanRateResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans/{loan_id}/rates [get]
func (h *loanHandler) getRateHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rates, err := h.loanService.GetRateHistory(c.Request.Context(), householdIDParam(c), c.Param("loan_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve rate history")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanRateResponses(rates))
}

// addRate godoc
// @Summary Add a rate change
// @Description Appends a rate to the history and regenerates the unlocked schedule periods from the effective date forward. Locked periods keep their posted figures.
// @Tags loans
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param loan_id path string true "Loan ID"
// @Param rate body dto.AddLoanRateRequest true "New rate and effective date"
// @Success 200 {array} dto.LoanScheduleEntryResponse "Regenerated schedule"
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans/{loan_id}/rates [post]
func (h *loanHandler) addRate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.AddLoanRateRequest
	if !bindJSON(c, &req) {
		return
	}

	schedule, err := h.loanService.AddRate(c.Request.Context(), householdIDParam(c), c.Param("loan_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to add loan rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanScheduleResponses(schedule))
}

// postPayment godoc
// @Summary Post a scheduled loan payment
// @Description Posts one period's payment as a ledger entry and locks the period. Periods must be posted in order; re-posting a locked period returns a conflict.
// @Tags loans
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param loan_id path string true "Loan ID"
// @Param payment body dto.PostLoanPaymentRequest true "Schedule period and optional payment account"
// @Success 201 {object} dto.EntryResponse
// @Failure 409 {object} ErrorResponse "Period already posted or out of order"
// @Security BearerAuth
// @Router /households/{household_id}/loans/{loan_id}/payments [post]
func (h *loanHandler) postPayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.PostLoanPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.loanService.PostPayment(c.Request.Context(), householdIDParam(c), c.Param("loan_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to post loan payment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// simulatePrepayment godoc
// @Summary Simulate a prepayment
// @Description Projects the effect of an extra principal payment on the monthly payment and total interest. Read-only; nothing is posted.
// @Tags loans
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param loan_id path string true "Loan ID"
// @Param simulation body dto.SimulatePrepaymentRequest true "Prepayment amount"
// @Success 200 {object} dto.PrepaymentProjectionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans/{loan_id}/simulate-prepayment [post]
func (h *loanHandler) simulatePrepayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.SimulatePrepaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	projection, err := h.loanService.SimulatePrepayment(c.Request.Context(), householdIDParam(c), c.Param("loan_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to simulate prepayment")
		return
	}
	c.JSON(http.StatusOK, dto.ToPrepaymentProjectionResponse(projection))
}

// deactivateLoan godoc
// @Summary Deactivate a loan
// @Tags loans
// @Param household_id path string true "Household ID"
// @Param loan_id path string true "Loan ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/loans/{loan_id} [delete]
func (h *loanHandler) deactivateLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.loanService.DeactivateLoan(c.Request.Context(), householdIDParam(c), c.Param("loan_id"), userID); err != nil {
		respondServiceError(c, err, "Failed to deactivate loan")
		return
	}
	c.Status(http.StatusNoContent)
}
