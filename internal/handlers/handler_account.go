package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers account routes within a household-specific group.
func registerAccountRoutes(hg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := hg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:account_id", h.getAccount)
		accounts.GET("/:account_id/balance", h.getAccountBalance)
		accounts.PUT("/:account_id", h.updateAccount)
		accounts.DELETE("/:account_id", h.deactivateAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates an account in the household. A non-zero opening balance posts a balanced SYSTEM entry.
// @Tags accounts
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Account name already in use"
// @Security BearerAuth
// @Router /households/{household_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), householdIDParam(c), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts of a household
// @Tags accounts
// @Produce json
// @Param household_id path string true "Household ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /households/{household_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.accountService.ListAccounts(c.Request.Context(), householdIDParam(c), userID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce json
// @Param household_id path string true "Household ID"
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), householdIDParam(c), c.Param("account_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountBalance godoc
// @Summary Get the current balance of an account
// @Tags accounts
// @Produce json
// @Param household_id path string true "Household ID"
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/accounts/{account_id}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accountID := c.Param("account_id")

	// Household scoping happens in GetAccountByID; the calculator only needs IDs.
	if _, err := h.accountService.GetAccountByID(c.Request.Context(), householdIDParam(c), accountID, userID); err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	balance, err := h.accountService.CalculateAccountBalance(c.Request.Context(), householdIDParam(c), accountID)
	if err != nil {
		respondServiceError(c, err, "Failed to calculate balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: accountID, Balance: balance})
}

// updateAccount godoc
// @Summary Update an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param household_id path string true "Household ID"
// @Param account_id path string true "Account ID"
// @Param account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), householdIDParam(c), c.Param("account_id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks the account inactive. Its lines and history remain.
// @Tags accounts
// @Param household_id path string true "Household ID"
// @Param account_id path string true "Account ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /households/{household_id}/accounts/{account_id} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), householdIDParam(c), c.Param("account_id"), userID); err != nil {
		respondServiceError(c, err, "Failed to deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}
