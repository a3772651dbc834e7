package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
	"github.com/hearthsoft/household_ledger_app/internal/middleware"
	"github.com/hearthsoft/household_ledger_app/internal/platform/config"
	"github.com/hearthsoft/household_ledger_app/internal/utils"
	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// authHandler handles authentication related requests.
type authHandler struct {
	cfg          *config.Config
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	oauthService portssvc.GoogleOAuthHandlerSvcFacade
}

func newAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *authHandler {
	return &authHandler{
		cfg:          cfg,
		userService:  services.User,
		tokenService: services.Token,
		oauthService: services.GoogleOAuth,
	}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newAuthHandler(cfg, services)

	// 5 requests per minute per IP on credential endpoints
	rate, _ := limiter.NewRateFromFormatted("5-M")
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)
	limitMiddleware := limitergin.NewMiddleware(ipLimiter)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", limitMiddleware, h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", h.logout)
		auth.GET("/google/login", h.googleLogin)
		auth.GET("/google/callback", h.googleCallback)
	}
}

// register godoc
// @Summary Register a new user
// @Description Creates a new user account with email and password.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterUserRequest true "User registration info"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// login godoc
// @Summary User login
// @Description Authenticates with email and password, returning a JWT and setting the refresh token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		respondServiceError(c, err, "Failed to authenticate user")
		return
	}

	h.issueTokens(c, user)
}

// refresh godoc
// @Summary Refresh the access token
// @Description Exchanges the refresh token cookie for a new access token, rotating the refresh token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *authHandler) refresh(c *gin.Context) {
	userID, rawToken, ok := h.readRefreshCookie(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing refresh token"})
		return
	}

	user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, rawToken)
	if err != nil {
		h.clearRefreshCookie(c)
		respondServiceError(c, err, "Failed to refresh token")
		return
	}

	// Rotate: every refresh invalidates the previous refresh token.
	h.issueTokens(c, user)
}

// logout godoc
// @Summary Log out
// @Description Invalidates the stored refresh token and clears the cookie.
// @Tags auth
// @Produce json
// @Success 204 "No content"
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	if userID, _, ok := h.readRefreshCookie(c); ok {
		if err := h.userService.ClearRefreshToken(c.Request.Context(), userID); err != nil {
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Warn("Failed to clear refresh token on logout", slog.String("error", err.Error()))
		}
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// googleLogin godoc
// @Summary Start Google OAuth login
// @Description Redirects the browser to Google's consent screen.
// @Tags auth
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *authHandler) googleLogin(c *gin.Context) {
	state, err := h.oauthService.GenerateStateString(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to start Google login")
		return
	}

	c.SetCookie("oauth_state", state, 600, "/api/v1/auth", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauthService.GetGoogleLoginURL(c.Request.Context(), state))
}

// googleCallback godoc
// @Summary Google OAuth callback
// @Description Completes the OAuth flow: verifies state, exchanges the code and signs the user in, registering them on first login.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/google/callback [get]
func (h *authHandler) googleCallback(c *gin.Context) {
	expectedState, err := c.Cookie("oauth_state")
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid OAuth state"})
		return
	}
	c.SetCookie("oauth_state", "", -1, "/api/v1/auth", "", h.cfg.IsProduction, true)

	token, err := h.oauthService.ExchangeCodeForToken(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondServiceError(c, err, "Failed to exchange OAuth code")
		return
	}
	userInfo, err := h.oauthService.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch Google user info")
		return
	}
	if !userInfo.VerifiedEmail {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Google account email is not verified"})
		return
	}

	user, err := h.userService.GetUserByEmail(c.Request.Context(), userInfo.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		// First Google login registers the user with an unguessable password.
		password, randErr := utils.GenerateSecureRandomString(32)
		if randErr != nil {
			respondServiceError(c, randErr, "Failed to register Google user")
			return
		}
		user, err = h.userService.CreateUser(c.Request.Context(), dto.RegisterUserRequest{
			Name:     userInfo.Name,
			Email:    userInfo.Email,
			Password: password,
		})
	}
	if err != nil {
		respondServiceError(c, err, "Failed to sign in with Google")
		return
	}

	h.issueTokens(c, user)
}

// issueTokens generates the access and refresh tokens, persists the refresh
// token hash and writes both to the response.
func (h *authHandler) issueTokens(c *gin.Context, user *domain.User) {
	accessToken, _, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err, "Failed to generate access token")
		return
	}
	rawRefreshToken, refreshExpiry, err := h.tokenService.GenerateRefreshToken(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err, "Failed to generate refresh token")
		return
	}
	if err := h.userService.UpdateRefreshToken(c.Request.Context(), user.UserID, utils.HashRefreshToken(rawRefreshToken), refreshExpiry); err != nil {
		respondServiceError(c, err, "Failed to store refresh token")
		return
	}

	maxAge := int(h.cfg.RefreshTokenExpiryDuration.Seconds())
	cookieValue := user.UserID + "." + rawRefreshToken
	c.SetCookie(h.cfg.RefreshTokenCookieName, cookieValue, maxAge, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: accessToken,
		User:  dto.ToUserResponse(user),
	})
}

// readRefreshCookie splits the "<userID>.<token>" refresh cookie.
func (h *authHandler) readRefreshCookie(c *gin.Context) (userID, rawToken string, ok bool) {
	value, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil || value == "" {
		return "", "", false
	}
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (h *authHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
}
