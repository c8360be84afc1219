package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"gaterepo/internal/delivery/http/helpers"
	"gaterepo/internal/domain"
)

// LoginRequest is the request body for POST /auth/github/login.
type LoginRequest struct {
	Code string `json:"code"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Code) == "" {
		errs = append(errs, "code is required")
	}
	return errs
}

// LoginResponse is the response body for POST /auth/github/login.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// LoginURLResponse is the response body for GET /auth/github/url.
type LoginURLResponse struct {
	URL string `json:"url"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// LoginURL godoc
// @Summary Get the GitHub authorization URL
// @Description Returns the provider authorization URL for the supplied state parameter.
// @Tags auth
// @Produce json
// @Param state query string true "Opaque CSRF state echoed back on the callback"
// @Success 200 {object} helpers.APIResponse "data contains the authorization url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /auth/github/url [get]
func (c *AuthController) LoginURL(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing state")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginURLResponse{URL: c.Service.LoginURL(state)})
}

// Login godoc
// @Summary Log in with a GitHub authorization code
// @Description Exchanges the OAuth code, upserts the user and their access credential, and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Authorization code"
// @Success 200 {object} helpers.APIResponse "data contains the session token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/github/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.LoginWithCode(r.Context(), req.Code)
	if err != nil {
		c.Logger.WarnContext(r.Context(), "login failed", "err", err)
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "login failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      user,
	})
}
