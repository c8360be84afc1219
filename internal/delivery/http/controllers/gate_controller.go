package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"gaterepo/internal/delivery/http/helpers"
	"gaterepo/internal/delivery/http/middleware"
	"gaterepo/internal/domain"
)

// addressRegex matches a 0x-prefixed 20-byte hex address.
var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// CreateGateRequest is the request body for POST /gates.
type CreateGateRequest struct {
	Owner        string  `json:"owner"`
	Repo         string  `json:"repo"`
	Contract     string  `json:"contract"`
	Tokens       float64 `json:"tokens"`
	Invites      int     `json:"invites"`
	ReadOnly     bool    `json:"readOnly"`
	DynamicCheck bool    `json:"dynamicCheck"`
}

// Validate implements Validator.
func (c CreateGateRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Owner) == "" {
		errs = append(errs, "owner is required")
	}
	if strings.TrimSpace(c.Repo) == "" {
		errs = append(errs, "repo is required")
	}
	if !addressRegex.MatchString(c.Contract) {
		errs = append(errs, "contract must be a valid address")
	}
	if c.Tokens <= 0 {
		errs = append(errs, "tokens must be positive")
	}
	if c.Invites <= 0 {
		errs = append(errs, "invites must be positive")
	}
	return errs
}

// CreateGateResponse is the success response body for POST /gates.
type CreateGateResponse struct {
	ID string `json:"id"`
}

type GateController struct {
	Logger  *slog.Logger
	Service domain.GateService
}

func NewGateController(logger *slog.Logger, svc domain.GateService) *GateController {
	return &GateController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateGate godoc
// @Summary Create a gated repository offer
// @Description Verifies the caller administers the repository, resolves the token's name and decimals, pins the current block number unless dynamicCheck is set, and stores the gate.
// @Tags gates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param gate body CreateGateRequest true "Gate configuration"
// @Success 201 {object} helpers.APIResponse "data contains the new gate id"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 412 {object} helpers.APIResponse "error.code: credential_missing"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /gates [post]
func (c *GateController) CreateGate(w http.ResponseWriter, r *http.Request) {
	var req CreateGateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	gate, err := c.Service.Create(r.Context(), userID, domain.CreateGateParams{
		RepoOwner:    req.Owner,
		RepoName:     req.Repo,
		Contract:     req.Contract,
		NumTokens:    req.Tokens,
		NumInvites:   req.Invites,
		ReadOnly:     req.ReadOnly,
		DynamicCheck: req.DynamicCheck,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRepoNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "repository does not exist or no admin access")
		case errors.Is(err, domain.ErrCredentialMissing):
			helpers.WriteJSONError(w, http.StatusPreconditionFailed, helpers.ErrCodeCredentialMissing, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateGateResponse{ID: gate.ID})
}

// ListGates godoc
// @Summary List the caller's gates
// @Description Returns gates created by the caller, excluding exhausted ones, sorted by pinned block number descending.
// @Tags gates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the gate list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /gates [get]
func (c *GateController) ListGates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	gates, err := c.Service.ListByCreator(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if gates == nil {
		gates = []*domain.Gate{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, gates)
}

// DeleteGate godoc
// @Summary Delete a gate
// @Description Deletes a gate. Only the creator may delete it.
// @Tags gates
// @Produce json
// @Security BearerAuth
// @Param gateID path string true "Gate ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains true"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /gates/{gateID} [delete]
func (c *GateController) DeleteGate(w http.ResponseWriter, r *http.Request) {
	gateID := r.PathValue("gateID")
	if gateID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing gateID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), userID, gateID); err != nil {
		switch {
		case errors.Is(err, domain.ErrGateNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "gate not found")
		case errors.Is(err, domain.ErrNotGateCreator):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, true)
}
