package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gaterepo/internal/delivery/http/helpers"
	"gaterepo/internal/delivery/http/middleware"
	"gaterepo/internal/domain"
)

// AccessGrantRequest is the request body for POST /gates/access. The readOnly
// and dynamicCheck fields are informational; the stored gate is authoritative.
type AccessGrantRequest struct {
	Address      string `json:"address"`
	Signature    string `json:"signature"`
	GateID       string `json:"gateId"`
	ReadOnly     bool   `json:"readOnly"`
	DynamicCheck bool   `json:"dynamicCheck"`
}

// Validate implements Validator.
func (a AccessGrantRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Address) == "" {
		errs = append(errs, "address is required")
	}
	if strings.TrimSpace(a.Signature) == "" {
		errs = append(errs, "signature is required")
	}
	if strings.TrimSpace(a.GateID) == "" {
		errs = append(errs, "gateId is required")
	}
	return errs
}

// AccessGrantResponse is the success response body for POST /gates/access.
type AccessGrantResponse struct {
	Success bool `json:"success"`
}

type AccessController struct {
	Logger  *slog.Logger
	Service domain.GateAccessService
}

func NewAccessController(logger *slog.Logger, svc domain.GateAccessService) *AccessController {
	return &AccessController{
		Logger:  logger,
		Service: svc,
	}
}

// Grant godoc
// @Summary Claim access to a gated repository
// @Description Verifies the signature over the challenge message, checks the address's token balance against the gate's threshold, and adds the caller as a collaborator on the gated repository, consuming one invite.
// @Tags gates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AccessGrantRequest true "Access claim"
// @Success 200 {object} helpers.APIResponse "data contains {success: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: invalid_signature or insufficient_balance"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: quota_exhausted or already_member"
// @Failure 412 {object} helpers.APIResponse "error.code: credential_missing or owner_credential_missing"
// @Failure 502 {object} helpers.APIResponse "error.code: balance_check_failed, invite_issue_failed or invite_accept_failed"
// @Router /gates/access [post]
func (c *AccessController) Grant(w http.ResponseWriter, r *http.Request) {
	var req AccessGrantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	err := c.Service.Grant(r.Context(), userID, domain.AccessRequest{
		Address:      req.Address,
		Signature:    req.Signature,
		GateID:       req.GateID,
		ReadOnly:     req.ReadOnly,
		DynamicCheck: req.DynamicCheck,
	})
	if err != nil {
		status, code := accessErrorStatus(err)
		if status == http.StatusInternalServerError || status == http.StatusBadGateway {
			c.Logger.ErrorContext(r.Context(), "access grant failed", "path", r.URL.Path, "gate_id", req.GateID, "err", err)
		}
		helpers.WriteJSONError(w, status, code, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AccessGrantResponse{Success: true})
}

// accessErrorStatus maps each protocol exit to a distinct status and code.
func accessErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingParameters):
		return http.StatusBadRequest, helpers.ErrCodeBadRequest
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusForbidden, helpers.ErrCodeInvalidSignature
	case errors.Is(err, domain.ErrGateNotFound):
		return http.StatusNotFound, helpers.ErrCodeNotFound
	case errors.Is(err, domain.ErrQuotaExhausted):
		return http.StatusConflict, helpers.ErrCodeQuotaExhausted
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusForbidden, helpers.ErrCodeInsufficientBalance
	case errors.Is(err, domain.ErrBalanceCheck):
		return http.StatusBadGateway, helpers.ErrCodeBalanceCheckFailed
	case errors.Is(err, domain.ErrCredentialMissing):
		return http.StatusPreconditionFailed, helpers.ErrCodeCredentialMissing
	case errors.Is(err, domain.ErrOwnerCredentialMissing):
		return http.StatusPreconditionFailed, helpers.ErrCodeOwnerCredMissing
	case errors.Is(err, domain.ErrAlreadyMember):
		return http.StatusConflict, helpers.ErrCodeAlreadyMember
	case errors.Is(err, domain.ErrInviteIssueFailed):
		return http.StatusBadGateway, helpers.ErrCodeInviteIssueFailed
	case errors.Is(err, domain.ErrInviteAcceptFailed):
		return http.StatusBadGateway, helpers.ErrCodeInviteAcceptFailed
	default:
		return http.StatusInternalServerError, helpers.ErrCodeInternalError
	}
}
