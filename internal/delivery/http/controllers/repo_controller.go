package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"gaterepo/internal/delivery/http/helpers"
	"gaterepo/internal/delivery/http/middleware"
	"gaterepo/internal/domain"
)

type RepoController struct {
	Logger  *slog.Logger
	Service domain.RepoService
}

func NewRepoController(logger *slog.Logger, svc domain.RepoService) *RepoController {
	return &RepoController{
		Logger:  logger,
		Service: svc,
	}
}

// ListRepos godoc
// @Summary List the caller's private repositories
// @Description Returns private repositories where the caller holds admin permission, with archived and disabled entries filtered.
// @Tags github
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the repository list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 412 {object} helpers.APIResponse "error.code: credential_missing"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /github/repos [get]
func (c *RepoController) ListRepos(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	repos, err := c.Service.ListRepositories(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			helpers.WriteJSONError(w, http.StatusPreconditionFailed, helpers.ErrCodeCredentialMissing, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if repos == nil {
		repos = []*domain.Repository{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, repos)
}

// GetRepo godoc
// @Summary Get one repository
// @Description Returns a single repository the caller administers.
// @Tags github
// @Produce json
// @Security BearerAuth
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Success 200 {object} helpers.APIResponse "data contains the repository"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 412 {object} helpers.APIResponse "error.code: credential_missing"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /github/repos/{owner}/{repo} [get]
func (c *RepoController) GetRepo(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")
	if owner == "" || repo == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing owner or repo")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	repository, err := c.Service.GetRepository(r.Context(), userID, owner, repo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRepoNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "repository does not exist or no access")
		case errors.Is(err, domain.ErrCredentialMissing):
			helpers.WriteJSONError(w, http.StatusPreconditionFailed, helpers.ErrCodeCredentialMissing, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, repository)
}
