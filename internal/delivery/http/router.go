package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gaterepo/internal/delivery/http/controllers"
	"gaterepo/internal/delivery/http/middleware"
	"gaterepo/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	verifier domain.TokenVerifier,
	logger *slog.Logger,
	accessController *controllers.AccessController,
	gateController *controllers.GateController,
	repoController *controllers.RepoController,
	authController *controllers.AuthController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Core access protocol
	mux.HandleFunc("POST /gates/access", auth(accessController.Grant))

	// Gate lifecycle
	mux.HandleFunc("POST /gates", auth(gateController.CreateGate))
	mux.HandleFunc("GET /gates", auth(gateController.ListGates))
	mux.HandleFunc("DELETE /gates/{gateID}", auth(gateController.DeleteGate))

	// GitHub repositories
	mux.HandleFunc("GET /github/repos", auth(repoController.ListRepos))
	mux.HandleFunc("GET /github/repos/{owner}/{repo}", auth(repoController.GetRepo))

	// Auth
	mux.HandleFunc("GET /auth/github/url", authController.LoginURL)
	mux.HandleFunc("POST /auth/github/login", authController.Login)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
