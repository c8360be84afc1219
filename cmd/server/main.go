package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"gaterepo/config"
	_ "gaterepo/docs"
	"gaterepo/internal/adapters/auth"
	"gaterepo/internal/adapters/email"
	ethadapter "gaterepo/internal/adapters/ethereum"
	"gaterepo/internal/adapters/github"
	"gaterepo/internal/adapters/snapshot"
	httpdelivery "gaterepo/internal/delivery/http"
	"gaterepo/internal/delivery/http/controllers"
	"gaterepo/internal/delivery/http/middleware"
	"gaterepo/internal/domain"
	"gaterepo/internal/repository/postgres"
	"gaterepo/internal/services"
)

// @title GateRepo API
// @version 1.0
// @description Token-gated access to private GitHub repositories.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	chain, err := ethclient.Dial(cfg.RPCUrl)
	if err != nil {
		logger.Error("failed to dial ethereum rpc", "url", cfg.RPCUrl, "err", err)
		os.Exit(1)
	}
	defer chain.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	// Repositories
	gateRepo := postgres.NewGateRepository(db)
	userRepo := postgres.NewUserRepository(db)
	credRepo := postgres.NewCredentialRepository(db)
	auditRepo := postgres.NewInviteAuditRepository(db)

	// Adapters
	verifier := ethadapter.NewSignatureVerifier()
	liveOracle := ethadapter.NewLiveOracle(chain)
	snapshotOracle := snapshot.NewClient(httpClient, cfg.SnapshotScoreURL)
	inspector := ethadapter.NewTokenInspector(chain)
	host := github.NewClient(httpClient, cfg.GitHubAPIUrl)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)

	var emailService domain.EmailService
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Warn("mailer disabled", "err", err)
	} else {
		emailService = services.NewEmailService(mailer, email.NewTemplateRenderer())
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURL,
		Scopes:       []string{"repo", "user:email"},
		Endpoint:     githuboauth.Endpoint,
	}

	// Services
	accessService := services.NewGateAccessService(
		gateRepo, userRepo, credRepo, auditRepo,
		verifier, liveOracle, snapshotOracle, host,
		emailService, logger,
	)
	gateService := services.NewGateService(gateRepo, credRepo, host, inspector, logger)
	repoService := services.NewRepoService(credRepo, host)
	authService := services.NewAuthService(oauthCfg, host, userRepo, credRepo, tokenIssuer, logger)

	// Controllers
	accessController := controllers.NewAccessController(logger, accessService)
	gateController := controllers.NewGateController(logger, gateService)
	repoController := controllers.NewRepoController(logger, repoService)
	authController := controllers.NewAuthController(logger, authService)

	mux := httpdelivery.NewRouter(
		tokenVerifier,
		logger,
		accessController,
		gateController,
		repoController,
		authController,
	)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
