package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"gaterepo/internal/domain"
)

const sessionExpiry = 24 * time.Hour

type authService struct {
	oauth       *oauth2.Config
	host        domain.CodeHost
	users       domain.UserRepository
	creds       domain.CredentialRepository
	tokenIssuer domain.TokenIssuer
	logger      *slog.Logger
}

// NewAuthService creates an AuthService implementing GitHub OAuth login. On
// each successful login the user row is upserted and a fresh credential row
// is stored, so the newest access token always wins.
func NewAuthService(oauth *oauth2.Config, host domain.CodeHost, users domain.UserRepository, creds domain.CredentialRepository, tokenIssuer domain.TokenIssuer, logger *slog.Logger) domain.AuthService {
	return &authService{
		oauth:       oauth,
		host:        host,
		users:       users,
		creds:       creds,
		tokenIssuer: tokenIssuer,
		logger:      logger,
	}
}

func (s *authService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

func (s *authService) LoginWithCode(ctx context.Context, code string) (string, *domain.User, error) {
	oauthToken, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	ghUser, err := s.host.GetAuthenticatedUser(ctx, oauthToken.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch github user: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(ghUser.ID, ghUser.Login, ghUser.Name, ghUser.Email, ghUser.AvatarURL, now, now)
	if err := s.users.UpsertByGitHubID(ctx, user); err != nil {
		return "", nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	cred := &domain.Credential{
		UserID:      user.ID,
		Provider:    "github",
		AccessToken: oauthToken.AccessToken,
		CreatedAt:   now,
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return "", nil, fmt.Errorf("failed to store credential: %w", err)
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Login, sessionExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "login", user.Login)
	return token, user, nil
}
