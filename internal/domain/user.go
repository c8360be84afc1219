package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user and credential operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCredentialMissing = errors.New("no linked github credential")
)

// User represents a registered user, keyed to their GitHub identity.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	GitHubID  int64     `json:"github_id"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(githubID int64, login, name, email, avatarURL string, createdAt, updatedAt time.Time) *User {
	return &User{
		GitHubID:  githubID,
		Login:     login,
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Credential is an external API access token linked to a local user, used to
// act on their behalf against the code-hosting platform.
type Credential struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Provider    string    `json:"provider"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, login string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	// UpsertByGitHubID creates the user on first login and refreshes profile
	// fields on subsequent logins. The user's ID is set on return.
	UpsertByGitHubID(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
}

// CredentialRepository defines the interface for credential storage.
// A user may accumulate several credentials across logins; lookups return the
// newest one, so the most recently issued token always wins.
type CredentialRepository interface {
	Create(ctx context.Context, cred *Credential) error
	GetNewestByUserID(ctx context.Context, userID string) (*Credential, error)
}

// AuthService defines the GitHub OAuth login flow.
type AuthService interface {
	// LoginURL returns the provider authorization URL for the given state.
	LoginURL(state string) string
	// LoginWithCode exchanges an OAuth authorization code, upserts the user
	// and their credential, and returns a session token plus the user.
	LoginWithCode(ctx context.Context, code string) (token string, user *User, err error)
}
