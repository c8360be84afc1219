package domain

import (
	"context"
	"errors"
)

// ErrRepoNotFound is returned by CodeHost.GetRepository when the repository
// does not exist or is not visible to the supplied token. For a private
// repository the two cases are indistinguishable on the platform side.
var ErrRepoNotFound = errors.New("repository not found or not accessible")

// Repository is the subset of code-host repository metadata the service uses.
// swagger:model Repository
type Repository struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	IsOrg    bool   `json:"is_org"`
	Admin    bool   `json:"-"`
	Archived bool   `json:"-"`
	Disabled bool   `json:"-"`
}

// CodeHostUser is the code-host identity behind an access token.
type CodeHostUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// Collaborator permission levels passed to CodeHost.AddCollaborator.
// Empty string means the platform default (read/write).
const (
	PermissionPull    = "pull"
	PermissionDefault = ""
)

// CodeHost defines the external code-hosting API surface. Every call acts
// under an explicit caller-supplied access token; the client itself holds no
// ambient credential.
type CodeHost interface {
	GetRepository(ctx context.Context, token, owner, repo string) (*Repository, error)
	// ListPrivateRepositories pages through the caller's private repositories
	// across all affiliations.
	ListPrivateRepositories(ctx context.Context, token string) ([]*Repository, error)
	GetAuthenticatedUser(ctx context.Context, token string) (*CodeHostUser, error)
	// AddCollaborator invites username to the repository and returns the
	// invitation id. A zero id means no invitation was produced (for example
	// the platform treated the user as already added).
	AddCollaborator(ctx context.Context, token, owner, repo, username, permission string) (invitationID int64, err error)
	AcceptInvitation(ctx context.Context, token string, invitationID int64) error
}

// RepoService exposes the caller's code-host repositories using their linked
// credential.
type RepoService interface {
	ListRepositories(ctx context.Context, userID string) ([]*Repository, error)
	GetRepository(ctx context.Context, userID, owner, repo string) (*Repository, error)
}
