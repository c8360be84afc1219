package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gaterepo/internal/domain"
)

const listReposPageSize = 100

type client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a CodeHost backed by the GitHub REST API. Every call
// authenticates with the caller-supplied token; the client holds no ambient
// credential.
func NewClient(httpClient *http.Client, baseURL string) domain.CodeHost {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &client{http: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}

type repoPayload struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Archived bool   `json:"archived"`
	Disabled bool   `json:"disabled"`
	Owner    struct {
		Type string `json:"type"`
	} `json:"owner"`
	Permissions struct {
		Admin bool `json:"admin"`
	} `json:"permissions"`
}

func (p *repoPayload) toDomain() *domain.Repository {
	return &domain.Repository{
		FullName: p.FullName,
		HTMLURL:  p.HTMLURL,
		IsOrg:    p.Owner.Type == "Organization",
		Admin:    p.Permissions.Admin,
		Archived: p.Archived,
		Disabled: p.Disabled,
	}
}

func (c *client) do(ctx context.Context, token, method, path string, body io.Reader, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to reach github: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode github response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) GetRepository(ctx context.Context, token, owner, repo string) (*domain.Repository, error) {
	var payload repoPayload
	status, err := c.do(ctx, token, http.MethodGet, fmt.Sprintf("/repos/%s/%s", owner, repo), nil, &payload)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return payload.toDomain(), nil
	case status == http.StatusNotFound || status == http.StatusForbidden:
		return nil, domain.ErrRepoNotFound
	default:
		return nil, fmt.Errorf("github get repository returned status %d", status)
	}
}

func (c *client) ListPrivateRepositories(ctx context.Context, token string) ([]*domain.Repository, error) {
	var repos []*domain.Repository
	// Page until an empty page; the API caps page size at 100 with no cursor.
	for page := 1; ; page++ {
		path := fmt.Sprintf(
			"/user/repos?visibility=private&affiliation=owner,collaborator,organization_member&sort=pushed&per_page=%d&page=%d",
			listReposPageSize, page,
		)
		var payload []repoPayload
		status, err := c.do(ctx, token, http.MethodGet, path, nil, &payload)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("github list repositories returned status %d", status)
		}
		for i := range payload {
			repos = append(repos, payload[i].toDomain())
		}
		if len(payload) < listReposPageSize {
			return repos, nil
		}
	}
}

func (c *client) GetAuthenticatedUser(ctx context.Context, token string) (*domain.CodeHostUser, error) {
	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	status, err := c.do(ctx, token, http.MethodGet, "/user", nil, &payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("github get user returned status %d", status)
	}
	return &domain.CodeHostUser{
		ID:        payload.ID,
		Login:     payload.Login,
		Name:      payload.Name,
		Email:     payload.Email,
		AvatarURL: payload.AvatarURL,
	}, nil
}

func (c *client) AddCollaborator(ctx context.Context, token, owner, repo, username, permission string) (int64, error) {
	var body io.Reader
	if permission != "" {
		body = strings.NewReader(fmt.Sprintf(`{"permission":%q}`, permission))
	}
	var payload struct {
		ID int64 `json:"id"`
	}
	path := fmt.Sprintf("/repos/%s/%s/collaborators/%s", owner, repo, username)
	status, err := c.do(ctx, token, http.MethodPut, path, body, &payload)
	if err != nil {
		return 0, err
	}
	// 201 carries the invitation; 204 means no invitation was created.
	switch status {
	case http.StatusCreated:
		return payload.ID, nil
	case http.StatusNoContent:
		return 0, nil
	default:
		return 0, fmt.Errorf("github add collaborator returned status %d", status)
	}
}

func (c *client) AcceptInvitation(ctx context.Context, token string, invitationID int64) error {
	path := fmt.Sprintf("/user/repository_invitations/%d", invitationID)
	status, err := c.do(ctx, token, http.MethodPatch, path, nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("github accept invitation returned status %d", status)
	}
	return nil
}
