package services

import (
	"context"
	"errors"
	"fmt"

	"gaterepo/internal/domain"
)

type repoService struct {
	creds domain.CredentialRepository
	host  domain.CodeHost
}

// NewRepoService creates a RepoService that acts with the caller's linked
// credential.
func NewRepoService(creds domain.CredentialRepository, host domain.CodeHost) domain.RepoService {
	return &repoService{creds: creds, host: host}
}

// ListRepositories returns the caller's private repositories where they hold
// admin permission, with archived, disabled, and duplicate entries filtered.
func (s *repoService) ListRepositories(ctx context.Context, userID string) ([]*domain.Repository, error) {
	cred, err := s.creds.GetNewestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	all, err := s.host.ListPrivateRepositories(ctx, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	// The platform occasionally duplicates entries for freshly created repos.
	seen := make(map[string]bool, len(all))
	var repos []*domain.Repository
	for _, repo := range all {
		if seen[repo.FullName] {
			continue
		}
		if repo.Archived || repo.Disabled || !repo.Admin {
			continue
		}
		repos = append(repos, repo)
		seen[repo.FullName] = true
	}
	return repos, nil
}

// GetRepository returns one repository the caller administers.
func (s *repoService) GetRepository(ctx context.Context, userID, owner, repo string) (*domain.Repository, error) {
	cred, err := s.creds.GetNewestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	repository, err := s.host.GetRepository(ctx, cred.AccessToken, owner, repo)
	if err != nil {
		if errors.Is(err, domain.ErrRepoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	if !repository.Admin {
		return nil, domain.ErrRepoNotFound
	}
	return repository, nil
}
