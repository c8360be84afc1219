package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gaterepo/internal/domain"
)

type credentialRepository struct {
	DB *sql.DB
}

func NewCredentialRepository(db *sql.DB) domain.CredentialRepository {
	return &credentialRepository{DB: db}
}

func (r *credentialRepository) Create(ctx context.Context, c *domain.Credential) error {
	query := `
		INSERT INTO credentials (user_id, provider, access_token, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, c.UserID, c.Provider, c.AccessToken, c.CreatedAt).Scan(&c.ID)
}

// GetNewestByUserID returns the most recently issued credential for the user,
// so a fresh login always supersedes older tokens.
func (r *credentialRepository) GetNewestByUserID(ctx context.Context, userID string) (*domain.Credential, error) {
	query := `
		SELECT id, user_id, provider, access_token, created_at
		FROM credentials
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	c := &domain.Credential{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.Provider, &c.AccessToken, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCredentialMissing
		}
		return nil, err
	}
	return c, nil
}
