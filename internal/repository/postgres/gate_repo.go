package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gaterepo/internal/domain"
)

const gateColumns = `id, repo_owner, repo_name, contract, contract_name, contract_decimals,
	num_tokens, block_number, read_only, dynamic_check, num_invites, used_invites,
	creator_id, created_at, updated_at`

type gateRepository struct {
	DB *sql.DB
}

func NewGateRepository(db *sql.DB) domain.GateRepository {
	return &gateRepository{DB: db}
}

func scanGate(row interface{ Scan(...any) error }) (*domain.Gate, error) {
	g := &domain.Gate{}
	err := row.Scan(
		&g.ID, &g.RepoOwner, &g.RepoName, &g.Contract, &g.ContractName, &g.ContractDecimals,
		&g.NumTokens, &g.BlockNumber, &g.ReadOnly, &g.DynamicCheck, &g.NumInvites, &g.UsedInvites,
		&g.CreatorID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *gateRepository) Create(ctx context.Context, g *domain.Gate) error {
	query := `
		INSERT INTO gates (repo_owner, repo_name, contract, contract_name, contract_decimals,
			num_tokens, block_number, read_only, dynamic_check, num_invites, used_invites,
			creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		g.RepoOwner, g.RepoName, g.Contract, g.ContractName, g.ContractDecimals,
		g.NumTokens, g.BlockNumber, g.ReadOnly, g.DynamicCheck, g.NumInvites, g.UsedInvites,
		g.CreatorID, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
}

func (r *gateRepository) GetByID(ctx context.Context, id string) (*domain.Gate, error) {
	query := `SELECT ` + gateColumns + ` FROM gates WHERE id = $1`
	g, err := scanGate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGateNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *gateRepository) ListActiveByCreator(ctx context.Context, creatorID string) ([]*domain.Gate, error) {
	query := `
		SELECT ` + gateColumns + `
		FROM gates
		WHERE creator_id = $1 AND used_invites < num_invites
		ORDER BY block_number DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var gates []*domain.Gate
	for rows.Next() {
		g, err := scanGate(rows)
		if err != nil {
			return nil, err
		}
		gates = append(gates, g)
	}
	return gates, rows.Err()
}

func (r *gateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM gates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGateNotFound
	}
	return nil
}

// ConsumeInvite is the single serialization point for concurrent grants: the
// increment happens iff capacity remains, in one conditional UPDATE, so two
// attempts racing the last slot can never both succeed.
func (r *gateRepository) ConsumeInvite(ctx context.Context, id string) (*domain.Gate, error) {
	query := `
		UPDATE gates
		SET used_invites = used_invites + 1, updated_at = NOW()
		WHERE id = $1 AND used_invites < num_invites
		RETURNING ` + gateColumns
	g, err := scanGate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuotaExhausted
		}
		return nil, err
	}
	return g, nil
}
