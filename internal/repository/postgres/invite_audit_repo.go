package postgres

import (
	"context"
	"database/sql"

	"gaterepo/internal/domain"
)

type inviteAuditRepository struct {
	DB *sql.DB
}

func NewInviteAuditRepository(db *sql.DB) domain.InviteAuditRepository {
	return &inviteAuditRepository{DB: db}
}

func (r *inviteAuditRepository) Create(ctx context.Context, a *domain.InviteAudit) error {
	query := `
		INSERT INTO invite_audit (gate_id, user_id, invitation_id, accepted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, a.GateID, a.UserID, a.InvitationID, a.Accepted, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
}

func (r *inviteAuditRepository) MarkAccepted(ctx context.Context, id string) error {
	query := `UPDATE invite_audit SET accepted = true, updated_at = NOW() WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *inviteAuditRepository) ListOutstanding(ctx context.Context) ([]*domain.InviteAudit, error) {
	query := `
		SELECT id, gate_id, user_id, invitation_id, accepted, created_at, updated_at
		FROM invite_audit
		WHERE NOT accepted
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var audits []*domain.InviteAudit
	for rows.Next() {
		a := &domain.InviteAudit{}
		if err := rows.Scan(&a.ID, &a.GateID, &a.UserID, &a.InvitationID, &a.Accepted, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
