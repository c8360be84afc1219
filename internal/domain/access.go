package domain

import (
	"context"
	"errors"
	"math/big"
	"time"
)

// Sentinel errors for the access grant protocol, one per exit point.
var (
	ErrMissingParameters      = errors.New("missing parameters")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrInsufficientBalance    = errors.New("insufficient token balance")
	ErrOwnerCredentialMissing = errors.New("gate creator has no linked github credential")
	ErrAlreadyMember          = errors.New("already has repository access")
	ErrInviteIssueFailed      = errors.New("could not issue repository invitation")
	ErrInviteAcceptFailed     = errors.New("could not accept repository invitation")
)

// AddressVerifier proves control of a claimed address from a signature over
// the fixed challenge message. Pure function, no I/O.
type AddressVerifier interface {
	Verify(address, signature string) error
}

// AccessRequest is the caller-supplied input for one access attempt.
// ReadOnly and DynamicCheck are informational; the authoritative values are
// read from the stored gate.
type AccessRequest struct {
	Address      string `json:"address"`
	Signature    string `json:"signature"`
	GateID       string `json:"gateId"`
	ReadOnly     bool   `json:"readOnly"`
	DynamicCheck bool   `json:"dynamicCheck"`
}

// AccessAttempt is the ephemeral working state of one orchestration run. It
// is never persisted; it exists for logging and tests.
type AccessAttempt struct {
	Address      string
	GateID       string
	Balance      *big.Float
	InvitationID int64
	Accepted     bool
}

// GateAccessService drives the end-to-end grant protocol: verify signature,
// load gate, check quota, measure balance, resolve credentials, invite,
// accept, commit the quota increment.
type GateAccessService interface {
	Grant(ctx context.Context, userID string, req AccessRequest) error
}

// InviteAudit records one issued collaborator invitation. Rows with
// Accepted=false after step 4 failed are the reconciliation queue for
// invitations left outstanding on the platform.
type InviteAudit struct {
	ID           string    `json:"id"`
	GateID       string    `json:"gate_id"`
	UserID       string    `json:"user_id"`
	InvitationID int64     `json:"invitation_id"`
	Accepted     bool      `json:"accepted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InviteAuditRepository defines storage for invitation audit records.
type InviteAuditRepository interface {
	Create(ctx context.Context, audit *InviteAudit) error
	MarkAccepted(ctx context.Context, id string) error
	ListOutstanding(ctx context.Context) ([]*InviteAudit, error)
}
