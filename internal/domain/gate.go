package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for gate operations.
var (
	ErrGateNotFound   = errors.New("gate not found")
	ErrQuotaExhausted = errors.New("no invites remaining")
	ErrNotGateCreator = errors.New("only the gate creator may do this")
)

// Gate is a token-gated repository offer: the invariant configuration set at
// creation plus the mutable invite usage counter.
// swagger:model Gate
type Gate struct {
	ID               string    `json:"id"`
	RepoOwner        string    `json:"repo_owner"`
	RepoName         string    `json:"repo_name"`
	Contract         string    `json:"contract"`
	ContractName     string    `json:"contract_name"`
	ContractDecimals int       `json:"contract_decimals"`
	NumTokens        float64   `json:"num_tokens"`
	BlockNumber      int64     `json:"block_number"`
	ReadOnly         bool      `json:"read_only"`
	DynamicCheck     bool      `json:"dynamic_check"`
	NumInvites       int       `json:"num_invites"`
	UsedInvites      int       `json:"used_invites"`
	CreatorID        string    `json:"creator_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasCapacity reports whether the gate still has unconsumed invites.
// This is only a pre-check; the authoritative check happens inside
// GateRepository.ConsumeInvite.
func (g *Gate) HasCapacity() bool {
	return g.UsedInvites < g.NumInvites
}

// Strategy returns the balance measurement strategy for this gate, resolved
// once at load time from the dynamic-check flag.
func (g *Gate) Strategy() BalanceStrategy {
	if g.DynamicCheck {
		return StrategyLive
	}
	return StrategySnapshot
}

// GateRepository defines the interface for gate storage.
type GateRepository interface {
	Create(ctx context.Context, gate *Gate) error
	GetByID(ctx context.Context, id string) (*Gate, error)
	// ListActiveByCreator returns the creator's gates excluding exhausted ones
	// (used_invites = num_invites), sorted by block number descending.
	ListActiveByCreator(ctx context.Context, creatorID string) ([]*Gate, error)
	Delete(ctx context.Context, id string) error
	// ConsumeInvite increments used_invites by exactly one iff capacity
	// remains, in a single conditional update, and returns the post-increment
	// gate. It fails with ErrQuotaExhausted when capacity is gone at commit
	// time. This is the single serialization point for concurrent grants.
	ConsumeInvite(ctx context.Context, id string) (*Gate, error)
}

// CreateGateParams carries the creator-supplied fields for a new gate.
// Token name, decimals, and the pinned block number are resolved server-side.
type CreateGateParams struct {
	RepoOwner    string
	RepoName     string
	Contract     string
	NumTokens    float64
	NumInvites   int
	ReadOnly     bool
	DynamicCheck bool
}

// GateService defines the business logic for gate lifecycle (create, list,
// delete). Access grants live on GateAccessService.
type GateService interface {
	Create(ctx context.Context, creatorID string, params CreateGateParams) (*Gate, error)
	ListByCreator(ctx context.Context, userID string) ([]*Gate, error)
	Delete(ctx context.Context, userID, gateID string) error
}
