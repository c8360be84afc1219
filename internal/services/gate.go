package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gaterepo/internal/domain"
)

type gateService struct {
	gates     domain.GateRepository
	creds     domain.CredentialRepository
	host      domain.CodeHost
	inspector domain.TokenInspector
	logger    *slog.Logger
}

// NewGateService creates a GateService with the given storage and chain ports.
func NewGateService(gates domain.GateRepository, creds domain.CredentialRepository, host domain.CodeHost, inspector domain.TokenInspector, logger *slog.Logger) domain.GateService {
	return &gateService{
		gates:     gates,
		creds:     creds,
		host:      host,
		inspector: inspector,
		logger:    logger,
	}
}

// Create verifies the creator administers the target repository, resolves the
// token's name and decimals, pins the current block number unless the gate
// uses live checking, and stores the gate with zero used invites.
func (s *gateService) Create(ctx context.Context, creatorID string, params domain.CreateGateParams) (*domain.Gate, error) {
	cred, err := s.creds.GetNewestByUserID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load creator credential: %w", err)
	}

	repo, err := s.host.GetRepository(ctx, cred.AccessToken, params.RepoOwner, params.RepoName)
	if err != nil {
		if errors.Is(err, domain.ErrRepoNotFound) {
			return nil, domain.ErrRepoNotFound
		}
		return nil, fmt.Errorf("failed to check repository: %w", err)
	}
	if !repo.Admin {
		return nil, domain.ErrRepoNotFound
	}

	name, decimals, err := s.inspector.TokenDetails(ctx, params.Contract)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token details: %w", err)
	}

	// Live-checking gates carry no pin; everything else pegs balances to the
	// block at creation time.
	var blockNumber int64
	if !params.DynamicCheck {
		blockNumber, err = s.inspector.CurrentBlock(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to pin block number: %w", err)
		}
	}

	now := time.Now()
	gate := &domain.Gate{
		RepoOwner:        params.RepoOwner,
		RepoName:         params.RepoName,
		Contract:         params.Contract,
		ContractName:     name,
		ContractDecimals: int(decimals),
		NumTokens:        params.NumTokens,
		BlockNumber:      blockNumber,
		ReadOnly:         params.ReadOnly,
		DynamicCheck:     params.DynamicCheck,
		NumInvites:       params.NumInvites,
		UsedInvites:      0,
		CreatorID:        creatorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.gates.Create(ctx, gate); err != nil {
		return nil, fmt.Errorf("failed to create gate: %w", err)
	}

	s.logger.InfoContext(ctx, "gate created",
		"gate_id", gate.ID, "repo", gate.RepoOwner+"/"+gate.RepoName,
		"contract", gate.Contract, "block_number", gate.BlockNumber)
	return gate, nil
}

func (s *gateService) ListByCreator(ctx context.Context, userID string) ([]*domain.Gate, error) {
	gates, err := s.gates.ListActiveByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list gates: %w", err)
	}
	return gates, nil
}

// Delete removes a gate after checking the caller created it.
func (s *gateService) Delete(ctx context.Context, userID, gateID string) error {
	gate, err := s.gates.GetByID(ctx, gateID)
	if err != nil {
		if errors.Is(err, domain.ErrGateNotFound) {
			return err
		}
		return fmt.Errorf("failed to load gate: %w", err)
	}
	if gate.CreatorID != userID {
		return domain.ErrNotGateCreator
	}
	if err := s.gates.Delete(ctx, gateID); err != nil {
		if errors.Is(err, domain.ErrGateNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete gate: %w", err)
	}
	return nil
}
