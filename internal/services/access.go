package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gaterepo/internal/domain"
)

type accessService struct {
	gates    domain.GateRepository
	users    domain.UserRepository
	creds    domain.CredentialRepository
	audits   domain.InviteAuditRepository
	verifier domain.AddressVerifier
	live     domain.BalanceOracle
	snapshot domain.BalanceOracle
	host     domain.CodeHost
	email    domain.EmailService
	logger   *slog.Logger
}

// NewGateAccessService wires the access grant protocol. All collaborators are
// explicit dependencies so tests can substitute doubles; the email service
// may be nil.
func NewGateAccessService(
	gates domain.GateRepository,
	users domain.UserRepository,
	creds domain.CredentialRepository,
	audits domain.InviteAuditRepository,
	verifier domain.AddressVerifier,
	live domain.BalanceOracle,
	snapshot domain.BalanceOracle,
	host domain.CodeHost,
	email domain.EmailService,
	logger *slog.Logger,
) domain.GateAccessService {
	return &accessService{
		gates:    gates,
		users:    users,
		creds:    creds,
		audits:   audits,
		verifier: verifier,
		live:     live,
		snapshot: snapshot,
		host:     host,
		email:    email,
		logger:   logger,
	}
}

// Grant runs one access attempt end to end. Each step exits with its own
// sentinel error; nothing is rolled back on failure. The invite slot is
// consumed only after the external invitation has been issued and accepted,
// and that final increment is the only transactional step.
func (s *accessService) Grant(ctx context.Context, userID string, req domain.AccessRequest) error {
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.Signature) == "" || strings.TrimSpace(req.GateID) == "" {
		return domain.ErrMissingParameters
	}

	if err := s.verifier.Verify(req.Address, req.Signature); err != nil {
		return domain.ErrInvalidSignature
	}

	gate, err := s.gates.GetByID(ctx, req.GateID)
	if err != nil {
		if errors.Is(err, domain.ErrGateNotFound) {
			return err
		}
		return fmt.Errorf("failed to load gate: %w", err)
	}

	// Cheap pre-check so exhausted gates fail before any external call. The
	// authoritative check is the conditional update at commit time.
	if !gate.HasCapacity() {
		return domain.ErrQuotaExhausted
	}

	balance, err := s.oracleFor(gate).Balance(ctx, gate, req.Address)
	if err != nil {
		return err
	}
	if !domain.MeetsThreshold(balance, gate.NumTokens) {
		return domain.ErrInsufficientBalance
	}

	inviteeCred, err := s.creds.GetNewestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return err
		}
		return fmt.Errorf("failed to load invitee credential: %w", err)
	}

	ownerCred, err := s.creds.GetNewestByUserID(ctx, gate.CreatorID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return domain.ErrOwnerCredentialMissing
		}
		return fmt.Errorf("failed to load owner credential: %w", err)
	}

	attempt := &domain.AccessAttempt{Address: req.Address, GateID: gate.ID, Balance: balance}
	if err := s.invite(ctx, gate, userID, inviteeCred, ownerCred, attempt); err != nil {
		return err
	}

	updated, err := s.gates.ConsumeInvite(ctx, gate.ID)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) {
			// Lost the race after the invitation was already accepted. The
			// external state has advanced past local state; log for
			// reconciliation, nothing to roll back.
			s.logger.WarnContext(ctx, "invite accepted but quota exhausted at commit",
				"gate_id", gate.ID, "user_id", userID, "invitation_id", attempt.InvitationID)
			return err
		}
		return fmt.Errorf("failed to consume invite: %w", err)
	}

	s.logger.InfoContext(ctx, "access granted",
		"gate_id", gate.ID, "user_id", userID, "address", req.Address,
		"used_invites", updated.UsedInvites, "num_invites", updated.NumInvites)

	s.notifyCreator(ctx, updated, userID)
	return nil
}

// oracleFor resolves the balance strategy once per gate.
func (s *accessService) oracleFor(gate *domain.Gate) domain.BalanceOracle {
	if gate.Strategy() == domain.StrategyLive {
		return s.live
	}
	return s.snapshot
}

// invite drives the two-identity collaborator exchange: existing-access check
// and acceptance run under the invitee credential, issuance under the owner
// credential. An invitation issued here is never revoked on later failure;
// the audit row is the reconciliation record for that gap.
func (s *accessService) invite(ctx context.Context, gate *domain.Gate, userID string, inviteeCred, ownerCred *domain.Credential, attempt *domain.AccessAttempt) error {
	_, err := s.host.GetRepository(ctx, inviteeCred.AccessToken, gate.RepoOwner, gate.RepoName)
	if err == nil {
		return domain.ErrAlreadyMember
	}
	if !errors.Is(err, domain.ErrRepoNotFound) {
		return fmt.Errorf("%w: existing-access check: %v", domain.ErrInviteIssueFailed, err)
	}

	// Only the local user id is stored; the platform username comes from the
	// invitee's own token.
	invitee, err := s.host.GetAuthenticatedUser(ctx, inviteeCred.AccessToken)
	if err != nil {
		return fmt.Errorf("%w: resolve invitee username: %v", domain.ErrInviteIssueFailed, err)
	}

	permission := domain.PermissionDefault
	if gate.ReadOnly {
		permission = domain.PermissionPull
	}
	invitationID, err := s.host.AddCollaborator(ctx, ownerCred.AccessToken, gate.RepoOwner, gate.RepoName, invitee.Login, permission)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInviteIssueFailed, err)
	}
	if invitationID == 0 {
		return domain.ErrInviteIssueFailed
	}
	attempt.InvitationID = invitationID

	now := time.Now()
	audit := &domain.InviteAudit{
		GateID:       gate.ID,
		UserID:       userID,
		InvitationID: invitationID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		// The invitation exists on the platform either way; keep going.
		s.logger.ErrorContext(ctx, "failed to record invite audit",
			"gate_id", gate.ID, "invitation_id", invitationID, "err", err)
	}

	if err := s.host.AcceptInvitation(ctx, inviteeCred.AccessToken, invitationID); err != nil {
		s.logger.WarnContext(ctx, "invitation issued but not accepted",
			"gate_id", gate.ID, "invitation_id", invitationID, "err", err)
		s.notifyOutstanding(ctx, gate, invitee.Login, invitationID)
		return fmt.Errorf("%w: %v", domain.ErrInviteAcceptFailed, err)
	}
	attempt.Accepted = true

	if audit.ID != "" {
		if err := s.audits.MarkAccepted(ctx, audit.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to mark invite audit accepted",
				"audit_id", audit.ID, "err", err)
		}
	}
	return nil
}

func (s *accessService) notifyCreator(ctx context.Context, gate *domain.Gate, inviteeID string) {
	if s.email == nil {
		return
	}
	creator, err := s.users.GetByID(ctx, gate.CreatorID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load creator for notification", "gate_id", gate.ID, "err", err)
		return
	}
	if creator.Email == "" {
		return
	}
	invitee, err := s.users.GetByID(ctx, inviteeID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load invitee for notification", "gate_id", gate.ID, "err", err)
		return
	}
	data := &domain.AccessGrantedEmailData{
		Email:           creator.Email,
		CreatorLogin:    creator.Login,
		InviteeLogin:    invitee.Login,
		RepoOwner:       gate.RepoOwner,
		RepoName:        gate.RepoName,
		InvitesRemained: gate.NumInvites - gate.UsedInvites,
	}
	if err := s.email.SendAccessGranted(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to send access granted email", "gate_id", gate.ID, "err", err)
	}
}

func (s *accessService) notifyOutstanding(ctx context.Context, gate *domain.Gate, inviteeLogin string, invitationID int64) {
	if s.email == nil {
		return
	}
	creator, err := s.users.GetByID(ctx, gate.CreatorID)
	if err != nil || creator.Email == "" {
		return
	}
	data := &domain.InviteOutstandingEmailData{
		Email:        creator.Email,
		InviteeLogin: inviteeLogin,
		RepoOwner:    gate.RepoOwner,
		RepoName:     gate.RepoName,
		InvitationID: invitationID,
	}
	if err := s.email.SendInviteOutstanding(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to send outstanding invite email", "gate_id", gate.ID, "err", err)
	}
}
