// internal/app/lifecycle/invite.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/system/tokens"
	"github.com/havenlabs/haven/internal/domain/models"
)

// mintAttempts bounds the collision-check retry loop for invite codes.
const mintAttempts = 5

// InviteSpec describes an invitation to mint for a session.
type InviteSpec struct {
	// MaxUses nil means unlimited.
	MaxUses *int

	// TTL defaults to the policy's InviteTTL.
	TTL time.Duration

	RequiresApproval bool
}

// CreateInvite mints a shareable invitation for a session. Only the host
// may mint. Codes are matched case-insensitively and collision-checked
// against existing codes before acceptance.
func (m *Manager) CreateInvite(ctx context.Context, sessionID, requesterID string, spec InviteSpec) (models.Invitation, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Invitation{}, err
	}
	if s.Status == models.StatusEnded {
		return models.Invitation{}, fmt.Errorf("%w: session has ended", ErrInvalidState)
	}
	if requesterID != s.HostID {
		return models.Invitation{}, fmt.Errorf("%w: only the host may create invitations", ErrForbidden)
	}
	if spec.MaxUses != nil && *spec.MaxUses < 1 {
		return models.Invitation{}, fmt.Errorf("%w: max uses must be at least 1", ErrInvalidArgument)
	}

	now := m.now().UTC()
	ttl := spec.TTL
	if ttl <= 0 {
		ttl = m.policy.InviteTTL
	}

	inv := models.Invitation{
		ID:               uuid.NewString(),
		SessionID:        s.ID,
		CreatedBy:        requesterID,
		MaxUses:          spec.MaxUses,
		ExpiresAt:        now.Add(ttl),
		RequiresApproval: spec.RequiresApproval,
		IsActive:         true,
		CreatedAt:        now,
	}

	for attempt := 0; attempt < mintAttempts; attempt++ {
		inv.Code = tokens.MintInviteCode(m.policy.InviteCodeLength)
		inv.CodeCI = text.Fold(inv.Code)
		err = m.invites.Create(ctx, inv)
		if err == nil {
			m.log.Info("invitation created",
				zap.String("session_id", s.ID),
				zap.String("invite_id", inv.ID))
			return inv, nil
		}
		if !errors.Is(err, ErrDuplicateCode) {
			return models.Invitation{}, fmt.Errorf("create invitation: %w", err)
		}
	}
	return models.Invitation{}, fmt.Errorf("create invitation: %w", err)
}

// DeactivateInvite terminally disables an invitation, independent of its
// expiry. Legal for the session host or its creator.
func (m *Manager) DeactivateInvite(ctx context.Context, code, requesterID string) error {
	inv, err := m.invites.GetByCode(ctx, text.Fold(code))
	if err != nil {
		return err
	}
	s, err := m.sessions.Get(ctx, inv.SessionID)
	if err != nil {
		return err
	}
	if requesterID != s.HostID && requesterID != inv.CreatedBy {
		return fmt.Errorf("%w: only the host may deactivate invitations", ErrForbidden)
	}
	return m.invites.Deactivate(ctx, inv.ID)
}

// JoinByInvite consumes an invitation and admits the joiner to its
// session. The consume is one atomic store operation, so two racing
// joiners against a single-use invitation cannot both pass. A use
// counts only for joins that actually admit: when the session guard
// rejects the joiner afterwards, the consumed use is refunded so a
// full or momentarily unavailable session does not burn the code. An
// approval-requiring invitation routes the join through moderation even
// when the session itself has moderation disabled.
func (m *Manager) JoinByInvite(ctx context.Context, code string, req JoinRequest) (JoinResult, error) {
	inv, err := m.invites.Consume(ctx, text.Fold(code), m.now().UTC())
	if err != nil {
		return JoinResult{}, err
	}
	req.requiresApproval = inv.RequiresApproval

	res, err := m.Join(ctx, inv.SessionID, req)
	if err != nil {
		if rerr := m.invites.Refund(ctx, inv.ID); rerr != nil {
			m.log.Error("invitation refund failed",
				zap.String("invite_id", inv.ID),
				zap.Error(rerr))
		}
		return JoinResult{}, err
	}
	return res, nil
}
