// internal/app/lifecycle/breakout.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/policy/sessionpolicy"
	"github.com/havenlabs/haven/internal/app/system/sanitize"
	"github.com/havenlabs/haven/internal/domain/models"
)

// RoomSpec describes a breakout room to spawn from an active parent.
type RoomSpec struct {
	Name            string
	FacilitatorID   string
	FacilitatorName string
	MaxParticipants int
}

// CreateBreakout spawns an independent breakout room under an active
// parent session. Only the parent host may spawn rooms. The room id is
// registered on the parent before the room record is created, so the
// parent's versioned write arbitrates concurrent spawn attempts.
func (m *Manager) CreateBreakout(ctx context.Context, parentID, requesterID string, spec RoomSpec) (models.BreakoutRoom, error) {
	parent, err := m.sessions.Get(ctx, parentID)
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	now := m.now().UTC()

	if parent.Status != models.StatusActive || sessionpolicy.IsExpired(&parent, now) {
		return models.BreakoutRoom{}, fmt.Errorf("%w: parent session is not live", ErrInvalidState)
	}
	if requesterID != parent.HostID {
		return models.BreakoutRoom{}, fmt.Errorf("%w: only the host may open breakout rooms", ErrForbidden)
	}

	name := sanitize.Text(spec.Name)
	if name == "" {
		return models.BreakoutRoom{}, fmt.Errorf("%w: room name is required", ErrInvalidArgument)
	}
	facilitator := spec.FacilitatorID
	if facilitator == "" {
		facilitator = requesterID
	}
	facilitatorAlias := sanitize.Alias(spec.FacilitatorName, m.policy.MaxAliasLen)
	if facilitatorAlias == "" {
		facilitatorAlias = "Facilitator"
	}
	maxP := spec.MaxParticipants
	if maxP <= 0 || maxP > parent.MaxParticipants {
		maxP = parent.MaxParticipants
	}

	room := models.BreakoutRoom{
		ID:              uuid.NewString(),
		ParentSessionID: parent.ID,
		Name:            name,
		FacilitatorID:   facilitator,
		Status:          models.StatusActive,
		MaxParticipants: maxP,
		CreatedAt:       now,
		ExpiresAt:       now.Add(m.policy.BreakoutTTL),
		Participants: []models.Participant{{
			ID:          facilitator,
			Alias:       facilitatorAlias,
			IsHost:      true,
			IsModerator: true,
			JoinedAt:    now,
		}},
	}

	parent.ChildRoomIDs = append(parent.ChildRoomIDs, room.ID)
	if _, err := m.sessions.Update(ctx, parent); err != nil {
		return models.BreakoutRoom{}, err
	}
	if err := m.rooms.Create(ctx, room); err != nil {
		return models.BreakoutRoom{}, fmt.Errorf("create breakout room: %w", err)
	}

	m.notifier.Publish(Event{Type: EventRoomOpened, SessionID: parent.ID, RoomID: room.ID, At: now})
	m.log.Info("breakout room opened",
		zap.String("session_id", parent.ID),
		zap.String("room_id", room.ID))
	return room, nil
}

// GetBreakout returns a lazy-expiry read view of a breakout room.
func (m *Manager) GetBreakout(ctx context.Context, roomID string) (models.BreakoutRoom, error) {
	b, err := m.rooms.Get(ctx, roomID)
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	now := m.now().UTC()
	if b.Status != models.StatusEnded && sessionpolicy.RoomExpired(&b, now) {
		reconciled := b
		reconciled.Status = models.StatusEnded
		at := b.ExpiresAt
		reconciled.EndedAt = &at
		if updated, uerr := m.rooms.Update(ctx, reconciled); uerr == nil {
			return updated, nil
		}
		return reconciled, nil
	}
	return b, nil
}

// ListBreakouts returns the rooms spawned from a parent session.
func (m *Manager) ListBreakouts(ctx context.Context, parentID string) ([]models.BreakoutRoom, error) {
	if _, err := m.sessions.Get(ctx, parentID); err != nil {
		return nil, err
	}
	return m.rooms.ListByParent(ctx, parentID)
}

// JoinBreakout admits a participant to a breakout room under the same
// guard rules as sessions, at smaller scale.
func (m *Manager) JoinBreakout(ctx context.Context, roomID string, req JoinRequest) (models.BreakoutRoom, models.Participant, error) {
	if req.ParticipantID == "" {
		return models.BreakoutRoom{}, models.Participant{}, fmt.Errorf("%w: participant id is required", ErrInvalidArgument)
	}
	b, err := m.rooms.Get(ctx, roomID)
	if err != nil {
		return models.BreakoutRoom{}, models.Participant{}, err
	}
	now := m.now().UTC()

	if existing := b.Participant(req.ParticipantID); existing != nil && existing.Active() {
		return b, *existing, nil
	}

	if v := sessionpolicy.CanAdmitRoom(&b, now); v != sessionpolicy.Admit {
		return models.BreakoutRoom{}, models.Participant{}, admissionError(v)
	}

	alias := sanitize.Alias(req.Alias, m.policy.MaxAliasLen)
	if alias == "" {
		alias = "Guest"
	}

	var joined models.Participant
	if existing := b.Participant(req.ParticipantID); existing != nil {
		existing.LeftAt = nil
		existing.JoinedAt = now
		existing.Alias = alias
		joined = *existing
	} else {
		joined = models.Participant{ID: req.ParticipantID, Alias: alias, JoinedAt: now}
		b.Participants = append(b.Participants, joined)
	}

	updated, err := m.rooms.Update(ctx, b)
	if err != nil {
		return models.BreakoutRoom{}, models.Participant{}, err
	}
	m.notifier.Publish(Event{Type: EventJoined, SessionID: b.ParentSessionID, RoomID: b.ID, ParticipantID: joined.ID, Alias: alias, At: now})
	return updated, joined, nil
}

// LeaveBreakout records a departure from a room. The room auto-ends when
// its facilitator leaves or when the last active participant is gone.
func (m *Manager) LeaveBreakout(ctx context.Context, roomID, participantID string) (models.BreakoutRoom, error) {
	b, err := m.rooms.Get(ctx, roomID)
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	if b.Status == models.StatusEnded {
		return b, nil
	}

	p := b.Participant(participantID)
	if p == nil {
		return models.BreakoutRoom{}, fmt.Errorf("%w: participant %s", ErrNotFound, participantID)
	}
	if !p.Active() {
		return b, nil
	}

	now := m.now().UTC()
	p.LeftAt = &now

	if participantID == b.FacilitatorID || b.ActiveCount() == 0 {
		b.Status = models.StatusEnded
		b.EndedAt = &now
	}

	updated, err := m.rooms.Update(ctx, b)
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	m.notifier.Publish(Event{Type: EventLeft, SessionID: b.ParentSessionID, RoomID: b.ID, ParticipantID: participantID, At: now})
	if updated.Status == models.StatusEnded {
		m.notifier.Publish(Event{Type: EventRoomClosed, SessionID: b.ParentSessionID, RoomID: b.ID, At: now})
	}
	return updated, nil
}

// CloseBreakout force-ends a room. Legal for the facilitator or the
// parent session's host; a room's closure never touches the parent.
func (m *Manager) CloseBreakout(ctx context.Context, roomID, requesterID string) (models.BreakoutRoom, error) {
	b, err := m.rooms.Get(ctx, roomID)
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	if b.Status == models.StatusEnded {
		return b, nil
	}

	if requesterID != b.FacilitatorID {
		parent, perr := m.sessions.Get(ctx, b.ParentSessionID)
		if perr != nil && !errors.Is(perr, ErrNotFound) {
			return models.BreakoutRoom{}, perr
		}
		if perr != nil || requesterID != parent.HostID {
			return models.BreakoutRoom{}, fmt.Errorf("%w: only the facilitator or host may close the room", ErrForbidden)
		}
	}

	now := m.now().UTC()
	b.Status = models.StatusEnded
	b.EndedAt = &now

	updated, err := m.rooms.Update(ctx, b)
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	m.notifier.Publish(Event{Type: EventRoomClosed, SessionID: b.ParentSessionID, RoomID: b.ID, At: now})
	return updated, nil
}
