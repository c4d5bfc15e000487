package testutil

import (
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"

	"github.com/havenlabs/haven/internal/domain/models"
)

// Session fixture builders. The zero-configuration builders produce
// records in the most common shapes; mutate the result for anything
// more specific.

// ActiveSession returns a live text-room session hosted by hostID.
func ActiveSession(hostID string, now time.Time) models.Session {
	started := now.UTC()
	return models.Session{
		ID:              uuid.NewString(),
		Kind:            models.KindTextRoom,
		Topic:           "Evening check-in",
		Status:          models.StatusActive,
		HostID:          hostID,
		HostAlias:       "Host",
		CreatedAt:       started,
		StartedAt:       &started,
		ExpiresAt:       started.Add(2 * time.Hour),
		MaxParticipants: 50,
		AllowAnonymous:  true,
		Participants: []models.Participant{{
			ID:          hostID,
			Alias:       "Host",
			IsHost:      true,
			IsModerator: true,
			JoinedAt:    started,
		}},
	}
}

// ScheduledSession returns a session scheduled to start at startAt.
func ScheduledSession(hostID string, now, startAt time.Time) models.Session {
	at := startAt.UTC()
	s := ActiveSession(hostID, now)
	s.Status = models.StatusScheduled
	s.StartedAt = nil
	s.ScheduledAt = &at
	s.ExpiresAt = at.Add(2 * time.Hour)
	return s
}

// InboxSession returns a live anonymous-inbox session.
func InboxSession(hostID string, now time.Time) models.Session {
	s := ActiveSession(hostID, now)
	s.Kind = models.KindAnonymousInbox
	s.Topic = "Things I can't say out loud"
	return s
}

// Room returns an active breakout room under parentID, facilitated by
// facilitatorID.
func Room(parentID, facilitatorID string, now time.Time) models.BreakoutRoom {
	created := now.UTC()
	return models.BreakoutRoom{
		ID:              uuid.NewString(),
		ParentSessionID: parentID,
		Name:            "Quiet corner",
		FacilitatorID:   facilitatorID,
		Status:          models.StatusActive,
		MaxParticipants: 10,
		CreatedAt:       created,
		ExpiresAt:       created.Add(time.Hour),
		Participants: []models.Participant{{
			ID:          facilitatorID,
			Alias:       "Facilitator",
			IsHost:      true,
			IsModerator: true,
			JoinedAt:    created,
		}},
	}
}

// Invitation returns an active invitation for sessionID with the given
// code and use limit (nil means unlimited).
func Invitation(sessionID, createdBy, code string, maxUses *int, now time.Time) models.Invitation {
	created := now.UTC()
	return models.Invitation{
		ID:        uuid.NewString(),
		Code:      code,
		CodeCI:    text.Fold(code),
		SessionID: sessionID,
		CreatedBy: createdBy,
		MaxUses:   maxUses,
		ExpiresAt: created.Add(24 * time.Hour),
		IsActive:  true,
		CreatedAt: created,
	}
}

// IntPtr returns a pointer to n, for MaxUses-style optional fields.
func IntPtr(n int) *int { return &n }

// BoolPtr returns a pointer to b, for PATCH-style optional fields.
func BoolPtr(b bool) *bool { return &b }
