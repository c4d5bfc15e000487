// internal/domain/models/breakout.go
package models

import "time"

// BreakoutRoom is a child session scoped to an active parent. It has no
// scheduling phase: rooms are created active and transition to ended.
// A room's expiry or closure never affects the parent session.
type BreakoutRoom struct {
	ID      string `bson:"_id" json:"id"`
	Version int64  `bson:"version" json:"-"`

	ParentSessionID string `bson:"parent_session_id" json:"parentSessionId"`
	Name            string `bson:"name" json:"name"`
	FacilitatorID   string `bson:"facilitator_id" json:"facilitatorId"`

	Status SessionStatus `bson:"status" json:"status"`

	MaxParticipants int           `bson:"max_participants" json:"maxParticipants"`
	Participants    []Participant `bson:"participants" json:"participants"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expiresAt"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"endedAt,omitempty"`
}

// Ended reports whether the persisted status is ended.
func (b *BreakoutRoom) Ended() bool { return b.Status == StatusEnded }
