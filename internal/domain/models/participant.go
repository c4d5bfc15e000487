// internal/domain/models/participant.go
package models

import "time"

// Participant is a member of a session or breakout room.
//
// Departure is recorded, not erased: LeftAt marks the member as gone
// while keeping join history. A participant that rejoins has LeftAt
// cleared and JoinedAt refreshed on the same record.
type Participant struct {
	ID    string `bson:"id" json:"id"`
	Alias string `bson:"alias" json:"alias"`

	IsHost      bool `bson:"is_host" json:"isHost"`
	IsModerator bool `bson:"is_moderator" json:"isModerator"`

	JoinedAt time.Time  `bson:"joined_at" json:"joinedAt"`
	LeftAt   *time.Time `bson:"left_at,omitempty" json:"leftAt,omitempty"`

	// In-session UI state; not lifecycle-relevant.
	IsMuted    bool `bson:"is_muted" json:"isMuted"`
	HandRaised bool `bson:"hand_raised" json:"handRaised"`
}

// Active reports whether the participant is currently in the room.
func (p *Participant) Active() bool { return p.LeftAt == nil }
