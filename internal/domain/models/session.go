// internal/domain/models/session.go
package models

import (
	"time"
)

// SessionKind selects which optional sub-behaviors a session carries.
type SessionKind string

const (
	// KindAnonymousInbox collects anonymous text submissions for the host.
	KindAnonymousInbox SessionKind = "anonymous-inbox"
	// KindLiveAudio is a hosted real-time audio room.
	KindLiveAudio SessionKind = "live-audio"
	// KindTextRoom is a hosted real-time text room.
	KindTextRoom SessionKind = "text-room"
)

// Valid reports whether k is a known session kind.
func (k SessionKind) Valid() bool {
	switch k {
	case KindAnonymousInbox, KindLiveAudio, KindTextRoom:
		return true
	}
	return false
}

// SessionStatus is the persisted lifecycle state of a session.
//
// Transitions are monotonic: scheduled -> active -> ended. No step is
// skipped forward and nothing moves backward. Read paths additionally
// derive an effective status that treats overdue sessions as ended
// before any write reconciles the field (lazy expiry).
type SessionStatus string

const (
	StatusScheduled SessionStatus = "scheduled"
	StatusActive    SessionStatus = "active"
	StatusEnded     SessionStatus = "ended"
)

// Session is a bounded-duration hosted gathering.
//
// NOTE:
//   - Participants are embedded on the document; the roster holds one
//     logical record per participant id (departure sets LeftAt, rejoin
//     clears it). At the expected scale (tens of members) no separate
//     collection is warranted.
//   - Version backs optimistic concurrency: every conditional write
//     matches on {_id, version} and bumps Version by one.
type Session struct {
	ID      string `bson:"_id" json:"id"`
	Version int64  `bson:"version" json:"-"`

	Kind        SessionKind `bson:"kind" json:"kind"`
	Topic       string      `bson:"topic" json:"topic"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`

	Status SessionStatus `bson:"status" json:"status"`

	HostID    string `bson:"host_id" json:"hostId"`
	HostAlias string `bson:"host_alias" json:"hostAlias"`

	// HostTokenHash is the bcrypt hash of the host recovery token. Present
	// only when the host is anonymous, and immutable for the life of the
	// session. The plain token is returned once, at creation.
	HostTokenHash string `bson:"host_token_hash,omitempty" json:"-"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	ScheduledAt *time.Time `bson:"scheduled_at,omitempty" json:"scheduledAt,omitempty"`
	StartedAt   *time.Time `bson:"started_at,omitempty" json:"startedAt,omitempty"`
	ExpiresAt   time.Time  `bson:"expires_at" json:"expiresAt"`
	EndedAt     *time.Time `bson:"ended_at,omitempty" json:"endedAt,omitempty"`

	// LiveSessionID is the forward pointer left on a scheduled record once
	// it has been converted. A second convert call follows the pointer and
	// returns the existing live session instead of erroring.
	LiveSessionID string `bson:"live_session_id,omitempty" json:"liveSessionId,omitempty"`

	MaxParticipants int           `bson:"max_participants" json:"maxParticipants"`
	Participants    []Participant `bson:"participants" json:"participants"`

	AllowAnonymous    bool `bson:"allow_anonymous" json:"allowAnonymous"`
	ModerationEnabled bool `bson:"moderation_enabled" json:"moderationEnabled"`

	// Submissions apply to anonymous-inbox sessions only. Append-only;
	// removal is a moderation action outside this service.
	Submissions []Submission `bson:"submissions,omitempty" json:"submissions,omitempty"`

	ChildRoomIDs []string `bson:"child_room_ids,omitempty" json:"childRoomIds,omitempty"`
}

// Submission is one anonymous message left in an anonymous-inbox session.
type Submission struct {
	Alias     string    `bson:"alias" json:"alias"`
	Message   string    `bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Ended reports whether the persisted status is ended.
func (s *Session) Ended() bool { return s.Status == StatusEnded }
