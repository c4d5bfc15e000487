// internal/app/lifecycle/collab.go
package lifecycle

import (
	"context"
	"time"

	"github.com/havenlabs/haven/internal/domain/models"
)

// SessionStore is the record-store contract for sessions. Any engine
// providing an atomic conditional update satisfies it; the Mongo adapter
// matches on {_id, version} and the in-memory adapter locks.
type SessionStore interface {
	Get(ctx context.Context, id string) (models.Session, error)
	Create(ctx context.Context, s models.Session) error

	// Update writes s only if the stored version equals s.Version, bumping
	// the version on success and returning the stored copy. A lost race
	// yields ErrConflict.
	Update(ctx context.Context, s models.Session) (models.Session, error)

	ListActive(ctx context.Context, now time.Time, limit int64) ([]models.Session, error)
}

// BreakoutStore is the record-store contract for breakout rooms.
type BreakoutStore interface {
	Get(ctx context.Context, id string) (models.BreakoutRoom, error)
	Create(ctx context.Context, b models.BreakoutRoom) error
	Update(ctx context.Context, b models.BreakoutRoom) (models.BreakoutRoom, error)
	ListByParent(ctx context.Context, parentID string) ([]models.BreakoutRoom, error)
}

// InvitationStore is the record-store contract for invitations. Consume
// must check active/expiry/usage-limit and increment the use count in a
// single atomic step, so two concurrent joiners can never both pass a
// pre-check against a limit of one.
type InvitationStore interface {
	GetByCode(ctx context.Context, codeCI string) (models.Invitation, error)
	Create(ctx context.Context, inv models.Invitation) error
	Consume(ctx context.Context, codeCI string, now time.Time) (models.Invitation, error)

	// Refund returns one consumed use, compensating a join that was
	// admitted by Consume but then rejected by the session guard. The
	// count never goes below zero.
	Refund(ctx context.Context, id string) error

	Deactivate(ctx context.Context, id string) error
}

// EventType labels a lifecycle transition for downstream fan-out.
type EventType string

const (
	EventCreated     EventType = "created"
	EventConverted   EventType = "converted"
	EventJoined      EventType = "joined"
	EventLeft        EventType = "left"
	EventEnded       EventType = "ended"
	EventHostChanged EventType = "host_changed"
	EventSubmission  EventType = "submission"
	EventRoomOpened  EventType = "room_opened"
	EventRoomClosed  EventType = "room_closed"
)

// Event describes a committed transition. Events are emitted after the
// write commits; a failed or slow subscriber never reverses one.
type Event struct {
	Type          EventType `json:"type"`
	SessionID     string    `json:"sessionId"`
	RoomID        string    `json:"roomId,omitempty"`
	ParticipantID string    `json:"participantId,omitempty"`
	Alias         string    `json:"alias,omitempty"`
	At            time.Time `json:"at"`
}

// Notifier receives committed transitions, fire-and-forget.
type Notifier interface {
	Publish(ev Event)
}

// Moderator reviews join requests and submissions. A false verdict maps
// to ErrModerationRejected. An error from the collaborator degrades to
// approval with a warning; a slow or failing scorer must not strand the
// state machine.
type Moderator interface {
	ReviewJoin(ctx context.Context, sessionID, participantID, alias string) (bool, error)
	ReviewSubmission(ctx context.Context, sessionID, alias, message string) (bool, error)
}

// MediaProvider issues time-boxed channel access tokens after a session
// goes live. Failures degrade to a placeholder token rather than
// blocking the transition.
type MediaProvider interface {
	ChannelToken(ctx context.Context, channel, role string) (string, error)
}

// PlaceholderMediaToken is handed out when the media collaborator is
// unavailable.
const PlaceholderMediaToken = "media-unavailable"
