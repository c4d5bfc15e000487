// internal/app/features/sessions/views.go
package sessions

import (
	"time"

	"github.com/havenlabs/haven/internal/app/policy/sessionpolicy"
	"github.com/havenlabs/haven/internal/domain/models"
)

// sessionView is the public JSON shape of a session. The host token
// hash never leaves the store layer, and submissions are included only
// for the host.
type sessionView struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Topic           string     `json:"topic"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	EffectiveStatus string     `json:"effectiveStatus"`
	HostAlias       string     `json:"hostAlias"`
	CreatedAt       time.Time  `json:"createdAt"`
	ScheduledAt     *time.Time `json:"scheduledAt,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	LiveSessionID   string     `json:"liveSessionId,omitempty"`

	MaxParticipants int               `json:"maxParticipants"`
	ActiveCount     int               `json:"activeCount"`
	Participants    []participantView `json:"participants"`

	AllowAnonymous    bool `json:"allowAnonymous"`
	ModerationEnabled bool `json:"moderationEnabled"`

	ChildRoomIDs []string `json:"childRoomIds,omitempty"`

	Submissions []submissionView `json:"submissions,omitempty"`
}

type participantView struct {
	ID          string     `json:"id"`
	Alias       string     `json:"alias"`
	IsHost      bool       `json:"isHost"`
	IsModerator bool       `json:"isModerator"`
	JoinedAt    time.Time  `json:"joinedAt"`
	LeftAt      *time.Time `json:"leftAt,omitempty"`
	IsMuted     bool       `json:"isMuted"`
	HandRaised  bool       `json:"handRaised"`
}

type submissionView struct {
	Alias     string    `json:"alias"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func viewSession(s *models.Session, eff sessionpolicy.EffectiveStatus, includeSubmissions bool) sessionView {
	v := sessionView{
		ID:                s.ID,
		Kind:              string(s.Kind),
		Topic:             s.Topic,
		Description:       s.Description,
		Status:            string(s.Status),
		EffectiveStatus:   string(eff),
		HostAlias:         s.HostAlias,
		CreatedAt:         s.CreatedAt,
		ScheduledAt:       s.ScheduledAt,
		StartedAt:         s.StartedAt,
		ExpiresAt:         s.ExpiresAt,
		EndedAt:           s.EndedAt,
		LiveSessionID:     s.LiveSessionID,
		MaxParticipants:   s.MaxParticipants,
		ActiveCount:       s.ActiveCount(),
		Participants:      viewParticipants(s.Participants),
		AllowAnonymous:    s.AllowAnonymous,
		ModerationEnabled: s.ModerationEnabled,
		ChildRoomIDs:      s.ChildRoomIDs,
	}
	if includeSubmissions {
		v.Submissions = make([]submissionView, 0, len(s.Submissions))
		for _, sub := range s.Submissions {
			v.Submissions = append(v.Submissions, submissionView(sub))
		}
	}
	return v
}

func viewParticipant(p models.Participant) participantView {
	return participantView{
		ID:          p.ID,
		Alias:       p.Alias,
		IsHost:      p.IsHost,
		IsModerator: p.IsModerator,
		JoinedAt:    p.JoinedAt,
		LeftAt:      p.LeftAt,
		IsMuted:     p.IsMuted,
		HandRaised:  p.HandRaised,
	}
}

func viewParticipants(ps []models.Participant) []participantView {
	out := make([]participantView, 0, len(ps))
	for _, p := range ps {
		out = append(out, viewParticipant(p))
	}
	return out
}
