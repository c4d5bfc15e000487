// internal/app/features/breakouts/views.go
package breakouts

import (
	"time"

	"github.com/havenlabs/haven/internal/domain/models"
)

type roomView struct {
	ID              string     `json:"id"`
	ParentSessionID string     `json:"parentSessionId"`
	Name            string     `json:"name"`
	FacilitatorID   string     `json:"facilitatorId"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`

	MaxParticipants int               `json:"maxParticipants"`
	ActiveCount     int               `json:"activeCount"`
	Participants    []participantView `json:"participants"`
}

type participantView struct {
	ID          string     `json:"id"`
	Alias       string     `json:"alias"`
	IsHost      bool       `json:"isHost"`
	IsModerator bool       `json:"isModerator"`
	JoinedAt    time.Time  `json:"joinedAt"`
	LeftAt      *time.Time `json:"leftAt,omitempty"`
}

func viewRoom(b *models.BreakoutRoom) roomView {
	return roomView{
		ID:              b.ID,
		ParentSessionID: b.ParentSessionID,
		Name:            b.Name,
		FacilitatorID:   b.FacilitatorID,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		ExpiresAt:       b.ExpiresAt,
		EndedAt:         b.EndedAt,
		MaxParticipants: b.MaxParticipants,
		ActiveCount:     b.ActiveCount(),
		Participants:    viewParticipants(b.Participants),
	}
}

func viewParticipant(p models.Participant) participantView {
	return participantView{
		ID:          p.ID,
		Alias:       p.Alias,
		IsHost:      p.IsHost,
		IsModerator: p.IsModerator,
		JoinedAt:    p.JoinedAt,
		LeftAt:      p.LeftAt,
	}
}

func viewParticipants(ps []models.Participant) []participantView {
	out := make([]participantView, 0, len(ps))
	for _, p := range ps {
		out = append(out, viewParticipant(p))
	}
	return out
}
