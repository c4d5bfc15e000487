// internal/app/store/memstore/memstore.go

// Package memstore is an in-memory implementation of the lifecycle
// record-store contracts, used by unit tests and the memory storage
// mode. Conditional updates are serialized under a mutex, giving the
// same atomicity the Mongo adapter gets from versioned writes.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/domain/models"
)

// Sessions is an in-memory lifecycle.SessionStore.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]models.Session
}

// NewSessions creates an empty in-memory session store.
func NewSessions() *Sessions {
	return &Sessions{byID: map[string]models.Session{}}
}

func (s *Sessions) Get(_ context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return models.Session{}, lifecycle.ErrNotFound
	}
	return cloneSession(rec), nil
}

func (s *Sessions) Create(_ context.Context, rec models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rec.ID] = cloneSession(rec)
	return nil
}

func (s *Sessions) Update(_ context.Context, rec models.Session) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[rec.ID]
	if !ok {
		return models.Session{}, lifecycle.ErrNotFound
	}
	if stored.Version != rec.Version {
		return models.Session{}, lifecycle.ErrConflict
	}
	rec.Version++
	s.byID[rec.ID] = cloneSession(rec)
	return cloneSession(rec), nil
}

func (s *Sessions) ListActive(_ context.Context, now time.Time, limit int64) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, rec := range s.byID {
		if rec.Status == models.StatusActive && now.Before(rec.ExpiresAt) {
			out = append(out, cloneSession(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Rooms is an in-memory lifecycle.BreakoutStore.
type Rooms struct {
	mu   sync.Mutex
	byID map[string]models.BreakoutRoom
}

// NewRooms creates an empty in-memory breakout store.
func NewRooms() *Rooms {
	return &Rooms{byID: map[string]models.BreakoutRoom{}}
}

func (r *Rooms) Get(_ context.Context, id string) (models.BreakoutRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return models.BreakoutRoom{}, lifecycle.ErrNotFound
	}
	return cloneRoom(rec), nil
}

func (r *Rooms) Create(_ context.Context, rec models.BreakoutRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = cloneRoom(rec)
	return nil
}

func (r *Rooms) Update(_ context.Context, rec models.BreakoutRoom) (models.BreakoutRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[rec.ID]
	if !ok {
		return models.BreakoutRoom{}, lifecycle.ErrNotFound
	}
	if stored.Version != rec.Version {
		return models.BreakoutRoom{}, lifecycle.ErrConflict
	}
	rec.Version++
	r.byID[rec.ID] = cloneRoom(rec)
	return cloneRoom(rec), nil
}

func (r *Rooms) ListByParent(_ context.Context, parentID string) ([]models.BreakoutRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BreakoutRoom
	for _, rec := range r.byID {
		if rec.ParentSessionID == parentID {
			out = append(out, cloneRoom(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Invitations is an in-memory lifecycle.InvitationStore.
type Invitations struct {
	mu     sync.Mutex
	byID   map[string]models.Invitation
	byCode map[string]string // codeCI -> id
}

// NewInvitations creates an empty in-memory invitation store.
func NewInvitations() *Invitations {
	return &Invitations{
		byID:   map[string]models.Invitation{},
		byCode: map[string]string{},
	}
}

func (s *Invitations) GetByCode(_ context.Context, codeCI string) (models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[codeCI]
	if !ok {
		return models.Invitation{}, lifecycle.ErrNotFound
	}
	return cloneInvitation(s.byID[id]), nil
}

func (s *Invitations) Create(_ context.Context, inv models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.byCode[inv.CodeCI]; ok {
		if existing := s.byID[existingID]; existing.IsActive {
			return lifecycle.ErrDuplicateCode
		}
	}
	s.byID[inv.ID] = cloneInvitation(inv)
	s.byCode[inv.CodeCI] = inv.ID
	return nil
}

// Consume checks active/expiry/usage in one locked step and increments
// the use count, mirroring the Mongo adapter's single conditional write.
func (s *Invitations) Consume(_ context.Context, codeCI string, now time.Time) (models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[codeCI]
	if !ok {
		return models.Invitation{}, lifecycle.ErrNotFound
	}
	inv := s.byID[id]
	switch {
	case !inv.IsActive:
		return models.Invitation{}, lifecycle.ErrInvalidState
	case !now.Before(inv.ExpiresAt):
		return models.Invitation{}, lifecycle.ErrExpired
	case inv.Exhausted():
		return models.Invitation{}, lifecycle.ErrInviteExhausted
	}
	inv.UsedCount++
	s.byID[id] = inv
	return cloneInvitation(inv), nil
}

// Refund returns one consumed use, flooring at zero. Compensation for a
// join the session guard rejected after Consume.
func (s *Invitations) Refund(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.byID[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if inv.UsedCount > 0 {
		inv.UsedCount--
		s.byID[id] = inv
	}
	return nil
}

func (s *Invitations) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.byID[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	inv.IsActive = false
	s.byID[id] = inv
	return nil
}

func cloneSession(s models.Session) models.Session {
	out := s
	out.Participants = cloneParticipants(s.Participants)
	if s.Submissions != nil {
		out.Submissions = append([]models.Submission(nil), s.Submissions...)
	}
	if s.ChildRoomIDs != nil {
		out.ChildRoomIDs = append([]string(nil), s.ChildRoomIDs...)
	}
	out.ScheduledAt = cloneTime(s.ScheduledAt)
	out.StartedAt = cloneTime(s.StartedAt)
	out.EndedAt = cloneTime(s.EndedAt)
	return out
}

func cloneRoom(b models.BreakoutRoom) models.BreakoutRoom {
	out := b
	out.Participants = cloneParticipants(b.Participants)
	out.EndedAt = cloneTime(b.EndedAt)
	return out
}

func cloneInvitation(i models.Invitation) models.Invitation {
	out := i
	if i.MaxUses != nil {
		v := *i.MaxUses
		out.MaxUses = &v
	}
	return out
}

func cloneParticipants(ps []models.Participant) []models.Participant {
	if ps == nil {
		return nil
	}
	out := make([]models.Participant, len(ps))
	for i, p := range ps {
		out[i] = p
		out[i].LeftAt = cloneTime(p.LeftAt)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
