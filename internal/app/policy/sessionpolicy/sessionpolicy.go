// internal/app/policy/sessionpolicy/sessionpolicy.go

// Package sessionpolicy decides, from a session snapshot and a clock,
// whether an admission or submission is legal right now, and what status
// a reader should report. All functions are pure: no store access, no
// side effects. The lifecycle manager maps verdicts onto its error kinds.
package sessionpolicy

import (
	"time"

	"github.com/havenlabs/haven/internal/domain/models"
)

// Verdict categorizes an admission decision so callers can surface
// distinct, stable error kinds instead of one generic failure.
type Verdict int

const (
	Admit Verdict = iota
	DenyNotActive
	DenyExpired
	DenyFull
)

// String returns the verdict name for logs.
func (v Verdict) String() string {
	switch v {
	case Admit:
		return "admit"
	case DenyNotActive:
		return "not-active"
	case DenyExpired:
		return "expired"
	case DenyFull:
		return "full"
	}
	return "unknown"
}

// EffectiveStatus is the status a read path should report, derived from
// the snapshot and the clock rather than trusting the persisted field.
type EffectiveStatus string

const (
	Scheduled EffectiveStatus = "scheduled"
	Active    EffectiveStatus = "active"
	Expiring  EffectiveStatus = "expiring"
	Ended     EffectiveStatus = "ended"
)

// DefaultExpiringWindow is how close to expiry a live session is
// reported as "expiring".
const DefaultExpiringWindow = 5 * time.Minute

// IsExpired reports whether the session's time bound has passed,
// regardless of the persisted status (lazy expiry).
func IsExpired(s *models.Session, now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// RoomExpired reports whether the breakout room's time bound has passed.
func RoomExpired(b *models.BreakoutRoom, now time.Time) bool {
	return now.After(b.ExpiresAt)
}

// StatusAt derives the effective status of a session at now. An overdue
// session reads as ended even before a write reconciles the flag.
func StatusAt(s *models.Session, now time.Time) EffectiveStatus {
	if s.Status == models.StatusEnded || IsExpired(s, now) {
		return Ended
	}
	if s.Status == models.StatusScheduled {
		return Scheduled
	}
	if now.After(s.ExpiresAt.Add(-DefaultExpiringWindow)) {
		return Expiring
	}
	return Active
}

// RoomStatusAt derives the effective status of a breakout room at now.
func RoomStatusAt(b *models.BreakoutRoom, now time.Time) EffectiveStatus {
	if b.Status == models.StatusEnded || RoomExpired(b, now) {
		return Ended
	}
	if now.After(b.ExpiresAt.Add(-DefaultExpiringWindow)) {
		return Expiring
	}
	return Active
}

// CanAdmit decides whether a new participant may be admitted to the
// session at now. The capacity clause counts only active participants,
// so departed members free their seats.
func CanAdmit(s *models.Session, now time.Time) Verdict {
	return canAdmit(s.Status, s.ExpiresAt, s.ActiveCount(), s.MaxParticipants, now)
}

// CanAdmitRoom is CanAdmit for breakout rooms.
func CanAdmitRoom(b *models.BreakoutRoom, now time.Time) Verdict {
	return canAdmit(b.Status, b.ExpiresAt, b.ActiveCount(), b.MaxParticipants, now)
}

// CanSubmit decides whether an anonymous-inbox submission is accepted at
// now. Submissions are unbounded, so the capacity clause does not apply.
func CanSubmit(s *models.Session, now time.Time) Verdict {
	if s.Status != models.StatusActive {
		return DenyNotActive
	}
	if IsExpired(s, now) {
		return DenyExpired
	}
	return Admit
}

func canAdmit(status models.SessionStatus, expiresAt time.Time, active, max int, now time.Time) Verdict {
	if status != models.StatusActive {
		return DenyNotActive
	}
	if now.After(expiresAt) {
		return DenyExpired
	}
	if active >= max {
		return DenyFull
	}
	return Admit
}
