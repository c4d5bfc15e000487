// internal/domain/models/roster.go
package models

// Roster helpers shared by sessions and breakout rooms. Participant
// slices keep insertion order, which is join order; all scans are O(n)
// over rosters of at most a few dozen members.

// ActiveCount returns the number of participants with no departure mark.
func ActiveCount(participants []Participant) int {
	n := 0
	for i := range participants {
		if participants[i].Active() {
			n++
		}
	}
	return n
}

// FindParticipant returns a pointer into participants for the given id,
// or nil when the id has never joined. There is at most one record per id.
func FindParticipant(participants []Participant, id string) *Participant {
	for i := range participants {
		if participants[i].ID == id {
			return &participants[i]
		}
	}
	return nil
}

// PromoteSuccessor returns the earliest-joined active moderator other
// than hostID, or nil when no successor exists. Used for host failover.
func PromoteSuccessor(participants []Participant, hostID string) *Participant {
	var successor *Participant
	for i := range participants {
		p := &participants[i]
		if p.ID == hostID || !p.Active() || !p.IsModerator {
			continue
		}
		if successor == nil || p.JoinedAt.Before(successor.JoinedAt) {
			successor = p
		}
	}
	return successor
}

// ActiveCount returns the session's current roster size.
func (s *Session) ActiveCount() int { return ActiveCount(s.Participants) }

// Participant returns the session's record for id, or nil.
func (s *Session) Participant(id string) *Participant {
	return FindParticipant(s.Participants, id)
}

// ActiveCount returns the room's current roster size.
func (b *BreakoutRoom) ActiveCount() int { return ActiveCount(b.Participants) }

// Participant returns the room's record for id, or nil.
func (b *BreakoutRoom) Participant(id string) *Participant {
	return FindParticipant(b.Participants, id)
}
