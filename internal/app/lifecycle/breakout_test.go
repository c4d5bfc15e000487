package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/domain/models"
)

func (e *env) createRoom(t *testing.T, parentID string) models.BreakoutRoom {
	t.Helper()
	room, err := e.mgr.CreateBreakout(context.Background(), parentID, "host-1", lifecycle.RoomSpec{
		Name: "Quiet corner",
	})
	if err != nil {
		t.Fatalf("CreateBreakout: %v", err)
	}
	return room
}

func TestCreateBreakout(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindLiveAudio, 10)

	room := e.createRoom(t, s.ID)
	if room.ParentSessionID != s.ID {
		t.Errorf("ParentSessionID = %s, want %s", room.ParentSessionID, s.ID)
	}
	if room.FacilitatorID != "host-1" {
		t.Errorf("FacilitatorID = %s, want the creating host", room.FacilitatorID)
	}
	if room.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1 (the facilitator)", room.ActiveCount())
	}

	// The parent registers the room.
	parent, err := e.mgr.GetSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(parent.ChildRoomIDs) != 1 || parent.ChildRoomIDs[0] != room.ID {
		t.Errorf("ChildRoomIDs = %v, want [%s]", parent.ChildRoomIDs, room.ID)
	}
	if !e.events.has(lifecycle.EventRoomOpened) {
		t.Error("room_opened event not published")
	}

	t.Run("non-host may not spawn", func(t *testing.T) {
		_, err := e.mgr.CreateBreakout(context.Background(), s.ID, "p-2", lifecycle.RoomSpec{Name: "side"})
		if !errors.Is(err, lifecycle.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("needs a name", func(t *testing.T) {
		_, err := e.mgr.CreateBreakout(context.Background(), s.ID, "host-1", lifecycle.RoomSpec{})
		if !errors.Is(err, lifecycle.ErrInvalidArgument) {
			t.Errorf("got %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("parent must be live", func(t *testing.T) {
		e := newEnv(t, nil)
		sched := e.createScheduled(t, time.Hour)
		_, err := e.mgr.CreateBreakout(context.Background(), sched.ID, "host-1", lifecycle.RoomSpec{Name: "early"})
		if !errors.Is(err, lifecycle.ErrInvalidState) {
			t.Errorf("got %v, want ErrInvalidState", err)
		}
	})
}

func TestBreakoutCapDoesNotExceedParent(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)

	room, err := e.mgr.CreateBreakout(context.Background(), s.ID, "host-1", lifecycle.RoomSpec{
		Name:            "big room",
		MaxParticipants: 500,
	})
	if err != nil {
		t.Fatalf("CreateBreakout: %v", err)
	}
	if room.MaxParticipants != 10 {
		t.Errorf("MaxParticipants = %d, want clamped to parent's 10", room.MaxParticipants)
	}
}

func TestJoinAndLeaveBreakout(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindLiveAudio, 10)
	room := e.createRoom(t, s.ID)

	got, p, err := e.mgr.JoinBreakout(context.Background(), room.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
	if err != nil {
		t.Fatalf("JoinBreakout: %v", err)
	}
	if p.ID != "p-2" || got.ActiveCount() != 2 {
		t.Errorf("join not reflected: %+v count=%d", p, got.ActiveCount())
	}

	// Re-join is reconnect tolerant.
	again, _, err := e.mgr.JoinBreakout(context.Background(), room.ID, lifecycle.JoinRequest{ParticipantID: "p-2"})
	if err != nil {
		t.Fatalf("repeat JoinBreakout: %v", err)
	}
	if again.ActiveCount() != 2 {
		t.Errorf("repeat join changed roster: %d", again.ActiveCount())
	}

	// A plain participant leaving does not end the room.
	left, err := e.mgr.LeaveBreakout(context.Background(), room.ID, "p-2")
	if err != nil {
		t.Fatalf("LeaveBreakout: %v", err)
	}
	if left.Status != models.StatusActive {
		t.Errorf("status = %s, want active with facilitator present", left.Status)
	}
}

func TestBreakoutEndsWhenFacilitatorLeaves(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindLiveAudio, 10)
	room := e.createRoom(t, s.ID)
	if _, _, err := e.mgr.JoinBreakout(context.Background(), room.ID, lifecycle.JoinRequest{ParticipantID: "p-2"}); err != nil {
		t.Fatalf("JoinBreakout: %v", err)
	}

	got, err := e.mgr.LeaveBreakout(context.Background(), room.ID, "host-1")
	if err != nil {
		t.Fatalf("LeaveBreakout: %v", err)
	}
	if got.Status != models.StatusEnded {
		t.Errorf("status = %s, want ended when the facilitator departs", got.Status)
	}
	if !e.events.has(lifecycle.EventRoomClosed) {
		t.Error("room_closed event not published")
	}

	// Closure never touches the parent.
	parent, err := e.mgr.GetSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if parent.Status != models.StatusActive {
		t.Errorf("parent status = %s, want unaffected", parent.Status)
	}
}

func TestCloseBreakout(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindLiveAudio, 10)
	room, err := e.mgr.CreateBreakout(context.Background(), s.ID, "host-1", lifecycle.RoomSpec{
		Name:          "delegated",
		FacilitatorID: "fac-1",
	})
	if err != nil {
		t.Fatalf("CreateBreakout: %v", err)
	}

	t.Run("stranger may not close", func(t *testing.T) {
		if _, err := e.mgr.CloseBreakout(context.Background(), room.ID, "p-9"); !errors.Is(err, lifecycle.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("parent host may close", func(t *testing.T) {
		got, err := e.mgr.CloseBreakout(context.Background(), room.ID, "host-1")
		if err != nil {
			t.Fatalf("CloseBreakout: %v", err)
		}
		if got.Status != models.StatusEnded {
			t.Errorf("status = %s, want ended", got.Status)
		}
	})

	t.Run("closing twice is a no-op", func(t *testing.T) {
		if _, err := e.mgr.CloseBreakout(context.Background(), room.ID, "host-1"); err != nil {
			t.Errorf("repeat close: %v", err)
		}
	})
}

func TestBreakoutLazyExpiry(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindLiveAudio, 10)
	room := e.createRoom(t, s.ID)

	e.clock.Advance(90 * time.Minute) // past the 1h breakout TTL

	got, err := e.mgr.GetBreakout(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("GetBreakout: %v", err)
	}
	if got.Status != models.StatusEnded {
		t.Errorf("status = %s, want ended after expiry", got.Status)
	}

	if _, _, err := e.mgr.JoinBreakout(context.Background(), room.ID, lifecycle.JoinRequest{ParticipantID: "p-3"}); err == nil {
		t.Error("join against an expired room should fail")
	}
}

func TestListBreakouts(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindLiveAudio, 10)
	first := e.createRoom(t, s.ID)
	second, err := e.mgr.CreateBreakout(context.Background(), s.ID, "host-1", lifecycle.RoomSpec{Name: "second"})
	if err != nil {
		t.Fatalf("CreateBreakout: %v", err)
	}

	rooms, err := e.mgr.ListBreakouts(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("ListBreakouts: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("len = %d, want 2", len(rooms))
	}
	ids := map[string]bool{rooms[0].ID: true, rooms[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Errorf("rooms = %v, want both created rooms", ids)
	}
}
