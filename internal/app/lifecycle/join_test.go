package lifecycle_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/domain/models"
)

func TestJoinBasics(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindLiveAudio, 10)

	res, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.Participant.ID != "p-2" || res.Participant.IsHost {
		t.Errorf("unexpected participant record: %+v", res.Participant)
	}
	if res.Session.ActiveCount() != 2 {
		t.Errorf("ActiveCount = %d, want 2", res.Session.ActiveCount())
	}
	if res.MediaToken == "" {
		t.Error("live-audio join should yield a media token")
	}
	if !e.events.has(lifecycle.EventJoined) {
		t.Error("joined event not published")
	}

	t.Run("missing participant id", func(t *testing.T) {
		if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{}); !errors.Is(err, lifecycle.ErrInvalidArgument) {
			t.Errorf("got %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := e.mgr.Join(context.Background(), "nope", lifecycle.JoinRequest{ParticipantID: "p-9"}); !errors.Is(err, lifecycle.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestJoinIdempotent(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)

	first, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	second, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
	if err != nil {
		t.Fatalf("repeat Join: %v", err)
	}
	if second.Session.ActiveCount() != first.Session.ActiveCount() {
		t.Errorf("repeat join changed roster size: %d vs %d",
			second.Session.ActiveCount(), first.Session.ActiveCount())
	}
	if !second.Participant.JoinedAt.Equal(first.Participant.JoinedAt) {
		t.Error("repeat join moved the join time")
	}
}

func TestRejoinAfterLeave(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 2)

	if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := e.mgr.Leave(context.Background(), s.ID, "p-2"); err != nil {
		t.Fatalf("Leave: %v", err)
	}

	// The seat freed by departure is reclaimable even at capacity.
	res, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if res.Participant.LeftAt != nil {
		t.Error("rejoined participant still marked departed")
	}
	if got := len(res.Session.Participants); got != 2 {
		t.Errorf("roster has %d records, want 2 (no duplicate)", got)
	}
}

func TestJoinAnonymousGate(t *testing.T) {
	e := newEnv(t, nil)
	res, err := e.mgr.CreateSession(context.Background(), lifecycle.CreateSpec{
		Kind: models.KindTextRoom, Topic: "members only", HostID: "host-1", AllowAnonymous: false,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	_, err = e.mgr.Join(context.Background(), res.Session.ID, lifecycle.JoinRequest{
		ParticipantID: "anon-7", Anonymous: true,
	})
	if !errors.Is(err, lifecycle.ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestJoinModerationRejection(t *testing.T) {
	e := newEnv(t, func(d *lifecycle.Deps) { d.Moderator = rejectAll{} })
	res, err := e.mgr.CreateSession(context.Background(), lifecycle.CreateSpec{
		Kind: models.KindTextRoom, Topic: "guarded", HostID: "host-1", ModerationEnabled: true,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := e.mgr.Join(context.Background(), res.Session.ID, lifecycle.JoinRequest{ParticipantID: "p-2"}); !errors.Is(err, lifecycle.ErrModerationRejected) {
		t.Errorf("got %v, want ErrModerationRejected", err)
	}
}

func TestJoinExpiredSession(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)
	e.clock.Advance(3 * time.Hour)

	if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2"}); !errors.Is(err, lifecycle.ErrExpired) {
		t.Errorf("got %v, want ErrExpired", err)
	}
}

func TestJoinScheduledSession(t *testing.T) {
	t.Run("too early for strangers", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createScheduled(t, time.Hour)
		if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2"}); !errors.Is(err, lifecycle.ErrInvalidState) {
			t.Errorf("got %v, want ErrInvalidState", err)
		}
	})

	t.Run("within the lead window the join converts", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createScheduled(t, time.Hour)
		e.clock.Advance(59*time.Minute + 30*time.Second)

		res, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
		if err != nil {
			t.Fatalf("Join: %v", err)
		}
		if res.Session.ID == s.ID {
			t.Error("join should land on the spawned live session, not the scheduled record")
		}
		if res.Session.Status != models.StatusActive {
			t.Errorf("status = %s, want active", res.Session.Status)
		}
	})
}

// TestJoinCapacityUnderContention floods a session that has N free
// seats with 2N concurrent joiners. The versioned write is the only
// arbiter; exactly N must be admitted and the rest must see the full
// room, not a corrupt roster.
func TestJoinCapacityUnderContention(t *testing.T) {
	const maxParticipants = 5 // host + 4 free seats
	const joiners = 8

	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, maxParticipants)

	var wg sync.WaitGroup
	results := make([]error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("p-%d", i)
			for {
				_, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: id})
				if errors.Is(err, lifecycle.ErrConflict) {
					continue // lost the write race, try again
				}
				results[i] = err
				return
			}
		}(i)
	}
	wg.Wait()

	admitted, full := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, lifecycle.ErrFull):
			full++
		default:
			t.Errorf("unexpected join error: %v", err)
		}
	}
	if admitted != maxParticipants-1 {
		t.Errorf("admitted = %d, want %d", admitted, maxParticipants-1)
	}
	if full != joiners-(maxParticipants-1) {
		t.Errorf("full rejections = %d, want %d", full, joiners-(maxParticipants-1))
	}

	final, err := e.mgr.GetSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if final.ActiveCount() != maxParticipants {
		t.Errorf("final roster = %d, want exactly %d", final.ActiveCount(), maxParticipants)
	}
}

func TestLeaveHostFailover(t *testing.T) {
	t.Run("promotes the earliest active moderator", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createActive(t, models.KindTextRoom, 10)
		if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"}); err != nil {
			t.Fatalf("Join: %v", err)
		}

		if _, err := e.mgr.SetModerator(context.Background(), s.ID, "host-1", "p-2", true); err != nil {
			t.Fatalf("SetModerator: %v", err)
		}

		got, err := e.mgr.Leave(context.Background(), s.ID, "host-1")
		if err != nil {
			t.Fatalf("Leave: %v", err)
		}
		if got.Status != models.StatusActive {
			t.Errorf("status = %s, want still active after failover", got.Status)
		}
		if got.HostID != "p-2" {
			t.Errorf("HostID = %s, want promoted successor p-2", got.HostID)
		}
		if p := got.Participant("p-2"); p == nil || !p.IsHost {
			t.Error("successor not flagged as host")
		}
		if !e.events.has(lifecycle.EventHostChanged) {
			t.Error("host_changed event not published")
		}
	})

	t.Run("ends the session with no successor", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createActive(t, models.KindTextRoom, 10)
		if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"}); err != nil {
			t.Fatalf("Join: %v", err)
		}

		got, err := e.mgr.Leave(context.Background(), s.ID, "host-1")
		if err != nil {
			t.Fatalf("Leave: %v", err)
		}
		if got.Status != models.StatusEnded {
			t.Errorf("status = %s, want ended when the host leaves unsucceeded", got.Status)
		}
		if !e.events.has(lifecycle.EventEnded) {
			t.Error("ended event not published")
		}
	})
}

func TestLeaveIsIdempotent(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)
	if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2"}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := e.mgr.Leave(context.Background(), s.ID, "p-2"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if _, err := e.mgr.Leave(context.Background(), s.ID, "p-2"); err != nil {
		t.Errorf("second Leave should be a no-op, got %v", err)
	}

	t.Run("never joined", func(t *testing.T) {
		if _, err := e.mgr.Leave(context.Background(), s.ID, "ghost"); !errors.Is(err, lifecycle.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestConvertToLive(t *testing.T) {
	t.Run("host converts early", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createScheduled(t, 2*time.Hour)

		live, err := e.mgr.ConvertToLive(context.Background(), s.ID, "host-1")
		if err != nil {
			t.Fatalf("ConvertToLive: %v", err)
		}
		if live.ID == s.ID {
			t.Error("conversion should spawn a distinct live record")
		}
		if live.Status != models.StatusActive || live.StartedAt == nil {
			t.Errorf("live session malformed: %+v", live)
		}

		// The scheduled record carries the forward pointer.
		sched, err := e.sessions.Get(context.Background(), s.ID)
		if err != nil {
			t.Fatalf("store Get: %v", err)
		}
		if sched.LiveSessionID != live.ID {
			t.Errorf("LiveSessionID = %q, want %q", sched.LiveSessionID, live.ID)
		}
	})

	t.Run("stranger too early is forbidden", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createScheduled(t, 2*time.Hour)
		if _, err := e.mgr.ConvertToLive(context.Background(), s.ID, "stranger"); !errors.Is(err, lifecycle.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("repeat conversion returns the same live session", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createScheduled(t, 2*time.Hour)
		first, err := e.mgr.ConvertToLive(context.Background(), s.ID, "host-1")
		if err != nil {
			t.Fatalf("ConvertToLive: %v", err)
		}
		second, err := e.mgr.ConvertToLive(context.Background(), s.ID, "host-1")
		if err != nil {
			t.Fatalf("repeat ConvertToLive: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("repeat conversion spawned a second live session: %s vs %s", second.ID, first.ID)
		}
	})

	t.Run("expired unconverted", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createScheduled(t, time.Hour)
		e.clock.Advance(4 * time.Hour)
		if _, err := e.mgr.ConvertToLive(context.Background(), s.ID, "host-1"); !errors.Is(err, lifecycle.ErrExpired) {
			t.Errorf("got %v, want ErrExpired", err)
		}
	})

	t.Run("preserves the planned duration", func(t *testing.T) {
		e := newEnv(t, nil)
		s := e.createScheduled(t, time.Hour) // planned window: 2h from start
		e.clock.Advance(30 * time.Minute)

		live, err := e.mgr.ConvertToLive(context.Background(), s.ID, "host-1")
		if err != nil {
			t.Fatalf("ConvertToLive: %v", err)
		}
		if want := e.clock.Now().Add(2 * time.Hour); !live.ExpiresAt.Equal(want) {
			t.Errorf("ExpiresAt = %v, want %v (planned duration from actual start)", live.ExpiresAt, want)
		}
	})
}

// TestConvertHealsDanglingPointer simulates a converter dying between
// claiming the forward pointer and creating the live record. The next
// caller must rebuild the live session under the claimed id instead of
// rejecting forever.
func TestConvertHealsDanglingPointer(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createScheduled(t, 30*time.Second)

	// Claim the pointer the way a crashed converter would have: pointer
	// written, live record never created.
	stored, err := e.sessions.Get(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("store Get: %v", err)
	}
	stored.LiveSessionID = "live-orphan"
	if _, err := e.sessions.Update(context.Background(), stored); err != nil {
		t.Fatalf("store Update: %v", err)
	}

	live, err := e.mgr.ConvertToLive(context.Background(), s.ID, "host-1")
	if err != nil {
		t.Fatalf("ConvertToLive behind a dangling pointer: %v", err)
	}
	if live.ID != "live-orphan" {
		t.Errorf("live ID = %q, want the claimed pointer target", live.ID)
	}
	if live.Status != models.StatusActive || live.StartedAt == nil {
		t.Errorf("rebuilt live session malformed: %+v", live)
	}

	// Joins route through the same healing path.
	res, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
	if err != nil {
		t.Fatalf("Join after heal: %v", err)
	}
	if res.Session.ID != "live-orphan" {
		t.Errorf("joined session = %q, want the rebuilt live record", res.Session.ID)
	}
}

// TestConvertRaceSettlesOnOneLiveSession races concurrent conversions;
// every caller must end up on the same live record.
func TestConvertRaceSettlesOnOneLiveSession(t *testing.T) {
	const converters = 8

	e := newEnv(t, nil)
	s := e.createScheduled(t, 30*time.Second) // inside the lead window for everyone

	var wg sync.WaitGroup
	ids := make([]string, converters)
	for i := 0; i < converters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for {
				live, err := e.mgr.ConvertToLive(context.Background(), s.ID, fmt.Sprintf("caller-%d", i))
				if errors.Is(err, lifecycle.ErrConflict) {
					continue
				}
				if err != nil {
					t.Errorf("ConvertToLive: %v", err)
					return
				}
				ids[i] = live.ID
				return
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < converters; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("converters disagree on the live session: %v", ids)
		}
	}
}
