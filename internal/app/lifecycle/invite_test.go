package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/domain/models"
	"github.com/havenlabs/haven/internal/testutil"
)

func TestCreateInvite(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)

	inv, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	if len(inv.Code) != 8 {
		t.Errorf("code length = %d, want the configured 8", len(inv.Code))
	}
	if !inv.IsActive || inv.UsedCount != 0 {
		t.Errorf("fresh invite malformed: %+v", inv)
	}
	if want := e.clock.Now().Add(24 * time.Hour); !inv.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want default TTL %v", inv.ExpiresAt, want)
	}

	t.Run("non-host may not mint", func(t *testing.T) {
		if _, err := e.mgr.CreateInvite(context.Background(), s.ID, "p-2", lifecycle.InviteSpec{}); !errors.Is(err, lifecycle.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("zero max uses rejected", func(t *testing.T) {
		if _, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{MaxUses: testutil.IntPtr(0)}); !errors.Is(err, lifecycle.ErrInvalidArgument) {
			t.Errorf("got %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("ended session rejects minting", func(t *testing.T) {
		if _, err := e.mgr.EndSession(context.Background(), s.ID, "host-1", false); err != nil {
			t.Fatalf("EndSession: %v", err)
		}
		if _, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{}); !errors.Is(err, lifecycle.ErrInvalidState) {
			t.Errorf("got %v, want ErrInvalidState", err)
		}
	})
}

func TestJoinByInvite(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)
	inv, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	res, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"})
	if err != nil {
		t.Fatalf("JoinByInvite: %v", err)
	}
	if res.Session.ID != s.ID {
		t.Errorf("joined session %s, want %s", res.Session.ID, s.ID)
	}

	t.Run("codes match case-insensitively", func(t *testing.T) {
		lower := strings.ToLower(inv.Code)
		if _, err := e.mgr.JoinByInvite(context.Background(), lower, lifecycle.JoinRequest{ParticipantID: "p-3"}); err != nil {
			t.Errorf("lowercase code rejected: %v", err)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		if _, err := e.mgr.JoinByInvite(context.Background(), "NOSUCHCODE", lifecycle.JoinRequest{ParticipantID: "p-4"}); !errors.Is(err, lifecycle.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestInviteUsageLimit(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)
	inv, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{
		MaxUses: testutil.IntPtr(2),
	})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	for i, id := range []string{"p-2", "p-3"} {
		if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: id}); err != nil {
			t.Fatalf("use %d: %v", i+1, err)
		}
	}
	if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-4"}); !errors.Is(err, lifecycle.ErrInviteExhausted) {
		t.Errorf("got %v, want ErrInviteExhausted after the limit", err)
	}
}

func TestInviteUseRefundedWhenAdmissionFails(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 2)
	if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-2", Alias: "Sky"}); err != nil {
		t.Fatalf("fill session: %v", err)
	}
	inv, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{
		MaxUses: testutil.IntPtr(1),
	})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	// Full house turns the holder away; the rejection must not spend the
	// invite's single use.
	if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-3"}); !errors.Is(err, lifecycle.ErrFull) {
		t.Fatalf("got %v, want ErrFull against a full session", err)
	}

	if _, err := e.mgr.Leave(context.Background(), s.ID, "p-2"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-3"}); err != nil {
		t.Fatalf("retry after a seat freed: %v", err)
	}

	// Only the admitted join counted against the limit.
	if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-4"}); !errors.Is(err, lifecycle.ErrInviteExhausted) {
		t.Errorf("got %v, want ErrInviteExhausted after the one real use", err)
	}
}

func TestInviteExpiry(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)
	inv, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{
		TTL: 10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	e.clock.Advance(11 * time.Minute)
	if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-2"}); !errors.Is(err, lifecycle.ErrExpired) {
		t.Errorf("got %v, want ErrExpired", err)
	}
}

func TestDeactivateInvite(t *testing.T) {
	e := newEnv(t, nil)
	s := e.createActive(t, models.KindTextRoom, 10)
	inv, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	t.Run("stranger may not deactivate", func(t *testing.T) {
		if err := e.mgr.DeactivateInvite(context.Background(), inv.Code, "p-9"); !errors.Is(err, lifecycle.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	if err := e.mgr.DeactivateInvite(context.Background(), inv.Code, "host-1"); err != nil {
		t.Fatalf("DeactivateInvite: %v", err)
	}
	if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-2"}); !errors.Is(err, lifecycle.ErrInvalidState) {
		t.Errorf("got %v, want ErrInvalidState after deactivation", err)
	}
}

func TestInviteRequiresApprovalRoutesThroughModeration(t *testing.T) {
	// Session moderation is off; the invite alone forces a review.
	e := newEnv(t, func(d *lifecycle.Deps) { d.Moderator = rejectAll{} })
	s := e.createActive(t, models.KindTextRoom, 10)
	inv, err := e.mgr.CreateInvite(context.Background(), s.ID, "host-1", lifecycle.InviteSpec{
		RequiresApproval: true,
	})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	if _, err := e.mgr.JoinByInvite(context.Background(), inv.Code, lifecycle.JoinRequest{ParticipantID: "p-2"}); !errors.Is(err, lifecycle.ErrModerationRejected) {
		t.Errorf("got %v, want ErrModerationRejected", err)
	}

	// A direct join of the same session passes: moderation is invite-scoped.
	if _, err := e.mgr.Join(context.Background(), s.ID, lifecycle.JoinRequest{ParticipantID: "p-3"}); err != nil {
		t.Errorf("direct join should bypass invite approval: %v", err)
	}
}
