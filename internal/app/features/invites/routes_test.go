package invites_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/features/invites"
	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/store/memstore"
	"github.com/havenlabs/haven/internal/app/system/ratelimit"
	"github.com/havenlabs/haven/internal/testutil"
)

type api struct {
	router chi.Router
	mgr    *lifecycle.Manager
}

func newAPI(t *testing.T, joinLimit int) *api {
	t.Helper()
	logger := zap.NewNop()
	mgr := lifecycle.NewManager(lifecycle.Deps{
		Sessions: memstore.NewSessions(),
		Rooms:    memstore.NewRooms(),
		Invites:  memstore.NewInvitations(),
		Logger:   logger,
	})
	r := chi.NewRouter()
	r.Mount("/api/invites", invites.Routes(invites.NewHandler(mgr, logger), ratelimit.New(joinLimit, time.Minute)))
	return &api{router: r, mgr: mgr}
}

// seedInvite creates a live session and mints an invitation for it.
func (a *api) seedInvite(t *testing.T, host testutil.TestUser, maxUses *int) (sessionID, code string) {
	t.Helper()
	ctx := context.Background()
	res, err := a.mgr.CreateSession(ctx, lifecycle.CreateSpec{
		Kind:      "text-room",
		Topic:     "t",
		HostID:    host.ID,
		HostAlias: host.Alias,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	inv, err := a.mgr.CreateInvite(ctx, res.Session.ID, host.ID, lifecycle.InviteSpec{MaxUses: maxUses})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	return res.Session.ID, inv.Code
}

func (a *api) do(t *testing.T, user testutil.TestUser, method, target string, body any) *testutil.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, target, body)
	} else {
		req = testutil.NewRequest(method, target)
	}
	req = testutil.WithUser(req, user)
	rr := testutil.NewRecorder()
	a.router.ServeHTTP(rr.ResponseRecorder, req)
	return rr
}

func TestJoinByCodeEndpoint(t *testing.T) {
	a := newAPI(t, 100)
	host := testutil.KnownUser("River")
	sessionID, code := a.seedInvite(t, host, nil)

	rr := a.do(t, testutil.KnownUser("Sage"), http.MethodPost, "/api/invites/"+code+"/join", map[string]any{})
	rr.AssertStatus(t, http.StatusOK)
	var join struct {
		SessionID string `json:"sessionId"`
		Alias     string `json:"alias"`
	}
	rr.DecodeJSON(t, &join)
	if join.SessionID != sessionID || join.Alias != "Sage" {
		t.Errorf("join = %+v", join)
	}

	rr = a.do(t, host, http.MethodPost, "/api/invites/WRONGONE/join", map[string]any{})
	rr.AssertStatus(t, http.StatusNotFound)
	rr.AssertErrorKind(t, "not_found")
}

func TestExhaustedCodeEndpoint(t *testing.T) {
	a := newAPI(t, 100)
	host := testutil.KnownUser("River")
	_, code := a.seedInvite(t, host, testutil.IntPtr(1))
	target := "/api/invites/" + code + "/join"

	rr := a.do(t, testutil.KnownUser("Sage"), http.MethodPost, target, map[string]any{})
	rr.AssertStatus(t, http.StatusOK)

	rr = a.do(t, testutil.KnownUser("Ash"), http.MethodPost, target, map[string]any{})
	rr.AssertStatus(t, http.StatusGone)
	rr.AssertErrorKind(t, "invite_exhausted")
}

func TestDeactivateEndpoint(t *testing.T) {
	a := newAPI(t, 100)
	host := testutil.KnownUser("River")
	_, code := a.seedInvite(t, host, nil)

	rr := a.do(t, testutil.KnownUser("Sage"), http.MethodDelete, "/api/invites/"+code, nil)
	rr.AssertStatus(t, http.StatusForbidden)

	rr = a.do(t, host, http.MethodDelete, "/api/invites/"+code, nil)
	rr.AssertStatus(t, http.StatusNoContent)

	rr = a.do(t, testutil.KnownUser("Ash"), http.MethodPost, "/api/invites/"+code+"/join", map[string]any{})
	rr.AssertStatus(t, http.StatusConflict)
	rr.AssertErrorKind(t, "invalid_state")
}

func TestJoinIsRateLimited(t *testing.T) {
	a := newAPI(t, 2)
	host := testutil.KnownUser("River")
	_, code := a.seedInvite(t, host, nil)
	target := "/api/invites/" + code + "/join"

	// All three requests come from the same client address.
	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		rr := a.do(t, testutil.KnownUser("Sage"), http.MethodPost, target, map[string]any{})
		if rr.Code != want {
			t.Fatalf("request %d: %d, want %d", i+1, rr.Code, want)
		}
	}
}
