package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/havenlabs/haven/internal/app/system/identity"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestUser represents caller identity for testing HTTP handlers.
type TestUser struct {
	ID        string
	Alias     string
	Anonymous bool
}

// KnownUser returns a TestUser with a gateway-style identity.
func KnownUser(alias string) TestUser {
	return TestUser{ID: "user-" + uuid.NewString(), Alias: alias}
}

// AnonUser returns a TestUser the way the identity middleware mints
// them for requests without forwarded identity.
func AnonUser() TestUser {
	return TestUser{ID: "anon-" + uuid.NewString(), Anonymous: true}
}

// WithUser adds a caller identity to the request context, bypassing the
// identity middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	u := identity.User{ID: user.ID, Alias: user.Alias, Anonymous: user.Anonymous}
	return r.WithContext(identity.WithUser(r.Context(), u))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with a JSON-encoded body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// DecodeJSON unmarshals the response body into v.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response body: %v\nbody: %s", err, r.Body.String())
	}
}

// AssertErrorKind checks the "kind" field of a JSON error body.
func (r *ResponseRecorder) AssertErrorKind(t *testing.T, expected string) {
	t.Helper()
	var body struct {
		Kind string `json:"kind"`
	}
	r.DecodeJSON(t, &body)
	if body.Kind != expected {
		t.Errorf("error kind: got %q, want %q", body.Kind, expected)
	}
}
