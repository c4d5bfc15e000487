// internal/app/system/identity/identity.go

// Package identity adapts the upstream identity collaborator. Haven
// never authenticates credentials itself: a trusted gateway terminates
// auth and forwards the caller's id and alias in headers. Requests
// without an identity get a minted anonymous id so pseudonymous hosts
// and joiners still have a stable id for the life of the request.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Headers set by the gateway.
const (
	UserHeader  = "X-Haven-User"
	AliasHeader = "X-Haven-Alias"
)

// User is the caller identity attached to every request.
type User struct {
	ID        string
	Alias     string
	Anonymous bool
}

type ctxKey struct{}

// Middleware resolves the caller identity into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := User{
			ID:    strings.TrimSpace(r.Header.Get(UserHeader)),
			Alias: strings.TrimSpace(r.Header.Get(AliasHeader)),
		}
		if u.ID == "" {
			u.ID = "anon-" + uuid.NewString()
			u.Anonymous = true
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// WithUser returns a context carrying the given user. Exposed for tests.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// Current returns the caller identity resolved by Middleware.
func Current(r *http.Request) (User, bool) {
	u, ok := r.Context().Value(ctxKey{}).(User)
	return u, ok
}
