// internal/app/lifecycle/errors.go
package lifecycle

import "errors"

// Error kinds crossing the core/caller boundary. All are recoverable by
// the caller; only store unavailability surfaces as a wrapped generic
// failure. Stores return ErrNotFound and ErrConflict as part of their
// contract, the way io defines io.EOF for its readers.
var (
	// ErrNotFound means a session, breakout room, or invitation does not
	// resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the requested transition is illegal from the
	// current status, such as joining an ended session.
	ErrInvalidState = errors.New("invalid state for requested transition")

	// ErrExpired means the session's or invitation's time bound has
	// passed (decided lazily against the clock, not a background sweep).
	ErrExpired = errors.New("expired")

	// ErrFull means the capacity ceiling is exhausted.
	ErrFull = errors.New("capacity exhausted")

	// ErrForbidden means the requester lacks authority for the mutation:
	// not the host, token mismatch, or anonymous join disallowed.
	ErrForbidden = errors.New("forbidden")

	// ErrModerationRejected means the moderation collaborator declined
	// the request content.
	ErrModerationRejected = errors.New("rejected by moderation")

	// ErrConflict means an optimistic-concurrency write lost a race. The
	// core never retries internally; the caller decides whether to.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInviteExhausted means the invitation's usage limit was reached.
	ErrInviteExhausted = errors.New("invitation exhausted")

	// ErrInvalidArgument means the request itself is malformed: empty
	// topic, unknown kind, scheduled time in the past.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateCode is returned by invitation stores when a freshly
	// minted code collides with an existing active one.
	ErrDuplicateCode = errors.New("invite code already exists")
)
