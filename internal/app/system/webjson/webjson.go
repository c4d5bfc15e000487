// internal/app/system/webjson/webjson.go

// Package webjson holds the JSON plumbing shared by feature handlers:
// encoding, request decoding with a size cap, and the mapping from
// lifecycle error kinds onto HTTP statuses.
package webjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
)

// maxBodyBytes caps request bodies; lifecycle payloads are small.
const maxBodyBytes = 64 << 10

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// BadRequest writes a 400 for malformed request bodies.
func BadRequest(w http.ResponseWriter, msg string) {
	Write(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "bad_request"})
}

// Error maps a lifecycle error onto its HTTP status. Unrecognized
// errors are store/infrastructure failures: logged and reported as 500
// without leaking detail.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	kind, status := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("unexpected failure", zap.Error(err))
		Write(w, status, errorResponse{Error: "internal error", Kind: kind})
		return
	}
	Write(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidArgument):
		return "invalid_argument", http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrInvalidState):
		return "invalid_state", http.StatusConflict
	case errors.Is(err, lifecycle.ErrExpired):
		return "expired", http.StatusGone
	case errors.Is(err, lifecycle.ErrInviteExhausted):
		return "invite_exhausted", http.StatusGone
	case errors.Is(err, lifecycle.ErrFull):
		return "full", http.StatusConflict
	case errors.Is(err, lifecycle.ErrForbidden):
		return "forbidden", http.StatusForbidden
	case errors.Is(err, lifecycle.ErrModerationRejected):
		return "moderation_rejected", http.StatusUnprocessableEntity
	case errors.Is(err, lifecycle.ErrConflict):
		// The caller retries; the race loser is not a server fault.
		return "conflict", http.StatusConflict
	}
	return "internal", http.StatusInternalServerError
}
