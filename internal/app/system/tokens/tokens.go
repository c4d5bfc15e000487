// internal/app/system/tokens/tokens.go

// Package tokens mints the opaque capabilities used by the session
// lifecycle: host recovery tokens and short shareable invite codes.
// Tokens are never derived from session or user identifiers.
package tokens

import (
	"encoding/hex"
	"errors"
	"math/big"

	"crypto/rand"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

const (
	// HostTokenBytes is the entropy of a host recovery token.
	// 32 bytes = 64 hex characters.
	HostTokenBytes = 32
	// DefaultCodeLength is the default invite code length.
	DefaultCodeLength = 8
	// BcryptCost for hashing host tokens at rest.
	BcryptCost = 10
)

// codeAlphabet omits 0/O/1/I/L to keep codes readable when shared aloud.
// Codes are matched case-insensitively.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ErrTokenMismatch is returned when a presented token does not match the
// stored hash.
var ErrTokenMismatch = errors.New("token mismatch")

// MintHostToken returns a new opaque recovery token. The caller stores
// only the hash; the plain token is shown once at creation.
func MintHostToken() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(HostTokenBytes))
}

// HashToken returns the bcrypt hash of a token for at-rest storage.
func HashToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CompareToken checks a presented token against a stored hash. The
// comparison cost is independent of where the inputs differ.
func CompareToken(hash, token string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return ErrTokenMismatch
	}
	return nil
}

// MintInviteCode returns a random human-shareable code of the given
// length (DefaultCodeLength when length <= 0). Uniqueness against
// existing active codes is the caller's responsibility; the store
// collision-checks before accepting a code.
func MintInviteCode(length int) string {
	if length <= 0 {
		length = DefaultCodeLength
	}
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failure means the process has no usable
			// entropy source; nothing sensible to mint.
			panic(err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}
