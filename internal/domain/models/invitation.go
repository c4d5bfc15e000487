// internal/domain/models/invitation.go
package models

import "time"

// Invitation is a shareable, usage-limited join capability for a session.
// The code is matched case-insensitively via CodeCI (folded form).
type Invitation struct {
	ID string `bson:"_id" json:"id"`

	Code   string `bson:"code" json:"code"`
	CodeCI string `bson:"code_ci" json:"-"`

	SessionID string `bson:"session_id" json:"sessionId"`
	CreatedBy string `bson:"created_by" json:"createdBy"`

	// MaxUses is nil for unlimited invitations.
	MaxUses   *int `bson:"max_uses,omitempty" json:"maxUses,omitempty"`
	UsedCount int  `bson:"used_count" json:"usedCount"`

	ExpiresAt        time.Time `bson:"expires_at" json:"expiresAt"`
	RequiresApproval bool      `bson:"requires_approval" json:"requiresApproval"`

	// IsActive is a terminal deactivation switch independent of expiry.
	IsActive bool `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Exhausted reports whether the usage limit has been reached.
func (i *Invitation) Exhausted() bool {
	return i.MaxUses != nil && i.UsedCount >= *i.MaxUses
}

// Usable reports whether the invitation can still admit a joiner at now.
func (i *Invitation) Usable(now time.Time) bool {
	return i.IsActive && !i.Exhausted() && now.Before(i.ExpiresAt)
}
