// internal/app/system/media/media.go

// Package media provides a stand-in for the real-time media
// collaborator. The production provisioner (channel tokens for the
// audio service) lives outside this service; Static keeps live-audio
// sessions functional in deployments without one.
package media

import (
	"context"
	"fmt"
	"time"
)

// Static issues non-cryptographic placeholder channel tokens with a
// fixed validity window encoded for the client's benefit.
type Static struct {
	TTL time.Duration
}

// ChannelToken returns a placeholder token for the channel and role.
func (s Static) ChannelToken(_ context.Context, channel, role string) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return fmt.Sprintf("static:%s:%s:%d", channel, role, time.Now().UTC().Add(ttl).Unix()), nil
}
