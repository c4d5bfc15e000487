// internal/app/system/notify/hub.go

// Package notify fans committed lifecycle transitions out to
// subscribers. The hub is strictly advisory: publishing never blocks a
// lifecycle write, and a slow or dead subscriber is dropped rather than
// backing up the core.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
)

// subscriberBuffer is how many undelivered events a subscriber may lag
// before being dropped.
const subscriberBuffer = 32

// Hub distributes events to per-session subscribers. It implements
// lifecycle.Notifier.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan lifecycle.Event]struct{} // sessionID -> subscribers
	log  *zap.Logger
}

// NewHub creates an event hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[chan lifecycle.Event]struct{}),
		log:  logger,
	}
}

// Subscribe registers interest in a session's events. The returned
// cancel func must be called when the subscriber goes away.
func (h *Hub) Subscribe(sessionID string) (<-chan lifecycle.Event, func()) {
	ch := make(chan lifecycle.Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan lifecycle.Event]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[sessionID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
				if len(set) == 0 {
					delete(h.subs, sessionID)
				}
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to the session's subscribers.
// Fire-and-forget: full subscriber buffers lose the event.
func (h *Hub) Publish(ev lifecycle.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			h.log.Warn("dropping event for slow subscriber",
				zap.String("session_id", ev.SessionID),
				zap.String("type", string(ev.Type)))
		}
	}
}

// SubscriberCount reports the live subscribers for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Fanout composes notifiers so events reach the hub and the log (or any
// other sink) in one Publish.
type Fanout []lifecycle.Notifier

func (f Fanout) Publish(ev lifecycle.Event) {
	for _, n := range f {
		n.Publish(ev)
	}
}

// Log is a notifier that records transitions in the service log.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Publish(ev lifecycle.Event) {
	l.Logger.Info("session event",
		zap.String("type", string(ev.Type)),
		zap.String("session_id", ev.SessionID),
		zap.String("room_id", ev.RoomID),
		zap.String("participant_id", ev.ParticipantID))
}
