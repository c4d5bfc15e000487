// internal/app/system/moderation/moderation.go

// Package moderation provides local adapters for the moderation
// collaborator. The real content scorer is an external service; these
// adapters cover deployments without one.
package moderation

import (
	"context"
	"strings"
)

// AllowAll approves everything. The default when no scorer is wired.
type AllowAll struct{}

func (AllowAll) ReviewJoin(context.Context, string, string, string) (bool, error) {
	return true, nil
}

func (AllowAll) ReviewSubmission(context.Context, string, string, string) (bool, error) {
	return true, nil
}

// Wordlist flags content containing any configured term. A cheap local
// backstop, not a substitute for a real scoring service.
type Wordlist struct {
	terms []string
}

// NewWordlist builds a Wordlist moderator; terms match
// case-insensitively as substrings.
func NewWordlist(terms []string) *Wordlist {
	folded := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			folded = append(folded, t)
		}
	}
	return &Wordlist{terms: folded}
}

func (w *Wordlist) ReviewJoin(_ context.Context, _, _, alias string) (bool, error) {
	return !w.flagged(alias), nil
}

func (w *Wordlist) ReviewSubmission(_ context.Context, _, alias, message string) (bool, error) {
	return !w.flagged(alias) && !w.flagged(message), nil
}

func (w *Wordlist) flagged(s string) bool {
	folded := strings.ToLower(s)
	for _, t := range w.terms {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}
