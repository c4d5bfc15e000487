// internal/app/lifecycle/manager.go

// Package lifecycle is the session lifecycle state machine: it carries a
// sanctuary session from scheduled through active to ended, admits and
// releases participants under the capacity/expiry guard, spawns breakout
// rooms, and honors invitations and host recovery tokens.
//
// Every mutation is a load, a pure policy decision, a mutation of the
// copy, and one versioned conditional write. A lost write race surfaces
// as ErrConflict and is never retried here. Collaborator side effects
// (media tokens, notifications) run only after the write commits.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/policy/sessionpolicy"
	"github.com/havenlabs/haven/internal/app/system/sanitize"
	"github.com/havenlabs/haven/internal/app/system/tokens"
	"github.com/havenlabs/haven/internal/domain/models"
)

// Policy holds the tunable thresholds of the state machine. The lead
// times were inconsistent magic numbers in earlier route code; they are
// configuration here.
type Policy struct {
	// ConvertLeadTime is how far before a scheduled start a join attempt
	// may auto-convert the session to live without being the host.
	ConvertLeadTime time.Duration

	// DefaultSessionTTL bounds a session's life from activation when the
	// creator gives no duration.
	DefaultSessionTTL time.Duration

	// BreakoutTTL bounds a breakout room's life from creation.
	BreakoutTTL time.Duration

	// InviteTTL bounds an invitation's life when the host gives none.
	InviteTTL time.Duration

	// InviteCodeLength is the minted code length.
	InviteCodeLength int

	// DefaultMaxParticipants applies when the creator gives no ceiling;
	// MaxParticipantsCap clamps what a creator may ask for.
	DefaultMaxParticipants int
	MaxParticipantsCap     int

	// MaxAliasLen caps display names.
	MaxAliasLen int
}

// withDefaults fills zero fields with production defaults.
func (p Policy) withDefaults() Policy {
	if p.ConvertLeadTime <= 0 {
		p.ConvertLeadTime = time.Minute
	}
	if p.DefaultSessionTTL <= 0 {
		p.DefaultSessionTTL = 2 * time.Hour
	}
	if p.BreakoutTTL <= 0 {
		p.BreakoutTTL = time.Hour
	}
	if p.InviteTTL <= 0 {
		p.InviteTTL = 24 * time.Hour
	}
	if p.InviteCodeLength <= 0 {
		p.InviteCodeLength = tokens.DefaultCodeLength
	}
	if p.DefaultMaxParticipants <= 0 {
		p.DefaultMaxParticipants = 50
	}
	if p.MaxParticipantsCap <= 0 {
		p.MaxParticipantsCap = 200
	}
	if p.MaxAliasLen <= 0 {
		p.MaxAliasLen = 64
	}
	return p
}

// Deps bundles the manager's collaborators.
type Deps struct {
	Sessions  SessionStore
	Rooms     BreakoutStore
	Invites   InvitationStore
	Moderator Moderator
	Notifier  Notifier
	Media     MediaProvider
	Policy    Policy
	Logger    *zap.Logger

	// Now overrides the clock in tests; nil means time.Now.
	Now func() time.Time
}

// Manager is the lifecycle state machine. It holds no authoritative
// in-process session state; the record store is the single source of
// truth and capacity/expiry are re-validated against it at the moment
// of every mutation.
type Manager struct {
	sessions  SessionStore
	rooms     BreakoutStore
	invites   InvitationStore
	moderator Moderator
	notifier  Notifier
	media     MediaProvider
	policy    Policy
	log       *zap.Logger
	now       func() time.Time
}

// NewManager constructs a Manager. Sessions, Rooms, and Invites are
// required; nil collaborators fall back to no-op implementations.
func NewManager(deps Deps) *Manager {
	m := &Manager{
		sessions:  deps.Sessions,
		rooms:     deps.Rooms,
		invites:   deps.Invites,
		moderator: deps.Moderator,
		notifier:  deps.Notifier,
		media:     deps.Media,
		policy:    deps.Policy.withDefaults(),
		log:       deps.Logger,
		now:       deps.Now,
	}
	if m.moderator == nil {
		m.moderator = allowAll{}
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.media == nil {
		m.media = noMedia{}
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Policy returns the effective policy after defaulting.
func (m *Manager) Policy() Policy { return m.policy }

type allowAll struct{}

func (allowAll) ReviewJoin(context.Context, string, string, string) (bool, error) {
	return true, nil
}
func (allowAll) ReviewSubmission(context.Context, string, string, string) (bool, error) {
	return true, nil
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

type noMedia struct{}

func (noMedia) ChannelToken(context.Context, string, string) (string, error) {
	return PlaceholderMediaToken, nil
}

// CreateSpec describes a session to create. ScheduledAt nil means
// instant creation in the active state.
type CreateSpec struct {
	Kind        models.SessionKind
	Topic       string
	Description string

	HostID        string
	HostAlias     string
	HostAnonymous bool

	ScheduledAt *time.Time
	Duration    time.Duration

	MaxParticipants   int
	AllowAnonymous    bool
	ModerationEnabled bool
}

// CreateResult carries the new session plus the one-time credentials
// minted for it.
type CreateResult struct {
	Session models.Session

	// HostToken is the plain recovery token, present only for anonymous
	// hosts. It is never shown again.
	HostToken string

	// MediaToken is set for instantly-live live-audio sessions.
	MediaToken string
}

// CreateSession validates the spec and produces a new session with the
// creator auto-admitted as the sole host participant.
func (m *Manager) CreateSession(ctx context.Context, spec CreateSpec) (CreateResult, error) {
	now := m.now().UTC()

	if !spec.Kind.Valid() {
		return CreateResult{}, fmt.Errorf("%w: unknown session kind %q", ErrInvalidArgument, spec.Kind)
	}
	topic := sanitize.Text(spec.Topic)
	if topic == "" {
		return CreateResult{}, fmt.Errorf("%w: topic is required", ErrInvalidArgument)
	}
	if spec.HostID == "" {
		return CreateResult{}, fmt.Errorf("%w: host id is required", ErrInvalidArgument)
	}
	if spec.ScheduledAt != nil && !spec.ScheduledAt.After(now) {
		return CreateResult{}, fmt.Errorf("%w: scheduled time must be in the future", ErrInvalidArgument)
	}

	ttl := spec.Duration
	if ttl <= 0 {
		ttl = m.policy.DefaultSessionTTL
	}
	maxP := spec.MaxParticipants
	if maxP <= 0 {
		maxP = m.policy.DefaultMaxParticipants
	}
	if maxP > m.policy.MaxParticipantsCap {
		maxP = m.policy.MaxParticipantsCap
	}

	alias := sanitize.Alias(spec.HostAlias, m.policy.MaxAliasLen)
	if alias == "" {
		alias = "Host"
	}

	s := models.Session{
		ID:                uuid.NewString(),
		Kind:              spec.Kind,
		Topic:             topic,
		Description:       sanitize.Text(spec.Description),
		HostID:            spec.HostID,
		HostAlias:         alias,
		CreatedAt:         now,
		MaxParticipants:   maxP,
		AllowAnonymous:    spec.AllowAnonymous,
		ModerationEnabled: spec.ModerationEnabled,
		Participants: []models.Participant{{
			ID:          spec.HostID,
			Alias:       alias,
			IsHost:      true,
			IsModerator: true,
			JoinedAt:    now,
		}},
	}

	var res CreateResult
	if spec.HostAnonymous {
		token := tokens.MintHostToken()
		hash, err := tokens.HashToken(token)
		if err != nil {
			return CreateResult{}, fmt.Errorf("hash host token: %w", err)
		}
		s.HostTokenHash = hash
		res.HostToken = token
	}

	if spec.ScheduledAt != nil {
		at := spec.ScheduledAt.UTC()
		s.Status = models.StatusScheduled
		s.ScheduledAt = &at
		s.ExpiresAt = at.Add(ttl)
	} else {
		s.Status = models.StatusActive
		s.StartedAt = &now
		s.ExpiresAt = now.Add(ttl)
	}

	if err := m.sessions.Create(ctx, s); err != nil {
		return CreateResult{}, fmt.Errorf("create session: %w", err)
	}

	res.Session = s
	if s.Status == models.StatusActive && s.Kind == models.KindLiveAudio {
		res.MediaToken = m.channelToken(ctx, s.ID, "host")
	}
	m.notifier.Publish(Event{Type: EventCreated, SessionID: s.ID, ParticipantID: s.HostID, Alias: alias, At: now})
	m.log.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("kind", string(s.Kind)),
		zap.String("status", string(s.Status)))
	return res, nil
}

// GetSession returns a read view of the session with lazy expiry
// applied: an overdue session reads as ended even if no write has
// reconciled the flag yet. Reconciliation is attempted best-effort.
func (m *Manager) GetSession(ctx context.Context, id string) (models.Session, error) {
	s, err := m.sessions.Get(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	now := m.now().UTC()
	if s.Status != models.StatusEnded && sessionpolicy.IsExpired(&s, now) {
		reconciled := s
		reconciled.Status = models.StatusEnded
		at := s.ExpiresAt
		reconciled.EndedAt = &at
		if updated, uerr := m.sessions.Update(ctx, reconciled); uerr == nil {
			return updated, nil
		}
		// A concurrent writer got there first; the view is still ended.
		return reconciled, nil
	}
	return s, nil
}

// EffectiveStatus reports the derived read status of a session.
func (m *Manager) EffectiveStatus(s *models.Session) sessionpolicy.EffectiveStatus {
	return sessionpolicy.StatusAt(s, m.now().UTC())
}

// ListActiveSessions returns live, unexpired sessions.
func (m *Manager) ListActiveSessions(ctx context.Context, limit int64) ([]models.Session, error) {
	return m.sessions.ListActive(ctx, m.now().UTC(), limit)
}

// ConvertToLive turns a scheduled session into a live one. The host may
// convert at any time before expiry; anyone else only within the
// configured lead window of the scheduled start, which models
// join-triggered conversion. Conversion spawns a separate live record
// and leaves a forward pointer on the scheduled one, making repeat
// calls idempotent: they return the existing live session.
func (m *Manager) ConvertToLive(ctx context.Context, sessionID, requesterID string) (models.Session, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	now := m.now().UTC()

	if s.LiveSessionID != "" {
		return m.followLivePointer(ctx, s)
	}
	if s.Status == models.StatusActive {
		return s, nil
	}
	if s.Status == models.StatusEnded {
		return models.Session{}, fmt.Errorf("%w: session has ended", ErrInvalidState)
	}
	if sessionpolicy.IsExpired(&s, now) {
		return models.Session{}, fmt.Errorf("%w: scheduled session expired unconverted", ErrExpired)
	}
	if requesterID != s.HostID && !m.withinConvertWindow(&s, now) {
		return models.Session{}, fmt.Errorf("%w: only the host may start this early", ErrForbidden)
	}

	live := m.liveRecordFrom(s, uuid.NewString(), now)

	// Claim the forward pointer first: the versioned write arbitrates
	// duplicate conversions, and losers follow the winner's pointer.
	claimed := s
	claimed.LiveSessionID = live.ID
	if _, err := m.sessions.Update(ctx, claimed); err != nil {
		if errors.Is(err, ErrConflict) {
			fresh, gerr := m.sessions.Get(ctx, sessionID)
			if gerr == nil && fresh.LiveSessionID != "" {
				return m.followLivePointer(ctx, fresh)
			}
			return models.Session{}, ErrConflict
		}
		return models.Session{}, fmt.Errorf("claim conversion: %w", err)
	}

	if err := m.sessions.Create(ctx, live); err != nil {
		return models.Session{}, fmt.Errorf("create live session: %w", err)
	}

	m.notifier.Publish(Event{Type: EventConverted, SessionID: live.ID, At: now})
	m.log.Info("session converted to live",
		zap.String("scheduled_id", sessionID),
		zap.String("live_id", live.ID))
	return live, nil
}

// liveRecordFrom derives the live record a conversion creates from a
// scheduled snapshot. The planned duration is preserved when one was
// given; otherwise the default TTL applies from activation.
func (m *Manager) liveRecordFrom(s models.Session, liveID string, now time.Time) models.Session {
	live := s
	live.ID = liveID
	live.Version = 0
	live.Status = models.StatusActive
	live.StartedAt = &now
	live.ExpiresAt = now.Add(m.policy.DefaultSessionTTL)
	live.LiveSessionID = ""
	if s.ScheduledAt != nil {
		live.ExpiresAt = now.Add(s.ExpiresAt.Sub(*s.ScheduledAt))
	}
	return live
}

// followLivePointer returns the live session a scheduled record points
// at. A claimed pointer with no record behind it means a converter died
// between the claim and the create; the live record is rebuilt from the
// scheduled snapshot under the claimed id, so a dangling pointer heals
// on the next convert or join instead of rejecting forever.
func (m *Manager) followLivePointer(ctx context.Context, scheduled models.Session) (models.Session, error) {
	live, err := m.sessions.Get(ctx, scheduled.LiveSessionID)
	if err == nil {
		return live, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Session{}, err
	}

	now := m.now().UTC()
	rebuilt := m.liveRecordFrom(scheduled, scheduled.LiveSessionID, now)
	if cerr := m.sessions.Create(ctx, rebuilt); cerr != nil {
		// A concurrent caller may have rebuilt it between the read and
		// the insert; trust the stored copy when one appeared.
		if live, gerr := m.sessions.Get(ctx, scheduled.LiveSessionID); gerr == nil {
			return live, nil
		}
		return models.Session{}, fmt.Errorf("rebuild live session: %w", cerr)
	}

	m.notifier.Publish(Event{Type: EventConverted, SessionID: rebuilt.ID, At: now})
	m.log.Warn("rebuilt live session behind dangling pointer",
		zap.String("scheduled_id", scheduled.ID),
		zap.String("live_id", rebuilt.ID))
	return rebuilt, nil
}

func (m *Manager) withinConvertWindow(s *models.Session, now time.Time) bool {
	if s.ScheduledAt == nil {
		return false
	}
	return !now.Before(s.ScheduledAt.Add(-m.policy.ConvertLeadTime))
}

// JoinRequest identifies a joiner. Anonymous is set when the identity
// collaborator minted the id rather than authenticating it.
type JoinRequest struct {
	ParticipantID string
	Alias         string
	Anonymous     bool

	// requiresApproval is set on joins that consumed an invitation whose
	// creator asked for approval; it forces a moderation review.
	requiresApproval bool
}

// JoinResult carries the post-join snapshot, the joiner's roster record,
// and a media token for live-audio sessions.
type JoinResult struct {
	Session     models.Session
	Participant models.Participant
	MediaToken  string
}

// Join admits a participant to a session. Joining a scheduled session
// within the convert lead window converts it first. Rejoining while
// still active is a no-op returning the existing record; rejoining
// after departure reclaims a seat under the capacity guard.
func (m *Manager) Join(ctx context.Context, sessionID string, req JoinRequest) (JoinResult, error) {
	if req.ParticipantID == "" {
		return JoinResult{}, fmt.Errorf("%w: participant id is required", ErrInvalidArgument)
	}

	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return JoinResult{}, err
	}
	now := m.now().UTC()

	// Lazy conversion: a join against a scheduled session close enough
	// to its start time is what flips it live.
	if s.Status == models.StatusScheduled {
		if s.LiveSessionID == "" && !m.withinConvertWindow(&s, now) {
			return JoinResult{}, fmt.Errorf("%w: session has not started", ErrInvalidState)
		}
		live, cerr := m.ConvertToLive(ctx, sessionID, req.ParticipantID)
		if cerr != nil {
			return JoinResult{}, cerr
		}
		s = live
	}

	if req.Anonymous && !s.AllowAnonymous {
		return JoinResult{}, fmt.Errorf("%w: anonymous joins are not allowed", ErrForbidden)
	}

	existing := s.Participant(req.ParticipantID)
	if existing != nil && existing.Active() {
		// Reconnect tolerance: same participant, same seat.
		return JoinResult{
			Session:     s,
			Participant: *existing,
			MediaToken:  m.mediaTokenFor(ctx, &s, existing),
		}, nil
	}

	alias := sanitize.Alias(req.Alias, m.policy.MaxAliasLen)
	if alias == "" {
		alias = "Guest"
	}

	if s.ModerationEnabled || req.requiresApproval {
		ok, merr := m.moderator.ReviewJoin(ctx, s.ID, req.ParticipantID, alias)
		if merr != nil {
			m.log.Warn("moderation review failed, admitting",
				zap.String("session_id", s.ID), zap.Error(merr))
		} else if !ok {
			return JoinResult{}, ErrModerationRejected
		}
	}

	if v := sessionpolicy.CanAdmit(&s, now); v != sessionpolicy.Admit {
		return JoinResult{}, admissionError(v)
	}

	var joined models.Participant
	if existing != nil {
		// Reactivate the departed record in place.
		existing.LeftAt = nil
		existing.JoinedAt = now
		existing.Alias = alias
		joined = *existing
	} else {
		joined = models.Participant{
			ID:       req.ParticipantID,
			Alias:    alias,
			JoinedAt: now,
		}
		s.Participants = append(s.Participants, joined)
	}

	updated, err := m.sessions.Update(ctx, s)
	if err != nil {
		return JoinResult{}, err
	}

	m.notifier.Publish(Event{Type: EventJoined, SessionID: s.ID, ParticipantID: joined.ID, Alias: alias, At: now})
	return JoinResult{
		Session:     updated,
		Participant: joined,
		MediaToken:  m.mediaTokenFor(ctx, &updated, &joined),
	}, nil
}

// Leave records a participant's departure. A departing host hands the
// session to the earliest-joined active moderator; with no successor the
// session ends rather than stranding a hostless room. Leaving an ended
// session or leaving twice is a no-op.
func (m *Manager) Leave(ctx context.Context, sessionID, participantID string) (models.Session, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if s.Status == models.StatusEnded {
		return s, nil
	}

	p := s.Participant(participantID)
	if p == nil {
		return models.Session{}, fmt.Errorf("%w: participant %s", ErrNotFound, participantID)
	}
	if !p.Active() {
		return s, nil
	}

	now := m.now().UTC()
	p.LeftAt = &now

	hostChanged := ""
	if p.IsHost {
		p.IsHost = false
		if successor := models.PromoteSuccessor(s.Participants, participantID); successor != nil {
			successor.IsHost = true
			s.HostID = successor.ID
			s.HostAlias = successor.Alias
			hostChanged = successor.ID
		} else {
			s.Status = models.StatusEnded
			s.EndedAt = &now
		}
	}

	updated, err := m.sessions.Update(ctx, s)
	if err != nil {
		return models.Session{}, err
	}

	m.notifier.Publish(Event{Type: EventLeft, SessionID: s.ID, ParticipantID: participantID, At: now})
	if hostChanged != "" {
		m.notifier.Publish(Event{Type: EventHostChanged, SessionID: s.ID, ParticipantID: hostChanged, At: now})
	}
	if updated.Status == models.StatusEnded {
		m.notifier.Publish(Event{Type: EventEnded, SessionID: s.ID, At: now})
	}
	return updated, nil
}

// EndSession forces the session to ended. Legal for the host or a caller
// holding the administrative capability, regardless of roster size.
// Ending an already-ended session is a no-op.
func (m *Manager) EndSession(ctx context.Context, sessionID, requesterID string, admin bool) (models.Session, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if s.Status == models.StatusEnded {
		return s, nil
	}
	if !admin && requesterID != s.HostID {
		return models.Session{}, fmt.Errorf("%w: only the host may end the session", ErrForbidden)
	}

	now := m.now().UTC()
	s.Status = models.StatusEnded
	s.EndedAt = &now

	updated, err := m.sessions.Update(ctx, s)
	if err != nil {
		return models.Session{}, err
	}
	m.notifier.Publish(Event{Type: EventEnded, SessionID: s.ID, At: now})
	m.log.Info("session ended", zap.String("session_id", s.ID), zap.Bool("by_admin", admin))
	return updated, nil
}

// Submit appends an anonymous submission to an anonymous-inbox session.
// Submissions are unbounded: the capacity clause does not apply.
func (m *Manager) Submit(ctx context.Context, sessionID, alias, message string) (models.Submission, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Submission{}, err
	}
	if s.Kind != models.KindAnonymousInbox {
		return models.Submission{}, fmt.Errorf("%w: session does not accept submissions", ErrInvalidState)
	}

	now := m.now().UTC()
	if v := sessionpolicy.CanSubmit(&s, now); v != sessionpolicy.Admit {
		return models.Submission{}, admissionError(v)
	}

	msg := sanitize.Text(message)
	if msg == "" {
		return models.Submission{}, fmt.Errorf("%w: message is required", ErrInvalidArgument)
	}
	a := sanitize.Alias(alias, m.policy.MaxAliasLen)
	if a == "" {
		a = "Anonymous"
	}

	if s.ModerationEnabled {
		ok, merr := m.moderator.ReviewSubmission(ctx, s.ID, a, msg)
		if merr != nil {
			m.log.Warn("moderation review failed, accepting submission",
				zap.String("session_id", s.ID), zap.Error(merr))
		} else if !ok {
			return models.Submission{}, ErrModerationRejected
		}
	}

	sub := models.Submission{Alias: a, Message: msg, Timestamp: now}
	s.Submissions = append(s.Submissions, sub)

	if _, err := m.sessions.Update(ctx, s); err != nil {
		return models.Submission{}, err
	}
	m.notifier.Publish(Event{Type: EventSubmission, SessionID: s.ID, Alias: a, At: now})
	return sub, nil
}

// SetParticipantState mutates in-session UI state (mute, raised hand).
// Participants manage their own state; the host or a moderator may also
// mute or unmute others.
func (m *Manager) SetParticipantState(ctx context.Context, sessionID, requesterID, targetID string, muted, handRaised *bool) (models.Participant, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Participant{}, err
	}
	if s.Status != models.StatusActive {
		return models.Participant{}, fmt.Errorf("%w: session is not active", ErrInvalidState)
	}

	target := s.Participant(targetID)
	if target == nil || !target.Active() {
		return models.Participant{}, fmt.Errorf("%w: participant %s", ErrNotFound, targetID)
	}
	if requesterID != targetID {
		requester := s.Participant(requesterID)
		if requester == nil || !requester.Active() || !requester.IsModerator {
			return models.Participant{}, fmt.Errorf("%w: cannot change another participant's state", ErrForbidden)
		}
		// Moderators control mute only; a raised hand stays personal.
		handRaised = nil
	}

	if muted != nil {
		target.IsMuted = *muted
	}
	if handRaised != nil {
		target.HandRaised = *handRaised
	}

	if _, err := m.sessions.Update(ctx, s); err != nil {
		return models.Participant{}, err
	}
	return *target, nil
}

// SetModerator grants or revokes a participant's moderator standing.
// Host only. Moderators may mute others, and a moderator is the only
// legal successor when the host departs, so designating one is how a
// host arranges failover before leaving.
func (m *Manager) SetModerator(ctx context.Context, sessionID, requesterID, targetID string, moderator bool) (models.Participant, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Participant{}, err
	}
	if s.Status != models.StatusActive {
		return models.Participant{}, fmt.Errorf("%w: session is not active", ErrInvalidState)
	}
	if requesterID != s.HostID {
		return models.Participant{}, fmt.Errorf("%w: only the host may designate moderators", ErrForbidden)
	}
	if targetID == s.HostID {
		return models.Participant{}, fmt.Errorf("%w: the host already moderates", ErrInvalidArgument)
	}

	target := s.Participant(targetID)
	if target == nil || !target.Active() {
		return models.Participant{}, fmt.Errorf("%w: participant %s", ErrNotFound, targetID)
	}
	target.IsModerator = moderator

	if _, err := m.sessions.Update(ctx, s); err != nil {
		return models.Participant{}, err
	}
	m.log.Info("moderator standing changed",
		zap.String("session_id", s.ID),
		zap.String("participant_id", targetID),
		zap.Bool("moderator", moderator))
	return *target, nil
}

// RecoverHost validates a presented host token against the stored hash
// and returns the session on match, restoring control to an anonymous
// host without a persistent identity.
func (m *Manager) RecoverHost(ctx context.Context, sessionID, token string) (models.Session, error) {
	s, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if s.HostTokenHash == "" || token == "" {
		return models.Session{}, fmt.Errorf("%w: no recovery token for this session", ErrForbidden)
	}
	if err := tokens.CompareToken(s.HostTokenHash, token); err != nil {
		return models.Session{}, fmt.Errorf("%w: recovery token mismatch", ErrForbidden)
	}
	return s, nil
}

func (m *Manager) mediaTokenFor(ctx context.Context, s *models.Session, p *models.Participant) string {
	if s.Kind != models.KindLiveAudio {
		return ""
	}
	role := "participant"
	if p.IsHost {
		role = "host"
	}
	return m.channelToken(ctx, s.ID, role)
}

func (m *Manager) channelToken(ctx context.Context, channel, role string) string {
	token, err := m.media.ChannelToken(ctx, channel, role)
	if err != nil {
		m.log.Warn("media token request failed, degrading to placeholder",
			zap.String("channel", channel), zap.Error(err))
		return PlaceholderMediaToken
	}
	return token
}

func admissionError(v sessionpolicy.Verdict) error {
	switch v {
	case sessionpolicy.DenyNotActive:
		return fmt.Errorf("%w: session is not active", ErrInvalidState)
	case sessionpolicy.DenyExpired:
		return ErrExpired
	case sessionpolicy.DenyFull:
		return ErrFull
	}
	return nil
}
