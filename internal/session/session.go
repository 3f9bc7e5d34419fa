// Package session holds the per-login state of a client: the resolved
// profile, the sommelier transcript and the live cellar subscriptions.
//
// A Session starts without a profile and gains one exactly once through
// Resolve. Closing it cancels every registered subscription and drops the
// transcript, which exists only in memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

var (
	ErrAlreadyResolved = errors.New("session: profile already resolved")
	ErrClosed          = errors.New("session: closed")
	ErrNoProfile       = errors.New("session: profile has no user id")
)

// Session is safe for concurrent use.
type Session struct {
	id string

	mu         sync.Mutex
	profile    *domain.Profile
	transcript []domain.ChatMessage
	subs       map[uint64]func()
	nextSub    uint64
	closed     bool
	lastSeen   time.Time
	now        func() time.Time
}

// New returns an unresolved session on the wall clock.
func New(id string) *Session {
	return newSession(id, time.Now)
}

func newSession(id string, now func() time.Time) *Session {
	return &Session{id: id, subs: map[uint64]func(){}, lastSeen: now(), now: now}
}

func (s *Session) ID() string { return s.id }

// Resolve records the user's profile. It succeeds only on the first call.
func (s *Session) Resolve(p domain.Profile) error {
	if p.UserID == "" {
		return ErrNoProfile
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.profile != nil {
		return ErrAlreadyResolved
	}
	cp := p
	s.profile = &cp
	return nil
}

// Profile returns the resolved profile, if any.
func (s *Session) Profile() (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return domain.Profile{}, false
	}
	return *s.profile, true
}

// UserID returns the resolved user id, or "" while unresolved.
func (s *Session) UserID() string {
	p, _ := s.Profile()
	return p.UserID
}

// Track registers cancel to be called when the session closes. The returned
// release func unregisters it; call it when the subscription ends on its
// own. Tracking on a closed session fails with ErrClosed.
func (s *Session) Track(cancel func()) (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = cancel
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.lastSeen = s.now()
			s.mu.Unlock()
		})
	}, nil
}

// Subscriptions reports how many tracked subscriptions are open.
func (s *Session) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Append adds turns to the transcript.
func (s *Session) Append(msgs ...domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.transcript = append(s.transcript, msgs...)
	return nil
}

// History returns a copy of the transcript in order.
func (s *Session) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// idleSince reports when the session was last active and whether it still
// has open subscriptions.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen, len(s.subs) > 0
}

// Close cancels all subscriptions and discards the transcript. Later calls
// do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancels := make([]func(), 0, len(s.subs))
	for _, c := range s.subs {
		cancels = append(cancels, c)
	}
	s.subs = map[uint64]func(){}
	s.transcript = nil
	s.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
