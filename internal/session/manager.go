package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("session: not found")
	ErrUserMismatch = errors.New("session: id belongs to another user")
	ErrRevoked      = errors.New("session: signed out")
)

// Manager keeps live sessions keyed by id. Sessions without open
// subscriptions that have been idle for the TTL are closed and evicted.
//
// Closed ids stay revoked for one TTL, the lifetime of the token that
// carries them, so a signed-out token cannot re-attach.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	revoked  map[string]time.Time // id -> revocation expiry
	ttl      time.Duration
	now      func() time.Time
	cleanupN uint64
}

// NewManager builds a manager; ttl <= 0 defaults to 12h. ttl should match
// the session token lifetime.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		sessions: map[string]*Session{},
		revoked:  map[string]time.Time{},
		ttl:      ttl,
		now:      time.Now,
	}
}

// clock defers to m.now so tests can swap it after sessions exist.
func (m *Manager) clock() time.Time { return m.now() }

// Open creates a session for an already resolved profile.
func (m *Manager) Open(p domain.Profile) (*Session, error) {
	s := newSession(uuid.NewString(), m.clock)
	if err := s.Resolve(p); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a live session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	var evicted []*Session
	m.mu.Lock()
	m.cleanupN++
	if m.cleanupN >= 1000 {
		m.cleanupN = 0
		evicted = m.sweepLocked()
	}
	s, ok := m.sessions[id]
	m.mu.Unlock()
	closeAll(evicted)
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch()
	return s, nil
}

// Attach returns the session for id, re-creating it for p when this process
// does not know it (e.g. after a restart with a still-valid session token).
// The transcript of a re-created session starts empty. Ids closed through
// Close fail with ErrRevoked.
func (m *Manager) Attach(id string, p domain.Profile) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokedLocked(id) {
		return nil, ErrRevoked
	}
	if s, ok := m.sessions[id]; ok {
		if s.UserID() != p.UserID {
			return nil, ErrUserMismatch
		}
		if s.Closed() {
			return nil, ErrClosed
		}
		s.Touch()
		return s, nil
	}
	s := newSession(id, m.clock)
	if err := s.Resolve(p); err != nil {
		return nil, err
	}
	m.sessions[id] = s
	return s, nil
}

// Close ends and forgets a session and revokes its id. It reports whether
// the session was live.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.revoked[id] = m.now().Add(m.ttl)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// Revoked reports whether id was closed and may not attach again.
func (m *Manager) Revoked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revokedLocked(id)
}

func (m *Manager) revokedLocked(id string) bool {
	until, ok := m.revoked[id]
	return ok && m.now().Before(until)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts idle sessions and returns how many were closed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	evicted := m.sweepLocked()
	m.mu.Unlock()
	closeAll(evicted)
	return len(evicted)
}

// sweepLocked unlinks idle sessions; the caller closes them after
// releasing the lock.
func (m *Manager) sweepLocked() []*Session {
	now := m.now()
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
	var out []*Session
	for id, s := range m.sessions {
		last, busy := s.idleSince()
		if busy || now.Sub(last) < m.ttl {
			continue
		}
		delete(m.sessions, id)
		out = append(out, s)
	}
	return out
}

// Run sweeps every interval until ctx ends, then closes all sessions.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			all := make([]*Session, 0, len(m.sessions))
			for _, s := range m.sessions {
				all = append(all, s)
			}
			m.sessions = map[string]*Session{}
			m.mu.Unlock()
			closeAll(all)
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("idle sessions evicted")
			}
		}
	}
}

func closeAll(ss []*Session) {
	for _, s := range ss {
		s.Close()
	}
}
