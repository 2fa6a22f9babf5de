package service

import (
	"sync"
	"time"

	"mba-counselor/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session owns one conversation's state: append-only history and the
// accumulated preference set. The mutex serializes turns so a second
// message on the same session waits for the first instead of
// interleaving preference merges; it also guards LastActive against the
// expiry sweeper.
type Session struct {
	ID          uuid.UUID
	History     []models.ConversationTurn
	Preferences models.PreferenceSet
	CreatedAt   time.Time
	LastActive  time.Time

	mu sync.Mutex
}

// Lock acquires the per-session turn lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Fresh reports whether the session has no recorded turns yet.
func (s *Session) Fresh() bool { return len(s.History) == 0 }

// SessionStore is the explicit session registry: session id -> owned
// state, with create-on-first-message, clear-on-reset and optional TTL
// expiry. Sessions are independent; no session can reach another's state.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	logger   *zap.Logger
	done     chan struct{}
}

func NewSessionStore(ttl time.Duration, logger *zap.Logger) *SessionStore {
	store := &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		logger:   logger,
		done:     make(chan struct{}),
	}
	if ttl > 0 {
		go store.sweep()
	}
	return store
}

// Create registers a new session.
func (s *SessionStore) Create() *Session {
	now := time.Now()
	session := &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		LastActive: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("Session created", zap.String("session_id", session.ID.String()))
	return session
}

// Get returns the session for id, or ErrInvalidSession. Unknown ids are
// never silently promoted to new sessions. Read-only: activity is
// recorded by the turns themselves, so looking a session up cannot keep
// it alive past its TTL.
func (s *SessionStore) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, models.ErrInvalidSession
	}
	return session, nil
}

// Reset clears a session back to the Fresh state: history gone,
// preference set gone entirely. Idempotent for a known session.
func (s *SessionStore) Reset(id uuid.UUID) error {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return models.ErrInvalidSession
	}

	session.Lock()
	session.History = nil
	session.Preferences = models.PreferenceSet{}
	session.LastActive = time.Now()
	session.Unlock()

	s.logger.Info("Session reset", zap.String("session_id", id.String()))
	return nil
}

// Close stops the expiry sweeper.
func (s *SessionStore) Close() {
	close(s.done)
}

func (s *SessionStore) sweep() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)

			s.mu.RLock()
			candidates := make([]*Session, 0, len(s.sessions))
			for _, session := range s.sessions {
				candidates = append(candidates, session)
			}
			s.mu.RUnlock()

			// LastActive is guarded by the session mutex, so a session
			// with a turn in flight is never judged mid-pipeline.
			for _, session := range candidates {
				session.mu.Lock()
				expired := session.LastActive.Before(cutoff)
				session.mu.Unlock()
				if !expired {
					continue
				}

				s.mu.Lock()
				delete(s.sessions, session.ID)
				s.mu.Unlock()
				s.logger.Info("Session expired", zap.String("session_id", session.ID.String()))
			}
		}
	}
}
