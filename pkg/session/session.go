// Package session keeps diagram controllers alive between HTTP requests.
//
// A [Session] wraps one [diagram.Controller] under a random UUID. Sessions
// expire after a period of inactivity; every successful Get extends the
// deadline. Expired sessions are dropped lazily on access and in bulk by
// [MemoryStore.Cleanup], which [MemoryStore.Run] calls on a ticker.
//
//	store := session.NewMemoryStore(30 * time.Minute)
//	go store.Run(ctx, time.Minute)
//
//	sess := session.New(diagram.New(opts))
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeSessionNotFound) {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/topoview/pkg/diagram"
	"github.com/matzehuels/topoview/pkg/errors"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")

	// ErrExpired is returned when a session outlived its idle TTL.
	ErrExpired = errors.New(errors.ErrCodeSessionNotFound, "session expired")
)

// Session is one diagram owned by an API client.
type Session struct {
	ID        string              `json:"id"`
	Diagram   *diagram.Controller `json:"-"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// New wraps d in a session with a fresh id. The expiry is set by the store.
func New(d *diagram.Controller) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Diagram:   d,
		CreatedAt: time.Now(),
	}
}

// IsExpired reports whether the session had expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) close() {
	if s.Diagram != nil {
		s.Diagram.Close()
	}
}

// Store is the session storage interface.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	Cleanup(ctx context.Context) (int, error)
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates a store. A non-positive ttl means DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session and extends its deadline.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidID, err, "session id %q", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if sess.IsExpired(now) {
		delete(s.sessions, id)
		sess.close()
		return nil, ErrExpired
	}
	sess.ExpiresAt = now.Add(s.ttl)
	return sess, nil
}

// Set stores sess, starting its idle timer.
func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "session has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ExpiresAt = s.now().Add(s.ttl)
	s.sessions[sess.ID] = sess
	return nil
}

// Delete removes a session. Deleting an unknown id returns ErrNotFound.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	sess.close()
	return nil
}

// Cleanup drops expired sessions and returns how many were removed.
func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, id)
			sess.close()
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run calls Cleanup every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = s.Cleanup(ctx)
		}
	}
}

// Close drops every session.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		delete(s.sessions, id)
		sess.close()
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
