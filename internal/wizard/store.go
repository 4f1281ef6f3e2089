package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
)

var (
	ErrSessionNotFound = apperror.NotFound("Wizard session")
	ErrSessionBusy     = apperror.Conflict("Wizard session is busy, try again")
)

// Session is one visitor's wizard run.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionStore keeps sessions between requests. Lock takes an exclusive,
// non-blocking hold on one session: a second caller gets ErrSessionBusy.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// submittedTTL bounds how long a finished session lingers for its summary
// screen.
const submittedTTL = 15 * time.Minute

// sessionTTL is the lifetime a store gives s on save.
func sessionTTL(s *Session, ttl time.Duration) time.Duration {
	if s.State.Submitted {
		return min(ttl, submittedTTL)
	}
	return ttl
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// memoryStore is the single-instance SessionStore. Expired sessions are
// dropped when next touched and swept on save at most once per sweep
// interval.
type memoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]memoryEntry
	locked    map[string]bool
	nextSweep time.Time
}

func NewMemoryStore(ttl time.Duration) SessionStore {
	return &memoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		locked:  make(map[string]bool),
	}
}

func (m *memoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(min(m.ttl, time.Minute))
	}
	m.entries[s.ID] = memoryEntry{session: *s, expiresAt: now.Add(sessionTTL(s, m.ttl))}
	return nil
}

func (m *memoryStore) sweep(now time.Time) {
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}

func (m *memoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, id)
		return nil, ErrSessionNotFound
	}
	s := e.session
	return &s, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memoryStore) Lock(_ context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locked[id] {
		return nil, ErrSessionBusy
	}
	m.locked[id] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locked, id)
			m.mu.Unlock()
		})
	}, nil
}
