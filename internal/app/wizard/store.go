package wizard

import (
	"context"
	"sync"
	"time"
)

// Store keeps wizard sessions between requests.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is a process-local Store, used when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = memoryEntry{session: s.clone(), expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	s := e.session.clone()
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// clone copies the slices so stored sessions are not mutated through callers.
func (s *Session) clone() Session {
	c := *s
	c.Candidates = append(make([]Candidate, 0, len(s.Candidates)), s.Candidates...)
	c.SelectedIDs = append(make([]uint, 0, len(s.SelectedIDs)), s.SelectedIDs...)
	c.Lines = append(make([]Line, 0, len(s.Lines)), s.Lines...)
	return c
}
