package view

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/tabular"
)

// Manager owns the live view sessions, keyed by ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Create opens a new session over the given columns and records.
func (m *Manager) Create(columns []tabular.Column, records []tabular.Record) *Session {
	session := newSession(uuid.New(), columns, records)
	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()
	return session
}

// Get looks up a session by ID.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Close removes a session. Returns false when the ID is unknown.
func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// PruneIdle closes sessions untouched for longer than maxIdle and returns how
// many were removed.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, session := range m.sessions {
		if session.idleSince(now) > maxIdle {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}
