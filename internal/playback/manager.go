package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reelgrid/reelgrid/internal/source"
)

// Sessions live only as long as a page keeps polling them; an abandoned tab
// stops touching its session and the janitor reclaims it.
const (
	defaultIdleTimeout   = 2 * time.Minute
	janitorSweepInterval = 30 * time.Second
)

// Manager is the in-memory session registry.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	logger      *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		sessions:    map[string]*Session{},
		idleTimeout: defaultIdleTimeout,
		logger:      logger,
	}
}

// Create builds a session for raw and registers it.
func (m *Manager) Create(raw, hint string, opts source.Options, device Device) *Session {
	s := NewSession(raw, hint, opts, device)
	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("playback session created",
		"session_id", s.ID,
		"platform", s.Source().Platform,
		"active_sessions", n)
	return s
}

// Get returns the session by id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Close removes and disposes the session by id. Reports whether it existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	m.logger.Info("playback session closed", "session_id", id)
	return true
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until ctx is done, then closes everything.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(janitorSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		m.logger.Info("playback session expired", "session_id", s.ID)
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
