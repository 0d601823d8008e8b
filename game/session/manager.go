package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSessionID = errors.New("invalid session ID")
)

// Manager tracks the live sessions of the server
type Manager struct {
	sessions map[string]*Actor
	opts     []Option
	mu       sync.RWMutex
}

// NewManager creates a session manager. opts are applied to every actor it opens.
func NewManager(opts ...Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Actor),
		opts:     opts,
	}
}

// Open starts a new session that renders through out, along with the
// goroutine that dispatches its messages.
func (m *Manager) Open(out command.Sender, config *engine.GameConfig) (*Actor, error) {
	id := uuid.NewString()

	actor, err := NewActor(id, out, config, m.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	m.mu.Lock()
	m.sessions[id] = actor
	m.mu.Unlock()

	go actor.Run(context.Background())

	log.Printf("session %s: opened with rule set %q", id, config.Name)
	return actor, nil
}

// Get retrieves a session by ID
func (m *Manager) Get(id string) (*Actor, error) {
	key, err := normalizeID(id)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	actor, exists := m.sessions[key]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return actor, nil
}

// List returns all live sessions, oldest first
func (m *Manager) List() []*Actor {
	m.mu.RLock()
	result := make([]*Actor, 0, len(m.sessions))
	for _, actor := range m.sessions {
		result = append(result, actor)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].ID() < result[j].ID()
		}
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result
}

// Delete closes a session and forgets it. Its game state is discarded.
func (m *Manager) Delete(id string) error {
	key, err := normalizeID(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	actor, exists := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}
	actor.Close()
	log.Printf("session %s: closed", key)
	return nil
}

// CleanupExpiredSessions closes sessions that have not received a message in maxAge
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*Actor
	for id, actor := range m.sessions {
		if actor.LastActivity().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, actor)
		}
	}
	m.mu.Unlock()

	for _, actor := range expired {
		actor.Close()
	}
	return len(expired)
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every session, e.g. on shutdown
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Actor)
	m.mu.Unlock()

	for _, actor := range sessions {
		actor.Close()
	}
}

// normalizeID accepts a UUID in any case and returns its canonical form
func normalizeID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return parsed.String(), nil
}
