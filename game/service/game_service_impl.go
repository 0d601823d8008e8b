package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
	"github.com/wricardo/tactics-duel/game/session"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// inspectTimeout bounds how long a read waits for a busy session
const inspectTimeout = 2 * time.Second

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// OpenSession starts a session for a connection using the named rule set, or
// the default one when configName is empty.
func (s *gameServiceImpl) OpenSession(ctx context.Context, out command.Sender, configName string) (*session.Actor, error) {
	config := s.configs.GetDefault()
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return nil, s.notFoundError(configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	}

	actor, err := s.sessions.Open(out, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return actor, nil
}

// notFoundError lists the available rule sets alongside the missing one
func (s *gameServiceImpl) notFoundError(configName string) error {
	available, err := s.configs.ListConfigs()
	if err == nil && len(available) > 0 {
		var ids []string
		for _, cfg := range available {
			ids = append(ids, cfg.ConfigID)
		}
		return fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, ids)
	}
	return fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
}

// GetSession describes one live session
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	actor, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return describe(ctx, actor)
}

// ListSessions describes every live session. Sessions that close while
// being listed are skipped.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	actors := s.sessions.List()
	result := make([]*SessionInfo, 0, len(actors))
	for _, actor := range actors {
		info, err := describe(ctx, actor)
		if errors.Is(err, session.ErrSessionClosed) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, nil
}

// DeleteSession closes a session and discards its state
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// GetGameState returns a snapshot of a session's game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	actor, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, inspectTimeout)
	defer cancel()

	var snap *engine.Snapshot
	if err := actor.Inspect(ctx, func(gs *engine.GameState) {
		snap = gs.Snapshot()
	}); err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	return snap, nil
}

// ListConfigs returns the available rule sets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig returns a rule set by name
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig stores a rule set
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// describe reads a session's headline state on its own goroutine
func describe(ctx context.Context, actor *session.Actor) (*SessionInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, inspectTimeout)
	defer cancel()

	info := &SessionInfo{
		ID:         actor.ID(),
		ConfigName: actor.Config().Name,
		CreatedAt:  actor.CreatedAt(),
	}
	err := actor.Inspect(ctx, func(gs *engine.GameState) {
		info.LastActivity = actor.LastActivity()
		info.Processed = actor.Processed()
		info.Turn = gs.Turn()
		info.Round = gs.Round()
		info.GameOver = gs.GameOver()
		info.Winner = gs.Winner()
		for _, slot := range []engine.PlayerSlot{engine.Player1, engine.Player2} {
			p := gs.Player(slot)
			info.Players = append(info.Players, PlayerSummary{
				Slot:     slot,
				Health:   p.Health,
				Mana:     p.Mana,
				Hand:     p.HandSize(),
				DeckSize: p.DeckSize(),
				Units:    len(p.Units()),
			})
		}
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}
