package service

import (
	"context"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
	"github.com/wricardo/tactics-duel/game/session"
)

// GameService defines the operations the transports need
type GameService interface {
	// Session Management
	OpenSession(ctx context.Context, out command.Sender, configName string) (*session.Actor, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Open(out command.Sender, config *engine.GameConfig) (*session.Actor, error)
	Get(id string) (*session.Actor, error)
	List() []*session.Actor
	Delete(id string) error
	Count() int
}

// ConfigManager handles rule-set loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}
