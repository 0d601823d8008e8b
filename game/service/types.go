package service

import (
	"time"

	"github.com/wricardo/tactics-duel/game/engine"
)

// SessionInfo provides information about a live session
type SessionInfo struct {
	ID           string            `json:"id"`
	ConfigName   string            `json:"config_name"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
	Processed    int64             `json:"messages_processed"`
	Turn         engine.PlayerSlot `json:"turn"`
	Round        int               `json:"round"`
	GameOver     bool              `json:"game_over"`
	Winner       engine.PlayerSlot `json:"winner,omitempty"`
	Players      []PlayerSummary   `json:"players"`
}

// PlayerSummary is the headline state of one player
type PlayerSummary struct {
	Slot     engine.PlayerSlot `json:"slot"`
	Health   int               `json:"health"`
	Mana     int               `json:"mana"`
	Hand     int               `json:"hand"`
	DeckSize int               `json:"deck_size"`
	Units    int               `json:"units"`
}

// ConfigInfo provides information about a rule set
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use when opening a session
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	BoardWidth  int    `json:"board_width"`
	BoardHeight int    `json:"board_height"`
	DeckSize    int    `json:"deck_size"`
}
