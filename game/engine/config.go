package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Validation bounds for rule sets
const (
	MinBoardSize = 3
	MaxBoardSize = 12
	MinTileSize  = 8
)

// CardDefinition is the rule-set description of a summon card
type CardDefinition struct {
	Name       string `json:"name"`
	Cost       int    `json:"cost"`
	UnitConfig string `json:"unit_config"`
	Attack     int    `json:"attack"`
	Health     int    `json:"health"`
}

// AvatarDefinition describes a player's avatar unit and where it starts
type AvatarDefinition struct {
	Name   string `json:"name"`
	Config string `json:"config"`
	Attack int    `json:"attack"`
	StartX int    `json:"start_x"`
	StartY int    `json:"start_y"`
}

// EffectDefinition names the sprite used for a one-shot effect
type EffectDefinition struct {
	Name      string `json:"name"`
	FrameRate int    `json:"fps"`
}

// Animation returns the effect as a fresh EffectAnimation
func (d EffectDefinition) Animation() *EffectAnimation {
	return &EffectAnimation{Name: d.Name, FrameRate: d.FrameRate}
}

// GameConfig is a rule set loaded from JSON
type GameConfig struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	BoardWidth     int    `json:"board_width"`
	BoardHeight    int    `json:"board_height"`
	TileSize       int    `json:"tile_size"`
	BoardOffsetX   int    `json:"board_offset_x"`
	BoardOffsetY   int    `json:"board_offset_y"`
	StartingHealth int    `json:"starting_health"`
	ManaCap        int    `json:"mana_cap"`
	HandSize       int    `json:"hand_size"`
	OpeningHand    int    `json:"opening_hand"`
	MoveRange      int    `json:"move_range"`

	Avatars [2]AvatarDefinition         `json:"avatars"`
	Decks   [2][]CardDefinition         `json:"decks"`
	Effects map[string]EffectDefinition `json:"effects"`

	NotificationSeconds int      `json:"notification_seconds"`
	PreloadImages       []string `json:"preload_images"`
}

// Avatar returns the avatar definition for a player slot
func (c *GameConfig) Avatar(slot PlayerSlot) AvatarDefinition {
	return c.Avatars[slot-1]
}

// Deck returns the deck definition for a player slot
func (c *GameConfig) Deck(slot PlayerSlot) []CardDefinition {
	return c.Decks[slot-1]
}

// Effect returns the named effect, falling back to the name itself as the sprite
func (c *GameConfig) Effect(name string) *EffectAnimation {
	if def, ok := c.Effects[name]; ok {
		return def.Animation()
	}
	return &EffectAnimation{Name: name, FrameRate: 24}
}

// TurnRefill returns the mana a player is topped up to at the start of a turn in the given round
func (c *GameConfig) TurnRefill(round int) int {
	return Clamp(round+1, 0, c.ManaCap)
}

// ValidateGameConfig validates a rule set for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.BoardWidth < MinBoardSize || config.BoardWidth > MaxBoardSize {
		return fmt.Errorf("config validation: board_width must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.BoardWidth)
	}
	if config.BoardHeight < MinBoardSize || config.BoardHeight > MaxBoardSize {
		return fmt.Errorf("config validation: board_height must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.BoardHeight)
	}
	if config.TileSize < MinTileSize {
		return fmt.Errorf("config validation: tile_size must be at least %d, got %d", MinTileSize, config.TileSize)
	}
	if config.StartingHealth < 1 || config.StartingHealth > MaxStat {
		return fmt.Errorf("config validation: starting_health must be between 1 and %d, got %d", MaxStat, config.StartingHealth)
	}
	if config.ManaCap < 1 || config.ManaCap > MaxMana {
		return fmt.Errorf("config validation: mana_cap must be between 1 and %d, got %d", MaxMana, config.ManaCap)
	}
	if config.HandSize < 1 || config.HandSize > MaxHandSlots {
		return fmt.Errorf("config validation: hand_size must be between 1 and %d, got %d", MaxHandSlots, config.HandSize)
	}
	if config.OpeningHand < 0 || config.OpeningHand > config.HandSize {
		return fmt.Errorf("config validation: opening_hand must be between 0 and hand_size (%d), got %d", config.HandSize, config.OpeningHand)
	}
	if config.MoveRange < 1 {
		return fmt.Errorf("config validation: move_range must be positive, got %d", config.MoveRange)
	}

	for i, avatar := range config.Avatars {
		if avatar.Name == "" {
			return fmt.Errorf("config validation: avatars[%d].name is required", i)
		}
		if avatar.Attack < MinStat || avatar.Attack > MaxStat {
			return fmt.Errorf("config validation: avatars[%d].attack must be between %d and %d, got %d", i, MinStat, MaxStat, avatar.Attack)
		}
		if avatar.StartX < 1 || avatar.StartX > config.BoardWidth || avatar.StartY < 1 || avatar.StartY > config.BoardHeight {
			return fmt.Errorf("config validation: avatars[%d] start tile (%d,%d) is off the board", i, avatar.StartX, avatar.StartY)
		}
	}
	a, b := config.Avatars[0], config.Avatars[1]
	if a.StartX == b.StartX && a.StartY == b.StartY {
		return fmt.Errorf("config validation: avatars cannot share start tile (%d,%d)", a.StartX, a.StartY)
	}

	for i, deck := range config.Decks {
		for j, card := range deck {
			if card.Name == "" {
				return fmt.Errorf("config validation: decks[%d][%d].name is required", i, j)
			}
			if card.Cost < 0 || card.Cost > MaxMana {
				return fmt.Errorf("config validation: card %q cost must be between 0 and %d, got %d", card.Name, MaxMana, card.Cost)
			}
			if card.Attack < MinStat || card.Attack > MaxStat {
				return fmt.Errorf("config validation: card %q attack must be between %d and %d, got %d", card.Name, MinStat, MaxStat, card.Attack)
			}
			if card.Health < 1 || card.Health > MaxStat {
				return fmt.Errorf("config validation: card %q health must be between 1 and %d, got %d", card.Name, MaxStat, card.Health)
			}
		}
	}

	if len(config.PreloadImages) == 0 {
		return fmt.Errorf("config validation: preload_images must list at least one asset")
	}
	for i, img := range config.PreloadImages {
		if strings.TrimSpace(img) == "" {
			return fmt.Errorf("config validation: preload_images[%d] is empty", i)
		}
	}

	return nil
}

// LoadGameConfig loads and validates a rule set from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in rule set used when no configuration directory provides one
func DefaultGameConfig() *GameConfig {
	deck := []CardDefinition{
		{Name: "Comodo Charger", Cost: 1, UnitConfig: "comodo_charger", Attack: 1, Health: 3},
		{Name: "Pureblade Enforcer", Cost: 2, UnitConfig: "pureblade_enforcer", Attack: 1, Health: 4},
		{Name: "Fire Spitter", Cost: 4, UnitConfig: "fire_spitter", Attack: 3, Health: 2},
		{Name: "Silverguard Knight", Cost: 3, UnitConfig: "silverguard_knight", Attack: 1, Health: 5},
		{Name: "Azure Herald", Cost: 2, UnitConfig: "azure_herald", Attack: 1, Health: 4},
		{Name: "Ironcliff Guardian", Cost: 5, UnitConfig: "ironcliff_guardian", Attack: 3, Health: 10},
		{Name: "Planar Scout", Cost: 1, UnitConfig: "planar_scout", Attack: 2, Health: 1},
		{Name: "Rock Pulveriser", Cost: 2, UnitConfig: "rock_pulveriser", Attack: 1, Health: 4},
	}
	p2deck := make([]CardDefinition, len(deck))
	copy(p2deck, deck)

	return &GameConfig{
		Name:           "default",
		Description:    "Built-in 9x5 duel rule set",
		BoardWidth:     9,
		BoardHeight:    5,
		TileSize:       115,
		BoardOffsetX:   45,
		BoardOffsetY:   100,
		StartingHealth: 20,
		ManaCap:        9,
		HandSize:       6,
		OpeningHand:    3,
		MoveRange:      2,
		Avatars: [2]AvatarDefinition{
			{Name: "Human Avatar", Config: "avatar1", Attack: 2, StartX: 2, StartY: 3},
			{Name: "AI Avatar", Config: "avatar2", Attack: 2, StartX: 8, StartY: 3},
		},
		Decks: [2][]CardDefinition{deck, p2deck},
		Effects: map[string]EffectDefinition{
			"summon":     {Name: "f1_summon", FrameRate: 24},
			"projectile": {Name: "f1_projectiles", FrameRate: 30},
			"hit":        {Name: "f1_inmolation", FrameRate: 24},
		},
		NotificationSeconds: 2,
		PreloadImages: []string{
			"assets/game/extra/board/tile_grid.png",
			"assets/game/extra/board/tile_highlight.png",
			"assets/game/extra/board/tile_attack.png",
			"assets/game/extra/ui/card_background.png",
		},
	}
}
