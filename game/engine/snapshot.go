package engine

import (
	"encoding/json"
	"sort"
)

// Snapshot is a read-only, JSON-friendly copy of a GameState
type Snapshot struct {
	Config       string            `json:"config"`
	BoardWidth   int               `json:"board_width"`
	BoardHeight  int               `json:"board_height"`
	Turn         PlayerSlot        `json:"turn"`
	Round        int               `json:"round"`
	GameOver     bool              `json:"game_over"`
	Winner       PlayerSlot        `json:"winner,omitempty"`
	Players      []PlayerSnapshot  `json:"players"`
	Units        []UnitSnapshot    `json:"units"`
	Highlighted  []HighlightedTile `json:"highlighted,omitempty"`
	SelectedUnit int               `json:"selected_unit,omitempty"`
	SelectedCard int               `json:"selected_card,omitempty"`
	Moving       []int             `json:"moving,omitempty"`
	Pending      map[int]Position  `json:"pending_attacks,omitempty"`
}

// PlayerSnapshot captures one player's visible resources
type PlayerSnapshot struct {
	Slot     PlayerSlot    `json:"slot"`
	Health   int           `json:"health"`
	Mana     int           `json:"mana"`
	Hand     map[int]*Card `json:"hand"`
	DeckSize int           `json:"deck_size"`
}

// UnitSnapshot captures a unit and its board position
type UnitSnapshot struct {
	ID        int               `json:"id"`
	Owner     PlayerSlot        `json:"owner"`
	Name      string            `json:"name"`
	Attack    int               `json:"attack"`
	Health    int               `json:"health"`
	Animation UnitAnimationType `json:"animation"`
	Avatar    bool              `json:"avatar,omitempty"`
	Moved     bool              `json:"moved,omitempty"`
	Attacked  bool              `json:"attacked,omitempty"`
	Position  Position          `json:"position"`
}

// HighlightedTile is a tile drawn in a non-normal mode
type HighlightedTile struct {
	TileX int      `json:"tilex"`
	TileY int      `json:"tiley"`
	Mode  TileMode `json:"mode"`
}

// Snapshot copies the current state
func (gs *GameState) Snapshot() *Snapshot {
	s := &Snapshot{
		Config:       gs.config.Name,
		BoardWidth:   gs.width,
		BoardHeight:  gs.height,
		Turn:         gs.turn,
		Round:        gs.round,
		GameOver:     gs.gameOver,
		Winner:       gs.winner,
		SelectedCard: gs.selectedCard,
	}
	if gs.selectedUnit != nil {
		s.SelectedUnit = gs.selectedUnit.ID
	}

	for _, p := range gs.players {
		hand := make(map[int]*Card)
		for pos, c := range p.Hand() {
			cp := *c
			hand[pos] = &cp
		}
		s.Players = append(s.Players, PlayerSnapshot{
			Slot:     p.Slot,
			Health:   p.Health,
			Mana:     p.Mana,
			Hand:     hand,
			DeckSize: len(p.deck),
		})
	}

	for _, u := range gs.Units() {
		s.Units = append(s.Units, UnitSnapshot{
			ID:        u.ID,
			Owner:     u.Owner,
			Name:      u.Name,
			Attack:    u.Attack,
			Health:    u.Health,
			Animation: u.Animation,
			Avatar:    u.Avatar,
			Moved:     u.moved,
			Attacked:  u.attacked,
			Position:  u.Position(),
		})
	}

	for _, t := range gs.Tiles() {
		if t.mode != TileNormal {
			s.Highlighted = append(s.Highlighted, HighlightedTile{TileX: t.TileX, TileY: t.TileY, Mode: t.mode})
		}
	}

	for id := range gs.awaitingStop {
		s.Moving = append(s.Moving, id)
	}
	sort.Ints(s.Moving)

	if len(gs.pendingAttacks) > 0 {
		s.Pending = make(map[int]Position, len(gs.pendingAttacks))
		for id, t := range gs.pendingAttacks {
			s.Pending[id] = Position{TileX: t.TileX, TileY: t.TileY, XPos: t.XPos, YPos: t.YPos}
		}
	}

	return s
}

// MarshalJSON encodes the state through its snapshot
func (gs *GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(gs.Snapshot())
}
