package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds      = errors.New("tile is not on the board")
	ErrTileOccupied     = errors.New("tile is already occupied")
	ErrUnitNotOnBoard   = errors.New("unit is not on the board")
	ErrDeckEmpty        = errors.New("deck is empty")
	ErrHandFull         = errors.New("hand is full")
	ErrEmptySlot        = errors.New("hand position is empty")
	ErrInvalidPosition  = errors.New("hand position out of range")
	ErrInsufficientMana = errors.New("not enough mana")
)

// GameState is the authoritative state of one duel. It is owned by a single
// session and must only be mutated from that session's dispatch goroutine.
type GameState struct {
	config *GameConfig

	width, height int
	tiles         [][]*Tile // indexed [x-1][y-1]

	players [2]*Player
	units   map[int]*Unit

	turn  PlayerSlot
	round int

	nextUnitID int
	nextCardID int

	selectedUnit *Unit
	selectedCard int
	highlighted  []*Tile

	awaitingStop   map[int]bool
	pendingAttacks map[int]*Tile

	gameOver bool
	winner   PlayerSlot
}

// NewGameState builds the opening position for the given rule set
func NewGameState(config *GameConfig) (*GameState, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	gs := &GameState{
		config:         config,
		width:          config.BoardWidth,
		height:         config.BoardHeight,
		units:          make(map[int]*Unit),
		turn:           Player1,
		round:          1,
		nextUnitID:     1,
		nextCardID:     1,
		awaitingStop:   make(map[int]bool),
		pendingAttacks: make(map[int]*Tile),
	}

	gs.tiles = make([][]*Tile, gs.width)
	for x := 1; x <= gs.width; x++ {
		col := make([]*Tile, gs.height)
		for y := 1; y <= gs.height; y++ {
			col[y-1] = &Tile{
				TileX:  x,
				TileY:  y,
				XPos:   config.BoardOffsetX + (x-1)*config.TileSize,
				YPos:   config.BoardOffsetY + (y-1)*config.TileSize,
				Width:  config.TileSize,
				Height: config.TileSize,
			}
		}
		gs.tiles[x-1] = col
	}

	for _, slot := range []PlayerSlot{Player1, Player2} {
		p := &Player{
			Slot:   slot,
			Health: config.StartingHealth,
			units:  make(map[int]*Unit),
		}
		for _, def := range config.Deck(slot) {
			p.deck = append(p.deck, &Card{
				ID:         gs.nextCardID,
				Owner:      slot,
				Name:       def.Name,
				Cost:       def.Cost,
				UnitConfig: def.UnitConfig,
				Attack:     def.Attack,
				Health:     def.Health,
			})
			gs.nextCardID++
		}
		gs.players[slot-1] = p

		def := config.Avatar(slot)
		avatar := &Unit{
			ID:        gs.nextUnitID,
			Owner:     slot,
			Name:      def.Name,
			Config:    def.Config,
			Attack:    def.Attack,
			Health:    config.StartingHealth,
			MaxHealth: config.StartingHealth,
			Animation: AnimationIdle,
			Avatar:    true,
		}
		gs.nextUnitID++
		tile, _ := gs.Tile(def.StartX, def.StartY)
		if err := gs.PlaceUnit(avatar, tile); err != nil {
			return nil, fmt.Errorf("place avatar for player %d: %w", slot, err)
		}

		for i := 0; i < config.OpeningHand; i++ {
			if _, _, err := gs.DrawCard(slot); err != nil {
				break
			}
		}
	}

	gs.Player(Player1).Mana = config.TurnRefill(gs.round)
	return gs, nil
}

// Config returns the rule set the game was created from
func (gs *GameState) Config() *GameConfig {
	return gs.config
}

// Width returns the number of board columns
func (gs *GameState) Width() int { return gs.width }

// Height returns the number of board rows
func (gs *GameState) Height() int { return gs.height }

// Tile returns the tile at 1-based coordinates
func (gs *GameState) Tile(x, y int) (*Tile, bool) {
	if x < 1 || x > gs.width || y < 1 || y > gs.height {
		return nil, false
	}
	return gs.tiles[x-1][y-1], true
}

// Tiles returns every tile, column by column
func (gs *GameState) Tiles() []*Tile {
	tiles := make([]*Tile, 0, gs.width*gs.height)
	for _, col := range gs.tiles {
		tiles = append(tiles, col...)
	}
	return tiles
}

// Player returns the player in the given slot
func (gs *GameState) Player(slot PlayerSlot) *Player {
	if !slot.Valid() {
		return nil
	}
	return gs.players[slot-1]
}

// Turn returns the slot whose turn it is
func (gs *GameState) Turn() PlayerSlot { return gs.turn }

// Round returns the current round, starting at 1
func (gs *GameState) Round() int { return gs.round }

// ActivePlayer returns the player whose turn it is
func (gs *GameState) ActivePlayer() *Player {
	return gs.Player(gs.turn)
}

// Unit looks up a live unit by id
func (gs *GameState) Unit(id int) (*Unit, bool) {
	u, ok := gs.units[id]
	return u, ok
}

// Units returns all live units in id order
func (gs *GameState) Units() []*Unit {
	return sortedUnits(gs.units)
}

// GameOver reports whether an avatar has fallen
func (gs *GameState) GameOver() bool { return gs.gameOver }

// Winner returns the winning slot once the game is over
func (gs *GameState) Winner() PlayerSlot { return gs.winner }

func (gs *GameState) onBoard(t *Tile) bool {
	if t == nil {
		return false
	}
	own, ok := gs.Tile(t.TileX, t.TileY)
	return ok && own == t
}

// PlaceUnit puts a unit that is not yet on the board onto an empty tile
func (gs *GameState) PlaceUnit(u *Unit, t *Tile) error {
	if !gs.onBoard(t) {
		return ErrOutOfBounds
	}
	if t.unit != nil {
		return fmt.Errorf("place unit %d at (%d,%d): %w", u.ID, t.TileX, t.TileY, ErrTileOccupied)
	}
	if u.tile != nil {
		u.tile.unit = nil
	}
	t.unit = u
	u.tile = t
	gs.units[u.ID] = u
	if p := gs.Player(u.Owner); p != nil {
		p.units[u.ID] = u
	}
	return nil
}

// MoveUnit relocates a unit. The logical position changes immediately; the
// unit is then tracked as awaiting the client's stop confirmation.
func (gs *GameState) MoveUnit(u *Unit, dst *Tile) error {
	if u.tile == nil || gs.units[u.ID] != u {
		return ErrUnitNotOnBoard
	}
	if !gs.onBoard(dst) {
		return ErrOutOfBounds
	}
	if dst.unit != nil {
		return fmt.Errorf("move unit %d to (%d,%d): %w", u.ID, dst.TileX, dst.TileY, ErrTileOccupied)
	}
	u.tile.unit = nil
	dst.unit = u
	u.tile = dst
	u.moved = true
	gs.awaitingStop[u.ID] = true
	return nil
}

// RemoveUnit takes a unit off the board and forgets any tracking for it
func (gs *GameState) RemoveUnit(u *Unit) {
	if u.tile != nil && u.tile.unit == u {
		u.tile.unit = nil
	}
	u.tile = nil
	delete(gs.units, u.ID)
	if p := gs.Player(u.Owner); p != nil {
		delete(p.units, u.ID)
	}
	delete(gs.awaitingStop, u.ID)
	delete(gs.pendingAttacks, u.ID)
	if gs.selectedUnit == u {
		gs.selectedUnit = nil
	}
}

// DamageUnit lowers a unit's health and reports whether it died. Damage to an
// avatar is mirrored into its owner's health and ends the game at zero.
func (gs *GameState) DamageUnit(u *Unit, amount int) bool {
	u.Health = Clamp(u.Health-amount, MinStat, MaxStat)
	if u.Avatar {
		if p := gs.Player(u.Owner); p != nil {
			p.Health = u.Health
			if p.Health == 0 && !gs.gameOver {
				gs.gameOver = true
				gs.winner = u.Owner.Other()
			}
		}
	}
	return u.Health == 0
}

// MarkAttacked records that a unit used its attack this turn
func (gs *GameState) MarkAttacked(u *Unit) {
	u.attacked = true
	u.moved = true
}

// SummonUnit creates a unit from a card on an empty tile
func (gs *GameState) SummonUnit(c *Card, t *Tile) (*Unit, error) {
	u := &Unit{
		ID:        gs.nextUnitID,
		Owner:     c.Owner,
		Name:      c.Name,
		Config:    c.UnitConfig,
		Attack:    Clamp(c.Attack, MinStat, MaxStat),
		Health:    Clamp(c.Health, MinStat, MaxStat),
		MaxHealth: Clamp(c.Health, MinStat, MaxStat),
		Animation: AnimationIdle,
		moved:     true,
		attacked:  true,
	}
	if err := gs.PlaceUnit(u, t); err != nil {
		return nil, err
	}
	gs.nextUnitID++
	return u, nil
}

// DrawCard moves the top of a player's draw pile into the first free hand
// position. When the hand is full the card is burned and ErrHandFull returned.
func (gs *GameState) DrawCard(slot PlayerSlot) (*Card, int, error) {
	p := gs.Player(slot)
	if p == nil {
		return nil, 0, fmt.Errorf("draw card: invalid player slot %d", slot)
	}
	if len(p.deck) == 0 {
		return nil, 0, ErrDeckEmpty
	}
	card := p.deck[0]
	p.deck = p.deck[1:]

	limit := gs.config.HandSize
	for i := 0; i < limit; i++ {
		if p.hand[i] == nil {
			p.hand[i] = card
			return card, i + 1, nil
		}
	}
	return card, 0, ErrHandFull
}

// PlayCard removes the card at a hand position and spends its cost
func (gs *GameState) PlayCard(slot PlayerSlot, pos int) (*Card, error) {
	p := gs.Player(slot)
	if p == nil {
		return nil, fmt.Errorf("play card: invalid player slot %d", slot)
	}
	if pos < 1 || pos > MaxHandSlots {
		return nil, ErrInvalidPosition
	}
	card := p.hand[pos-1]
	if card == nil {
		return nil, ErrEmptySlot
	}
	if card.Cost > p.Mana {
		return nil, fmt.Errorf("play %s (cost %d, mana %d): %w", card.Name, card.Cost, p.Mana, ErrInsufficientMana)
	}
	p.hand[pos-1] = nil
	p.Mana = Clamp(p.Mana-card.Cost, 0, MaxMana)
	if gs.selectedCard == pos {
		gs.selectedCard = 0
	}
	return card, nil
}

// EndTurn hands the turn to the other player and refills that player's mana.
// The mana of the player whose turn ended is left untouched.
func (gs *GameState) EndTurn() PlayerSlot {
	gs.selectedUnit = nil
	gs.selectedCard = 0

	next := gs.turn.Other()
	if next == Player1 {
		gs.round++
	}
	gs.turn = next

	p := gs.Player(next)
	p.Mana = gs.config.TurnRefill(gs.round)
	for _, u := range p.units {
		u.moved = false
		u.attacked = false
	}
	return next
}

// SelectUnit makes u the current selection, replacing any card selection
func (gs *GameState) SelectUnit(u *Unit) {
	gs.selectedUnit = u
	gs.selectedCard = 0
}

// SelectCard makes a hand position the current selection
func (gs *GameState) SelectCard(pos int) {
	gs.selectedCard = pos
	gs.selectedUnit = nil
}

// SelectedUnit returns the selected unit, if any
func (gs *GameState) SelectedUnit() *Unit { return gs.selectedUnit }

// SelectedCard returns the selected hand position, or 0
func (gs *GameState) SelectedCard() int { return gs.selectedCard }

// HasSelection reports whether a unit or card is selected
func (gs *GameState) HasSelection() bool {
	return gs.selectedUnit != nil || gs.selectedCard != 0
}

// ClearSelection drops the current selection and returns the hand position
// that was selected, or 0.
func (gs *GameState) ClearSelection() int {
	pos := gs.selectedCard
	gs.selectedUnit = nil
	gs.selectedCard = 0
	return pos
}

// Highlight sets a tile's visualisation mode and tracks it for later reset
func (gs *GameState) Highlight(t *Tile, mode TileMode) {
	if t.mode == TileNormal && mode != TileNormal {
		gs.highlighted = append(gs.highlighted, t)
	}
	t.mode = mode
}

// IsHighlighted reports whether t currently shows the given mode
func (gs *GameState) IsHighlighted(t *Tile, mode TileMode) bool {
	return t != nil && t.mode == mode && mode != TileNormal
}

// ClearHighlights resets every highlighted tile to normal and returns them
func (gs *GameState) ClearHighlights() []*Tile {
	cleared := gs.highlighted
	for _, t := range cleared {
		t.mode = TileNormal
	}
	gs.highlighted = nil
	return cleared
}

// Highlighted returns the tiles currently drawn in a non-normal mode
func (gs *GameState) Highlighted() []*Tile {
	return append([]*Tile(nil), gs.highlighted...)
}

// MarkMoving records that a unit is moving on the client
func (gs *GameState) MarkMoving(id int) {
	if _, ok := gs.units[id]; ok {
		gs.awaitingStop[id] = true
	}
}

// StopMoving clears the motion flag for a unit and reports whether it was set
func (gs *GameState) StopMoving(id int) bool {
	was := gs.awaitingStop[id]
	delete(gs.awaitingStop, id)
	return was
}

// AnyMoving reports whether any unit is still awaiting a stop confirmation
func (gs *GameState) AnyMoving() bool {
	return len(gs.awaitingStop) > 0
}

// ResetMotion forgets all in-flight movement, e.g. after the client reloads
func (gs *GameState) ResetMotion() {
	gs.awaitingStop = make(map[int]bool)
	gs.pendingAttacks = make(map[int]*Tile)
}

// SetPendingAttack records an attack to resolve once u stops moving
func (gs *GameState) SetPendingAttack(u *Unit, target *Tile) {
	gs.pendingAttacks[u.ID] = target
}

// TakePendingAttack returns and clears the pending attack target for a unit
func (gs *GameState) TakePendingAttack(id int) (*Tile, bool) {
	t, ok := gs.pendingAttacks[id]
	delete(gs.pendingAttacks, id)
	return t, ok
}
