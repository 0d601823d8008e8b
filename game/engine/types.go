package engine

import "encoding/json"

// TileMode selects which version of a tile texture the renderer draws
type TileMode int

const (
	TileNormal      TileMode = 0
	TileHighlighted TileMode = 1
	TileAttackable  TileMode = 2
)

// CardMode selects how a card in hand is drawn
type CardMode int

const (
	CardNormal      CardMode = 0
	CardHighlighted CardMode = 1
)

// UnitAnimationType names a sprite animation
type UnitAnimationType string

const (
	AnimationIdle    UnitAnimationType = "idle"
	AnimationMove    UnitAnimationType = "move"
	AnimationAttack  UnitAnimationType = "attack"
	AnimationHit     UnitAnimationType = "hit"
	AnimationDeath   UnitAnimationType = "death"
	AnimationChannel UnitAnimationType = "channel"
)

// PlayerSlot is one of the two fixed player positions
type PlayerSlot int

const (
	Player1 PlayerSlot = 1
	Player2 PlayerSlot = 2
)

// Other returns the opposing slot
func (s PlayerSlot) Other() PlayerSlot {
	if s == Player1 {
		return Player2
	}
	return Player1
}

// Valid reports whether s is one of the two player slots
func (s PlayerSlot) Valid() bool {
	return s == Player1 || s == Player2
}

// Stat and hand limits shared by the model and the rendering protocol
const (
	MinStat      = 0
	MaxStat      = 20
	MaxMana      = 9
	MaxHandSlots = 6
)

// Tile is a single board cell addressed by 1-based coordinates
type Tile struct {
	TileX  int `json:"tilex"`
	TileY  int `json:"tiley"`
	XPos   int `json:"xpos"`
	YPos   int `json:"ypos"`
	Width  int `json:"width"`
	Height int `json:"height"`

	mode TileMode
	unit *Unit
}

// Mode returns the tile's current visualisation mode
func (t *Tile) Mode() TileMode {
	return t.mode
}

// Unit returns the occupying unit, or nil for an empty tile
func (t *Tile) Unit() *Unit {
	return t.unit
}

// Occupied reports whether a unit stands on the tile
func (t *Tile) Occupied() bool {
	return t.unit != nil
}

// Position is the board placement of a unit as the renderer sees it
type Position struct {
	TileX int `json:"tilex"`
	TileY int `json:"tiley"`
	XPos  int `json:"xpos"`
	YPos  int `json:"ypos"`
}

// Unit is a piece on the board
type Unit struct {
	ID        int               `json:"id"`
	Owner     PlayerSlot        `json:"owner"`
	Name      string            `json:"name"`
	Config    string            `json:"config"`
	Attack    int               `json:"attack"`
	Health    int               `json:"health"`
	MaxHealth int               `json:"maxHealth"`
	Animation UnitAnimationType `json:"animation"`
	Avatar    bool              `json:"avatar,omitempty"`

	moved    bool
	attacked bool
	tile     *Tile
}

// Tile returns the tile the unit currently occupies
func (u *Unit) Tile() *Tile {
	return u.tile
}

// Position returns the unit's position read from its tile
func (u *Unit) Position() Position {
	if u.tile == nil {
		return Position{}
	}
	return Position{TileX: u.tile.TileX, TileY: u.tile.TileY, XPos: u.tile.XPos, YPos: u.tile.YPos}
}

// HasMoved reports whether the unit moved this turn
func (u *Unit) HasMoved() bool { return u.moved }

// HasAttacked reports whether the unit attacked this turn
func (u *Unit) HasAttacked() bool { return u.attacked }

// SetAnimation records the animation the unit is playing
func (u *Unit) SetAnimation(a UnitAnimationType) {
	u.Animation = a
}

// MarshalJSON adds the board position to the unit's fields
func (u *Unit) MarshalJSON() ([]byte, error) {
	type plain Unit
	return json.Marshal(struct {
		*plain
		Position Position `json:"position"`
	}{(*plain)(u), u.Position()})
}

// Card is a summon card drawn into a player's hand
type Card struct {
	ID         int        `json:"id"`
	Owner      PlayerSlot `json:"owner"`
	Name       string     `json:"cardname"`
	Cost       int        `json:"manacost"`
	UnitConfig string     `json:"unitConfig"`
	Attack     int        `json:"attack"`
	Health     int        `json:"health"`
}

// Player is one side of the duel
type Player struct {
	Slot   PlayerSlot `json:"slot"`
	Health int        `json:"health"`
	Mana   int        `json:"mana"`

	hand  [MaxHandSlots]*Card
	deck  []*Card
	units map[int]*Unit
}

// CardAt returns the card in hand position pos (1-based)
func (p *Player) CardAt(pos int) *Card {
	if pos < 1 || pos > MaxHandSlots {
		return nil
	}
	return p.hand[pos-1]
}

// Hand maps each occupied hand position to its card. Iterate 1..MaxHandSlots
// with CardAt when slot order matters.
func (p *Player) Hand() map[int]*Card {
	hand := make(map[int]*Card)
	for i, c := range p.hand {
		if c != nil {
			hand[i+1] = c
		}
	}
	return hand
}

// HandSize counts cards currently held
func (p *Player) HandSize() int {
	n := 0
	for _, c := range p.hand {
		if c != nil {
			n++
		}
	}
	return n
}

// DeckSize returns the number of cards left in the draw pile
func (p *Player) DeckSize() int {
	return len(p.deck)
}

// Units returns the units the player owns
func (p *Player) Units() []*Unit {
	return sortedUnits(p.units)
}

// EffectAnimation describes a one-shot visual effect. It is never stored in the game state.
type EffectAnimation struct {
	Name      string `json:"name"`
	FrameRate int    `json:"fps"`
}
