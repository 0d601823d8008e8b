package command

import (
	"fmt"

	"github.com/wricardo/tactics-duel/game/engine"
)

// Message types understood by the renderer
const (
	TypeActorReady          = "actorReady"
	TypeError               = "ERR"
	TypeDrawTile            = "drawTile"
	TypeDrawUnit            = "drawUnit"
	TypeDeleteUnit          = "deleteUnit"
	TypeSetUnitAttack       = "setUnitAttack"
	TypeSetUnitHealth       = "setUnitHealth"
	TypeMoveUnitToTile      = "moveUnitToTile"
	TypePlayUnitAnimation   = "playUnitAnimation"
	TypeDrawCard            = "drawCard"
	TypeDeleteCard          = "deleteCard"
	TypePlayEffectAnimation = "playEffectAnimation"
	TypeDrawProjectile      = "drawProjectile"
)

// ActorReadyCommand tells the renderer the session is live and which assets to preload
type ActorReadyCommand struct {
	header
	PreloadImages []string `json:"preloadImages"`
}

// ErrorCommand reports a failed inbound message
type ErrorCommand struct {
	header
	Error string `json:"error"`
}

// TileCommand draws a tile in a visualisation mode
type TileCommand struct {
	header
	Tile *engine.Tile    `json:"tile"`
	Mode engine.TileMode `json:"mode"`
}

// UnitCommand draws or deletes a unit sprite
type UnitCommand struct {
	header
	Unit *engine.Unit `json:"unit"`
	Tile *engine.Tile `json:"tile,omitempty"`
}

// UnitStatCommand updates one displayed unit value
type UnitStatCommand struct {
	header
	Unit   *engine.Unit `json:"unit"`
	Attack *int         `json:"attack,omitempty"`
	Health *int         `json:"health,omitempty"`
}

// MoveCommand starts a unit moving on the client
type MoveCommand struct {
	header
	YFirst *bool        `json:"yfirst,omitempty"`
	Unit   *engine.Unit `json:"unit"`
	Tile   *engine.Tile `json:"tile"`
}

// AnimationCommand plays a unit animation
type AnimationCommand struct {
	header
	Unit      *engine.Unit             `json:"unit"`
	Animation engine.UnitAnimationType `json:"animation"`
}

// PlayerCommand refreshes a player's health or mana display
type PlayerCommand struct {
	header
	Player *engine.Player `json:"player"`
}

// CardCommand draws a card into a hand position
type CardCommand struct {
	header
	Card     *engine.Card    `json:"card"`
	Position int             `json:"position"`
	Mode     engine.CardMode `json:"mode"`
}

// DeleteCardCommand clears a hand position
type DeleteCardCommand struct {
	header
	Position int `json:"position"`
}

// EffectCommand plays a one-shot effect on a tile
type EffectCommand struct {
	header
	Effect *engine.EffectAnimation `json:"effect"`
	Tile   *engine.Tile            `json:"tile"`
}

// ProjectileCommand fires a projectile effect between two tiles
type ProjectileCommand struct {
	header
	Effect     *engine.EffectAnimation `json:"effect"`
	Tile       *engine.Tile            `json:"tile"`
	TargetTile *engine.Tile            `json:"targetTile"`
	Mode       int                     `json:"mode"`
}

// NotificationCommand shows transient text in a player's notification area
type NotificationCommand struct {
	header
	Text    string `json:"text"`
	Seconds int    `json:"seconds"`
}

// ActorReady announces a new session
func ActorReady(out Sender, images []string) {
	out.Send(&ActorReadyCommand{header{TypeActorReady}, append([]string(nil), images...)})
}

// ReportError sends an ERR notification
func ReportError(out Sender, text string) {
	out.Send(&ErrorCommand{header{TypeError}, text})
}

// DrawTile draws tile in mode. Re-drawing with a new mode changes the tile in place.
func DrawTile(out Sender, tile *engine.Tile, mode engine.TileMode) {
	out.Send(&TileCommand{header{TypeDrawTile}, tile, mode})
}

// DrawUnit places a unit sprite on a tile
func DrawUnit(out Sender, unit *engine.Unit, tile *engine.Tile) {
	out.Send(&UnitCommand{header: header{TypeDrawUnit}, Unit: unit, Tile: tile})
}

// DeleteUnit removes a unit sprite, cancelling any client-side movement
func DeleteUnit(out Sender, unit *engine.Unit) {
	out.Send(&UnitCommand{header: header{TypeDeleteUnit}, Unit: unit})
}

// SetUnitAttack updates the displayed attack value
func SetUnitAttack(out Sender, unit *engine.Unit, attack int) {
	out.Send(&UnitStatCommand{header: header{TypeSetUnitAttack}, Unit: unit, Attack: &attack})
}

// SetUnitHealth updates the displayed health value
func SetUnitHealth(out Sender, unit *engine.Unit, health int) {
	out.Send(&UnitStatCommand{header: header{TypeSetUnitHealth}, Unit: unit, Health: &health})
}

// MoveUnitToTile moves a unit horizontally first. Completion is reported by
// the client with a unitstopped event.
func MoveUnitToTile(out Sender, unit *engine.Unit, tile *engine.Tile) {
	out.Send(&MoveCommand{header: header{TypeMoveUnitToTile}, Unit: unit, Tile: tile})
}

// MoveUnitToTileYFirst moves a unit, choosing the path order explicitly
func MoveUnitToTileYFirst(out Sender, unit *engine.Unit, tile *engine.Tile, yfirst bool) {
	out.Send(&MoveCommand{header: header{TypeMoveUnitToTile}, YFirst: &yfirst, Unit: unit, Tile: tile})
}

// PlayUnitAnimation records anim on the unit and then plays it
func PlayUnitAnimation(out Sender, unit *engine.Unit, anim engine.UnitAnimationType) {
	unit.SetAnimation(anim)
	out.Send(&AnimationCommand{header{TypePlayUnitAnimation}, unit, anim})
}

// SetPlayerHealth refreshes the health display for the player's slot
func SetPlayerHealth(out Sender, player *engine.Player) {
	out.Send(&PlayerCommand{header{fmt.Sprintf("setPlayer%dHealth", player.Slot)}, player})
}

// SetPlayerMana refreshes the mana display for the player's slot
func SetPlayerMana(out Sender, player *engine.Player) {
	out.Send(&PlayerCommand{header{fmt.Sprintf("setPlayer%dMana", player.Slot)}, player})
}

// DrawCard draws card at a 1-based hand position
func DrawCard(out Sender, card *engine.Card, position int, mode engine.CardMode) {
	out.Send(&CardCommand{header{TypeDrawCard}, card, position, mode})
}

// DeleteCard clears a 1-based hand position
func DeleteCard(out Sender, position int) {
	out.Send(&DeleteCardCommand{header{TypeDeleteCard}, position})
}

// PlayEffectAnimation plays effect on tile
func PlayEffectAnimation(out Sender, effect *engine.EffectAnimation, tile *engine.Tile) {
	out.Send(&EffectCommand{header{TypePlayEffectAnimation}, effect, tile})
}

// PlayProjectileAnimation fires effect from start to target
func PlayProjectileAnimation(out Sender, effect *engine.EffectAnimation, mode int, start, target *engine.Tile) {
	out.Send(&ProjectileCommand{header{TypeDrawProjectile}, effect, start, target, mode})
}

// AddPlayerNotification shows text to a player for roughly the given number of seconds
func AddPlayerNotification(out Sender, slot engine.PlayerSlot, text string, seconds int) {
	out.Send(&NotificationCommand{header{fmt.Sprintf("addPlayer%dNotification", slot)}, text, seconds})
}
