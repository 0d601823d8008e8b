package events

import (
	"fmt"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
)

const projectileMode = 0

// notify shows text to the active player
func notify(out command.Sender, gs *engine.GameState, text string) {
	command.AddPlayerNotification(out, gs.Turn(), text, gs.Config().NotificationSeconds)
}

// blocked reports whether play intents must be ignored right now, telling the
// player why.
func blocked(out command.Sender, gs *engine.GameState) bool {
	if gs.GameOver() {
		notify(out, gs, fmt.Sprintf("Game over: player %d won", gs.Winner()))
		return true
	}
	if gs.AnyMoving() {
		notify(out, gs, "Wait for your units to finish moving")
		return true
	}
	return false
}

func clearHighlights(out command.Sender, gs *engine.GameState) {
	for _, t := range gs.ClearHighlights() {
		command.DrawTile(out, t, engine.TileNormal)
	}
}

// clearBoardSelection redraws every highlighted tile and the selected card in
// their normal modes and drops the selection.
func clearBoardSelection(out command.Sender, gs *engine.GameState) {
	clearHighlights(out, gs)
	if pos := gs.ClearSelection(); pos != 0 {
		if card := gs.ActivePlayer().CardAt(pos); card != nil {
			command.DrawCard(out, card, pos, engine.CardNormal)
		}
	}
}

// showHand makes all six on-screen hand slots echo the active player's hand.
// Empty slots are deleted so no card of the other player stays visible.
func showHand(out command.Sender, gs *engine.GameState) {
	p := gs.ActivePlayer()
	for pos := 1; pos <= engine.MaxHandSlots; pos++ {
		card := p.CardAt(pos)
		if card == nil {
			command.DeleteCard(out, pos)
			continue
		}
		mode := engine.CardNormal
		if gs.SelectedCard() == pos {
			mode = engine.CardHighlighted
		}
		command.DrawCard(out, card, pos, mode)
	}
}

func highlight(out command.Sender, gs *engine.GameState, tiles []*engine.Tile, mode engine.TileMode) {
	for _, t := range tiles {
		gs.Highlight(t, mode)
		command.DrawTile(out, t, mode)
	}
}

// selectUnit makes u the selection and shows where it can move and attack
func selectUnit(out command.Sender, gs *engine.GameState, u *engine.Unit) {
	clearBoardSelection(out, gs)
	gs.SelectUnit(u)
	highlight(out, gs, gs.MoveTargets(u), engine.TileHighlighted)
	highlight(out, gs, gs.AttackTargets(u), engine.TileAttackable)
}

// selectCard makes the card at pos the selection and shows the summon tiles
func selectCard(out command.Sender, gs *engine.GameState, pos int) {
	clearBoardSelection(out, gs)
	gs.SelectCard(pos)
	command.DrawCard(out, gs.ActivePlayer().CardAt(pos), pos, engine.CardHighlighted)
	highlight(out, gs, gs.SummonTargets(gs.Turn()), engine.TileHighlighted)
}

// moveUnit issues a move. The unit's tile changes before the command is sent.
func moveUnit(out command.Sender, gs *engine.GameState, u *engine.Unit, dst *engine.Tile) error {
	yfirst := gs.PreferYFirst(u.Tile(), dst)
	if err := gs.MoveUnit(u, dst); err != nil {
		return err
	}
	if yfirst {
		command.MoveUnitToTileYFirst(out, u, dst, true)
	} else {
		command.MoveUnitToTile(out, u, dst)
	}
	return nil
}

// attack resolves a fight between adjacent units. The defender strikes back
// if it survives.
func attack(out command.Sender, gs *engine.GameState, attacker, defender *engine.Unit) {
	gs.MarkAttacked(attacker)

	command.PlayUnitAnimation(out, attacker, engine.AnimationAttack)
	if attacker.Avatar {
		command.PlayProjectileAnimation(out, gs.Config().Effect("projectile"), projectileMode, attacker.Tile(), defender.Tile())
	}
	if !damage(out, gs, defender, attacker.Attack) && !gs.GameOver() {
		command.PlayUnitAnimation(out, defender, engine.AnimationAttack)
		damage(out, gs, attacker, defender.Attack)
		if defender.Health > 0 {
			command.PlayUnitAnimation(out, defender, engine.AnimationIdle)
		}
	}
	if attacker.Health > 0 {
		command.PlayUnitAnimation(out, attacker, engine.AnimationIdle)
	}

	if gs.GameOver() {
		winner := gs.Winner()
		secs := gs.Config().NotificationSeconds
		command.AddPlayerNotification(out, winner, "Victory!", secs)
		command.AddPlayerNotification(out, winner.Other(), "Defeat", secs)
	}
}

// damage applies amount to u and reports whether it died
func damage(out command.Sender, gs *engine.GameState, u *engine.Unit, amount int) bool {
	command.PlayEffectAnimation(out, gs.Config().Effect("hit"), u.Tile())
	dead := gs.DamageUnit(u, amount)
	command.PlayUnitAnimation(out, u, engine.AnimationHit)
	command.SetUnitHealth(out, u, u.Health)
	if u.Avatar {
		command.SetPlayerHealth(out, gs.Player(u.Owner))
	}
	if dead {
		command.PlayUnitAnimation(out, u, engine.AnimationDeath)
		command.DeleteUnit(out, u)
		gs.RemoveUnit(u)
	}
	return dead
}

// summon plays the card at pos onto tile
func summon(out command.Sender, gs *engine.GameState, pos int, tile *engine.Tile) error {
	player := gs.ActivePlayer()
	card, err := gs.PlayCard(player.Slot, pos)
	if err != nil {
		return err
	}
	clearBoardSelection(out, gs)
	command.DeleteCard(out, pos)

	command.PlayEffectAnimation(out, gs.Config().Effect("summon"), tile)
	u, err := gs.SummonUnit(card, tile)
	if err != nil {
		return err
	}
	command.DrawUnit(out, u, tile)
	command.SetUnitAttack(out, u, u.Attack)
	command.SetUnitHealth(out, u, u.Health)
	command.SetPlayerMana(out, player)
	return nil
}
