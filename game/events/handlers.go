package events

import (
	"errors"
	"fmt"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
)

// handleInitialize re-sends the whole visible state, e.g. after a page load
func handleInitialize(out command.Sender, gs *engine.GameState, _ Message) error {
	gs.ResetMotion()

	for _, t := range gs.Tiles() {
		command.DrawTile(out, t, t.Mode())
	}
	for _, u := range gs.Units() {
		command.DrawUnit(out, u, u.Tile())
		command.SetUnitAttack(out, u, u.Attack)
		command.SetUnitHealth(out, u, u.Health)
	}
	for _, slot := range []engine.PlayerSlot{engine.Player1, engine.Player2} {
		command.SetPlayerHealth(out, gs.Player(slot))
		command.SetPlayerMana(out, gs.Player(slot))
	}

	showHand(out, gs)

	notify(out, gs, fmt.Sprintf("Player %d's turn", gs.Turn()))
	return nil
}

func handleHeartbeat(command.Sender, *engine.GameState, Message) error {
	return nil
}

func handleTileClicked(out command.Sender, gs *engine.GameState, msg Message) error {
	x, err := msg.Int("tilex")
	if err != nil {
		return err
	}
	y, err := msg.Int("tiley")
	if err != nil {
		return err
	}
	tile, ok := gs.Tile(x, y)
	if !ok {
		return fmt.Errorf("tileclicked (%d,%d): %w", x, y, engine.ErrOutOfBounds)
	}
	if blocked(out, gs) {
		return nil
	}

	switch {
	case gs.SelectedUnit() != nil:
		return clickWithUnit(out, gs, gs.SelectedUnit(), tile)
	case gs.SelectedCard() != 0:
		return clickWithCard(out, gs, gs.SelectedCard(), tile)
	}

	if occupant := tile.Unit(); occupant != nil && occupant.Owner == gs.Turn() {
		selectUnit(out, gs, occupant)
	}
	return nil
}

func clickWithUnit(out command.Sender, gs *engine.GameState, u *engine.Unit, tile *engine.Tile) error {
	occupant := tile.Unit()

	switch {
	case occupant != nil && occupant.Owner == u.Owner:
		if occupant == u {
			clearBoardSelection(out, gs)
			return nil
		}
		selectUnit(out, gs, occupant)
		return nil

	case occupant == nil && gs.IsHighlighted(tile, engine.TileHighlighted):
		clearBoardSelection(out, gs)
		return moveUnit(out, gs, u, tile)

	case occupant != nil && gs.IsHighlighted(tile, engine.TileAttackable):
		if engine.Adjacent(u.Tile(), tile) {
			clearBoardSelection(out, gs)
			attack(out, gs, u, occupant)
			return nil
		}
		approach := gs.ApproachTile(u, tile)
		clearBoardSelection(out, gs)
		if approach == nil {
			return nil
		}
		if err := moveUnit(out, gs, u, approach); err != nil {
			return err
		}
		gs.SetPendingAttack(u, tile)
		return nil
	}

	clearBoardSelection(out, gs)
	return nil
}

func clickWithCard(out command.Sender, gs *engine.GameState, pos int, tile *engine.Tile) error {
	if !tile.Occupied() && gs.IsHighlighted(tile, engine.TileHighlighted) {
		err := summon(out, gs, pos, tile)
		if errors.Is(err, engine.ErrInsufficientMana) {
			clearBoardSelection(out, gs)
			notify(out, gs, "Not enough mana")
			return nil
		}
		return err
	}

	if occupant := tile.Unit(); occupant != nil && occupant.Owner == gs.Turn() {
		selectUnit(out, gs, occupant)
		return nil
	}
	clearBoardSelection(out, gs)
	return nil
}

func handleCardClicked(out command.Sender, gs *engine.GameState, msg Message) error {
	pos, err := msg.Int("position")
	if err != nil {
		return err
	}
	if pos < 1 || pos > engine.MaxHandSlots {
		return fmt.Errorf("cardclicked position %d: %w", pos, engine.ErrInvalidPosition)
	}
	if blocked(out, gs) {
		return nil
	}

	card := gs.ActivePlayer().CardAt(pos)
	if card == nil {
		return nil
	}

	switch {
	case gs.SelectedCard() == pos:
		clearBoardSelection(out, gs)
	case card.Cost > gs.ActivePlayer().Mana:
		notify(out, gs, fmt.Sprintf("Not enough mana for %s", card.Name))
	default:
		selectCard(out, gs, pos)
	}
	return nil
}

func handleUnitMoving(_ command.Sender, gs *engine.GameState, msg Message) error {
	id, err := msg.Int("unit")
	if err != nil {
		return err
	}
	gs.MarkMoving(id)
	return nil
}

// handleUnitStopped clears motion tracking and resolves a move-then-attack.
// The unit's tile already points at its destination when this runs.
func handleUnitStopped(out command.Sender, gs *engine.GameState, msg Message) error {
	id, err := msg.Int("unit")
	if err != nil {
		return err
	}
	gs.StopMoving(id)

	u, ok := gs.Unit(id)
	if !ok {
		return nil
	}
	target, ok := gs.TakePendingAttack(id)
	if !ok || gs.GameOver() {
		return nil
	}
	defender := target.Unit()
	if defender == nil || defender.Owner == u.Owner || u.HasAttacked() || !engine.Adjacent(u.Tile(), target) {
		return nil
	}
	attack(out, gs, u, defender)
	return nil
}

func handleEndTurn(out command.Sender, gs *engine.GameState, _ Message) error {
	if blocked(out, gs) {
		return nil
	}
	// showHand redraws every slot below, so the selected card is not redrawn here
	clearHighlights(out, gs)
	gs.ClearSelection()

	next := gs.EndTurn()
	player := gs.Player(next)
	command.SetPlayerMana(out, player)

	secs := gs.Config().NotificationSeconds
	card, _, err := gs.DrawCard(next)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrDeckEmpty):
		command.AddPlayerNotification(out, next, "Your deck is empty", secs)
	case errors.Is(err, engine.ErrHandFull):
		command.AddPlayerNotification(out, next, fmt.Sprintf("Hand full, %s was burned", card.Name), secs)
	default:
		return err
	}
	// One connection plays both sides, so the hand on screen switches owner
	showHand(out, gs)

	command.AddPlayerNotification(out, next, fmt.Sprintf("Player %d's turn", next), secs)
	return nil
}

func handleOtherClicked(out command.Sender, gs *engine.GameState, _ Message) error {
	if !gs.HasSelection() && len(gs.Highlighted()) == 0 {
		return nil
	}
	clearBoardSelection(out, gs)
	return nil
}
