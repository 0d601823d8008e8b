// Package engine provides the board and entity model for a Tactics Duel game.
//
// The engine package implements:
//   - A 1-based tile grid with at most one unit per tile
//   - Units, cards and the fixed two-slot player relation
//   - Hand management with six addressable positions
//   - Turn, round and mana refill bookkeeping
//   - Movement, attack and summon target rules
//   - Rule-set loading and validation
//
// Core Types:
//
// GameState is the root aggregate. It is owned by exactly one session and is
// never shared between goroutines; all mutation happens inside that session's
// dispatch loop. Tiles hold a weak reference to the unit standing on them and
// units point back at their tile, so a unit's position is always read from the
// board rather than duplicated.
//
// Usage:
//
//	gs, err := engine.NewGameState(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	avatar := gs.Player(engine.Player1).Units()[0]
//	dst, _ := gs.Tile(3, 3)
//	if err := gs.MoveUnit(avatar, dst); err != nil {
//		log.Fatal(err)
//	}
//
// Movement:
//
// MoveUnit updates the logical position at the moment the move is issued. The
// unit is then tracked as awaiting a stop confirmation from the client until
// StopMoving is called, which lets callers gate intents while the renderer is
// still animating.
package engine
