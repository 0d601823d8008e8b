// Package events maps inbound client intents to the handlers that apply the
// duel rules.
//
// A Registry binds a case-sensitive message type to a Handler. The session
// looks up the handler for each inbound Message and runs it with the
// session's command channel and game state. Handlers run one at a time per
// session, so they mutate the state freely and emit commands in the order the
// renderer should apply them.
//
// The bundled handlers act on behalf of whichever player is active, so a
// single connection can drive both sides of a duel.
//
// Movement is two-phase. A move updates the unit's tile as soon as it is
// issued, and the renderer later reports the end of the animation with
// unitstopped. An attack that requires moving first is recorded as pending
// and resolved by the unitstopped handler.
package events
