// Package service provides the operations layer of the Tactics Duel server.
//
// The service package implements:
//   - Opening sessions against a named or default rule set
//   - Read-only session summaries and game-state snapshots
//   - Rule-set listing, loading and saving
//
// Core Interfaces:
//
// GameService is the facade used by the WebSocket, REST and MCP transports.
// SessionManager and ConfigManager are the storage contracts it depends on;
// session.Manager and config.Manager implement them.
//
// Reads never touch a session's game state directly. They run through the
// session's Inspect hook so they are serialised with inbound messages, and
// they give up after a short timeout if the session is busy.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	actor, err := gameService.OpenSession(ctx, client, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	snapshot, err := gameService.GetGameState(ctx, actor.ID())
package service
