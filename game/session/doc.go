// Package session runs one duel per client connection.
//
// The session package implements:
//   - An Actor per connection that owns its GameState
//   - A mailbox drained by a single goroutine for strict sequential dispatch
//   - Conversion of malformed input and handler faults into ERR commands
//   - A thread-safe Manager for opening, listing and expiring sessions
//
// Core Types:
//
// Actor receives raw inbound messages through Tell and dispatches them in
// order from Run, which the Manager starts when it opens the session.
// Nothing outside the actor goroutine touches the game state; read-only
// callers such as the REST API go through Inspect, which runs a function on
// that goroutine between messages.
//
// Manager indexes live actors by a UUID assigned when the session opens.
// Sessions are never persisted: closing a session discards its state.
//
// Usage:
//
//	manager := session.NewManager()
//
//	actor, err := manager.Open(out, config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	actor.Tell(ctx, []byte(`{"messagetype":"initalize"}`))
//
// Tracing:
//
// Every dispatch is wrapped in a "session.dispatch" span carrying the
// session ID and message type. Spans go to the global OpenTelemetry tracer
// provider, which is a no-op unless telemetry is configured.
package session
