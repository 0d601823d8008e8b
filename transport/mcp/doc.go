// Package mcp exposes the duel server to MCP clients.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so the MCP surface sees exactly what HTTP callers see and never
// touches session state directly.
//
// Tools:
//   - list_sessions: live sessions with round and turn
//   - get_session: headline state of one session
//   - board_view: ASCII board with a unit legend
//   - close_session: close a session and drop its connection
//   - list_configs: available rule sets
//   - protocol_reference: WebSocket event and command types
//
// Transport Modes:
//   - Stdio: ServeStdio for local MCP clients
//   - HTTP: HTTPHandler answers JSON-RPC messages posted to /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	router.Handle("/mcp", client.HTTPHandler())
//
//	// or
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
