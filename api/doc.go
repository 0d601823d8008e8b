// Package api provides the HTTP surface of the duel server.
//
// Endpoints:
//
// Sessions:
//   - GET /api/sessions - List live sessions (?sort=created|activity, ?order=asc|desc, ?limit=N)
//   - GET /api/sessions/{id} - Headline state of one session
//   - GET /api/sessions/{id}/state - Full board snapshot
//   - DELETE /api/sessions/{id} - Close a session and drop its connection
//
// Rule sets:
//   - GET /api/configs - List valid rule sets
//   - GET /api/configs/{name} - Fetch one rule set
//   - POST /api/configs - Save a rule set: {"config_id": "mine", "config": {...}}
//
// Other:
//   - GET /health - Liveness and session count
//   - /ws - WebSocket endpoint; every connection opens a new session (?ruleset=name)
//   - / - Static renderer files
//
// Sessions are never created over REST. Reads are answered from inside the
// session goroutine, so a snapshot never observes a half-applied event.
//
// Error Handling:
//
// Errors are returned as JSON with a status derived from the error:
//
//	{"error": "session not found: 3f2a..."}
//
// Unknown sessions and rule sets map to 404, malformed IDs and invalid rule
// sets to 400, a session closing mid-read to 410, and a session too busy to
// answer in time to 503.
package api
