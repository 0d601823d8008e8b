// Package websocket carries the duel protocol between a browser renderer and
// its session.
//
// Every connection to /ws opens a fresh session. Inbound text frames are
// client events and go straight into the session mailbox. Outbound commands
// are encoded on the session goroutine, queued on the client, and written one
// JSON object per frame by the write pump. When the queue is full or the
// connection is gone, commands are dropped and logged.
//
// The optional ruleset query parameter picks a rule set:
//
//	ws://localhost:8080/ws?ruleset=skirmish
//
// An unknown rule set produces a single ERR command followed by a close.
//
// Usage:
//
//	hub := websocket.NewHub(gameService)
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("ruleset"))
//	})
//
// Closing the socket closes the session. Deleting the session elsewhere
// closes the socket.
package websocket
