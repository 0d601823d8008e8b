package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/service"
	"github.com/wricardo/tactics-duel/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound commands buffered per client before new ones are dropped.
	sendBufferSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The renderer is usually served from a different dev origin
		return true
	},
}

// Client is one browser connection. It is the command channel of exactly
// one session.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	actor *session.Actor

	mu     sync.Mutex
	closed bool
}

// Send encodes cmd immediately and queues it for the write pump. Commands
// sent to a closed or backed-up client are dropped and logged.
func (c *Client) Send(cmd command.Command) {
	data, err := json.Marshal(cmd)
	if err != nil {
		log.Printf("Failed to marshal %s command: %v", cmd.MessageType(), err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		log.Printf("Dropping %s for %s: connection closed", cmd.MessageType(), c.sessionID())
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Dropping %s for %s: send buffer full", cmd.MessageType(), c.sessionID())
	}
}

// closeSend stops the write pump once queued frames are flushed
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) sessionID() string {
	if c.actor == nil {
		return "unopened session"
	}
	return "session " + c.actor.ID()
}

// Hub maintains the set of connected clients
type Hub struct {
	service service.GameService

	// Registered clients by session ID
	clients map[string]*Client

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Count requests, answered from the Run loop
	count chan chan int
}

// NewHub creates a new WebSocket hub that opens sessions through svc
func NewHub(svc service.GameService) *Hub {
	return &Hub{
		service:    svc,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// ClientCount returns the number of connected clients. Run must be running.
func (h *Hub) ClientCount() int {
	reply := make(chan int)
	h.count <- reply
	return <-reply
}

// ServeWS upgrades the request and opens a new session for the connection
// using the named rule set, or the default when ruleset is empty.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, ruleset string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	go client.writePump()

	actor, err := h.service.OpenSession(context.Background(), client, ruleset)
	if err != nil {
		log.Printf("Failed to open session: %v", err)
		command.ReportError(client, err.Error())
		client.closeSend()
		return
	}
	client.actor = actor

	h.register <- client
	go client.readPump()
}

// registerClient adds a client for its session
func (h *Hub) registerClient(client *Client) {
	h.clients[client.actor.ID()] = client

	log.Printf("Client registered for session %s (total clients: %d)",
		client.actor.ID(), len(h.clients))
}

// unregisterClient removes a client and closes its session
func (h *Hub) unregisterClient(client *Client) {
	id := client.actor.ID()
	if h.clients[id] != client {
		return
	}
	delete(h.clients, id)
	client.closeSend()

	if err := h.service.DeleteSession(context.Background(), id); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		log.Printf("Failed to close session %s: %v", id, err)
	}

	log.Printf("Client unregistered from session %s (remaining clients: %d)", id, len(h.clients))
}

// readPump feeds inbound frames to the session mailbox
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// A session closed elsewhere (REST delete, idle cleanup) ends the connection
	go func() {
		<-c.actor.Done()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		if err := c.actor.Tell(context.Background(), message); err != nil {
			log.Printf("Session %s rejected message: %v", c.actor.ID(), err)
			break
		}
	}
}

// writePump writes one command per WebSocket frame
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
