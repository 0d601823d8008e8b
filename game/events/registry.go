package events

import (
	"sort"
	"sync"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
)

// Inbound message types
const (
	TypeInitialize   = "initalize"
	TypeHeartbeat    = "heartbeat"
	TypeTileClicked  = "tileclicked"
	TypeCardClicked  = "cardclicked"
	TypeUnitMoving   = "unitmoving"
	TypeUnitStopped  = "unitstopped"
	TypeEndTurn      = "endturnclicked"
	TypeOtherClicked = "otherclicked"

	// Some renderers report movement start in camel case
	typeUnitMovingAlt = "unitMoving"
)

// Handler processes one inbound message against the session's game state,
// emitting any rendering commands through out.
type Handler interface {
	Process(out command.Sender, gs *engine.GameState, msg Message) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(out command.Sender, gs *engine.GameState, msg Message) error

// Process calls f
func (f HandlerFunc) Process(out command.Sender, gs *engine.GameState, msg Message) error {
	return f(out, gs, msg)
}

// Registry maps message types to handlers. Lookups are case-sensitive.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// DefaultRegistry returns a registry holding the bundled duel rules
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeInitialize, HandlerFunc(handleInitialize))
	r.Register(TypeHeartbeat, HandlerFunc(handleHeartbeat))
	r.Register(TypeTileClicked, HandlerFunc(handleTileClicked))
	r.Register(TypeCardClicked, HandlerFunc(handleCardClicked))
	r.Register(TypeUnitMoving, HandlerFunc(handleUnitMoving))
	r.Register(typeUnitMovingAlt, HandlerFunc(handleUnitMoving))
	r.Register(TypeUnitStopped, HandlerFunc(handleUnitStopped))
	r.Register(TypeEndTurn, HandlerFunc(handleEndTurn))
	r.Register(TypeOtherClicked, HandlerFunc(handleOtherClicked))
	return r
}

// Register binds h to messageType, replacing any previous binding
func (r *Registry) Register(messageType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[messageType] = h
}

// Lookup returns the handler for messageType
func (r *Registry) Lookup(messageType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[messageType]
	return h, ok
}

// Types lists the registered message types in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
