package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
	"github.com/wricardo/tactics-duel/game/events"
)

func createTestConfig() *engine.GameConfig {
	cfg := engine.DefaultGameConfig()
	cfg.Name = "Test Config"
	cfg.PreloadImages = []string{"assets/test/tile.png"}
	return cfg
}

func newTestActor(t *testing.T, opts ...Option) (*Actor, *command.Recorder) {
	t.Helper()
	rec := command.NewRecorder()
	actor, err := NewActor("test-session", rec, createTestConfig(), opts...)
	if err != nil {
		t.Fatalf("Failed to create actor: %v", err)
	}
	rec.Reset()
	return actor, rec
}

func stateJSON(t *testing.T, a *Actor) string {
	t.Helper()
	data, err := json.Marshal(a.gs)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}
	return string(data)
}

func TestNewActor_AnnouncesReady(t *testing.T) {
	rec := command.NewRecorder()
	actor, err := NewActor("abc", rec, createTestConfig())
	if err != nil {
		t.Fatalf("NewActor failed: %v", err)
	}

	if rec.Len() != 1 {
		t.Fatalf("Expected exactly one command, got %v", rec.Types())
	}
	ready, ok := rec.Commands()[0].(*command.ActorReadyCommand)
	if !ok {
		t.Fatalf("Expected actorReady, got %s", rec.Types()[0])
	}
	if len(ready.PreloadImages) != 1 || ready.PreloadImages[0] != "assets/test/tile.png" {
		t.Errorf("Expected configured preload list, got %v", ready.PreloadImages)
	}
	if actor.ID() != "abc" {
		t.Errorf("Expected ID abc, got %s", actor.ID())
	}
}

func TestNewActor_InvalidConfig(t *testing.T) {
	cfg := createTestConfig()
	cfg.ManaCap = 0
	rec := command.NewRecorder()

	if _, err := NewActor("x", rec, cfg); err == nil {
		t.Fatal("Expected error for invalid config")
	}
	if rec.Len() != 0 {
		t.Error("A session that failed to start should not announce itself")
	}
}

func TestHandle_UnknownType(t *testing.T) {
	actor, rec := newTestActor(t)
	before := stateJSON(t, actor)

	actor.Handle(context.Background(), []byte(`{"messagetype":"foo"}`))

	if rec.Len() != 0 {
		t.Errorf("Expected zero commands, got %v", rec.Types())
	}
	if stateJSON(t, actor) != before {
		t.Error("Unknown message should leave state unchanged")
	}
}

func TestHandle_MalformedJSON(t *testing.T) {
	actor, rec := newTestActor(t)

	actor.Handle(context.Background(), []byte(`{"messagetype":`))

	if rec.Len() != 1 || rec.Types()[0] != command.TypeError {
		t.Fatalf("Expected a single ERR, got %v", rec.Types())
	}
}

func TestHandle_FaultBecomesSingleError(t *testing.T) {
	registry := events.DefaultRegistry()
	registry.Register("explode", events.HandlerFunc(func(out command.Sender, gs *engine.GameState, msg events.Message) error {
		command.DrawTile(out, gs.Tiles()[0], engine.TileHighlighted)
		return errors.New("boom")
	}))
	registry.Register("panic", events.HandlerFunc(func(command.Sender, *engine.GameState, events.Message) error {
		panic("kaboom")
	}))
	actor, rec := newTestActor(t, WithRegistry(registry))

	t.Run("returned error", func(t *testing.T) {
		rec.Reset()
		actor.Handle(context.Background(), []byte(`{"messagetype":"explode"}`))
		if rec.Count(command.TypeError) != 1 {
			t.Fatalf("Expected exactly one ERR, got %v", rec.Types())
		}
		errCmd := rec.Commands()[rec.Len()-1].(*command.ErrorCommand)
		if errCmd.Error != "boom" {
			t.Errorf("Expected error text boom, got %q", errCmd.Error)
		}
	})

	t.Run("panic", func(t *testing.T) {
		rec.Reset()
		actor.Handle(context.Background(), []byte(`{"messagetype":"panic"}`))
		if rec.Len() != 1 || rec.Types()[0] != command.TypeError {
			t.Fatalf("Expected exactly one ERR, got %v", rec.Types())
		}
	})

	t.Run("next message still processed", func(t *testing.T) {
		rec.Reset()
		actor.Handle(context.Background(), []byte(`{"messagetype":"endturnclicked"}`))
		if rec.Count("setPlayer2Mana") != 1 {
			t.Errorf("Expected end turn to run after a fault, got %v", rec.Types())
		}
	})
}

func TestHandle_MissingFieldReportsError(t *testing.T) {
	actor, rec := newTestActor(t)

	actor.Handle(context.Background(), []byte(`{"messagetype":"tileclicked","tilex":1}`))

	if rec.Len() != 1 || rec.Types()[0] != command.TypeError {
		t.Fatalf("Expected a single ERR, got %v", rec.Types())
	}
}

func TestRun_SequentialDispatch(t *testing.T) {
	var order []int
	registry := events.NewRegistry()
	registry.Register("step", events.HandlerFunc(func(out command.Sender, gs *engine.GameState, msg events.Message) error {
		n, err := msg.Int("n")
		if err != nil {
			return err
		}
		order = append(order, n)
		return nil
	}))
	actor, _ := newTestActor(t, WithRegistry(registry))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go actor.Run(ctx)

	for i := 0; i < 20; i++ {
		msg := events.NewMessage("step", map[string]int{"n": i})
		if err := actor.Tell(ctx, msg.Raw()); err != nil {
			t.Fatalf("Tell failed: %v", err)
		}
	}

	var seen []int
	if err := actor.Inspect(ctx, func(*engine.GameState) {
		seen = append(seen, order...)
	}); err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if len(seen) != 20 {
		t.Fatalf("Expected 20 dispatched messages, got %d", len(seen))
	}
	for i, n := range seen {
		if n != i {
			t.Fatalf("Expected message %d at position %d, got %d", i, i, n)
		}
	}
	if actor.Processed() != 20 {
		t.Errorf("Expected 20 processed, got %d", actor.Processed())
	}
}

func TestRun_InspectSeesState(t *testing.T) {
	actor, rec := newTestActor(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go actor.Run(ctx)

	actor.Tell(ctx, []byte(`{"messagetype":"endturnclicked"}`))

	var turn engine.PlayerSlot
	if err := actor.Inspect(ctx, func(gs *engine.GameState) { turn = gs.Turn() }); err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if turn != engine.Player2 {
		t.Errorf("Expected player 2's turn, got %d", turn)
	}
	if rec.Count("setPlayer2Mana") != 1 {
		t.Errorf("Expected one mana refill, got %v", rec.Types())
	}
}

func TestClose(t *testing.T) {
	actor, _ := newTestActor(t)
	ctx := context.Background()

	finished := make(chan error, 1)
	go func() { finished <- actor.Run(ctx) }()

	actor.Close()
	actor.Close()

	select {
	case err := <-finished:
		if err != nil {
			t.Errorf("Expected clean stop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Close")
	}

	if err := actor.Tell(ctx, []byte(`{"messagetype":"heartbeat"}`)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
	if err := actor.Inspect(ctx, func(*engine.GameState) {}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed from Inspect, got %v", err)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	actor, _ := newTestActor(t)
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan error, 1)
	go func() { finished <- actor.Run(ctx) }()
	cancel()

	select {
	case err := <-finished:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	select {
	case <-actor.Done():
	default:
		t.Error("Actor should be closed when Run exits")
	}
}

func TestLastActivity(t *testing.T) {
	actor, _ := newTestActor(t)
	first := actor.LastActivity()

	time.Sleep(5 * time.Millisecond)
	actor.Handle(context.Background(), []byte(`{"messagetype":"heartbeat"}`))

	if !actor.LastActivity().After(first) {
		t.Error("Handling a message should update last activity")
	}
}
