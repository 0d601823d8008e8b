package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
	"github.com/wricardo/tactics-duel/game/events"
)

const (
	tracerName = "github.com/wricardo/tactics-duel/game/session"

	defaultMailboxSize = 64
)

var ErrSessionClosed = errors.New("session closed")

// Option configures an Actor
type Option func(*Actor)

// WithRegistry replaces the bundled handler set
func WithRegistry(r *events.Registry) Option {
	return func(a *Actor) {
		a.registry = r
	}
}

// WithMailboxSize sets how many inbound messages may queue before Tell blocks
func WithMailboxSize(n int) Option {
	return func(a *Actor) {
		if n > 0 {
			a.mailboxSize = n
		}
	}
}

// task is one unit of work for the actor goroutine: either an inbound
// message or a read of the game state.
type task struct {
	ctx     context.Context
	raw     []byte
	inspect func(*engine.GameState)
	done    chan struct{}
}

// Actor owns the game state of one connection. Inbound messages are queued
// in a mailbox and dispatched one at a time by Run, so handlers never race.
type Actor struct {
	id     string
	out    command.Sender
	config *engine.GameConfig
	gs     *engine.GameState

	registry    *events.Registry
	mailboxSize int
	mailbox     chan task
	done        chan struct{}
	closeOnce   sync.Once

	createdAt    time.Time
	lastActivity atomic.Int64
	processed    atomic.Int64

	tracer trace.Tracer
}

// NewActor creates the game state for a session and announces it to the
// renderer with the configured preload list.
func NewActor(id string, out command.Sender, config *engine.GameConfig, opts ...Option) (*Actor, error) {
	gs, err := engine.NewGameState(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game state: %w", err)
	}

	a := &Actor{
		id:          id,
		out:         out,
		config:      config,
		gs:          gs,
		registry:    events.DefaultRegistry(),
		mailboxSize: defaultMailboxSize,
		done:        make(chan struct{}),
		createdAt:   time.Now(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.mailbox = make(chan task, a.mailboxSize)
	a.touch()

	command.ActorReady(out, config.PreloadImages)
	return a, nil
}

// ID returns the session identifier
func (a *Actor) ID() string { return a.id }

// Config returns the rule set the session was opened with
func (a *Actor) Config() *engine.GameConfig { return a.config }

// CreatedAt returns when the session was opened
func (a *Actor) CreatedAt() time.Time { return a.createdAt }

// LastActivity returns when the session last received a message
func (a *Actor) LastActivity() time.Time {
	return time.Unix(0, a.lastActivity.Load())
}

// Processed returns how many inbound messages have been dispatched
func (a *Actor) Processed() int64 { return a.processed.Load() }

func (a *Actor) touch() {
	a.lastActivity.Store(time.Now().UnixNano())
}

// Run consumes the mailbox until ctx is cancelled or the actor is closed.
// It must be the only goroutine calling Handle.
func (a *Actor) Run(ctx context.Context) error {
	defer a.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.done:
			return nil
		case t := <-a.mailbox:
			if t.inspect != nil {
				t.inspect(a.gs)
				close(t.done)
				continue
			}
			a.Handle(t.ctx, t.raw)
		}
	}
}

// Tell queues an inbound message for Run
func (a *Actor) Tell(ctx context.Context, raw []byte) error {
	select {
	case <-a.done:
		return ErrSessionClosed
	default:
	}

	select {
	case a.mailbox <- task{ctx: ctx, raw: raw}:
		return nil
	case <-a.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inspect runs fn against the game state on the actor goroutine and waits
// for it to finish. fn must not retain the state.
func (a *Actor) Inspect(ctx context.Context, fn func(gs *engine.GameState)) error {
	t := task{inspect: fn, done: make(chan struct{})}
	select {
	case a.mailbox <- t:
	case <-a.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-t.done:
		return nil
	case <-a.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the actor. Queued messages are discarded along with the game state.
func (a *Actor) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
	})
}

// Done is closed once the actor stops
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Handle dispatches one raw message on the calling goroutine. Unknown types
// are logged and dropped; malformed input and handler faults are reported to
// the renderer as a single ERR and the session carries on.
func (a *Actor) Handle(ctx context.Context, raw []byte) {
	a.touch()
	a.processed.Add(1)

	_, span := a.tracer.Start(ctx, "session.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("session.id", a.id)))
	defer span.End()

	msg, err := events.ParseMessage(raw)
	if err != nil {
		a.fail(span, err)
		return
	}
	span.SetAttributes(attribute.String("message.type", msg.Type()))

	h, ok := a.registry.Lookup(msg.Type())
	if !ok {
		log.Printf("session %s: no handler for message type %q, dropping", a.id, msg.Type())
		span.SetAttributes(attribute.Bool("message.dropped", true))
		return
	}

	if err := a.process(h, msg); err != nil {
		a.fail(span, err)
	}
}

func (a *Actor) process(h events.Handler, msg events.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s handler panicked: %v", msg.Type(), r)
		}
	}()
	return h.Process(a.out, a.gs, msg)
}

func (a *Actor) fail(span trace.Span, err error) {
	log.Printf("session %s: %v", a.id, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	command.ReportError(a.out, err.Error())
}
