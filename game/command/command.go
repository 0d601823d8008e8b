package command

import "sync"

// Command is one outbound rendering instruction. Concrete commands are plain
// structs that encode to a JSON object carrying a "messagetype" field.
type Command interface {
	MessageType() string
}

// Sender delivers commands to the renderer of one session. Send is fire and
// forget: transport faults are the transport's to log, and commands are
// delivered in the order Send is called.
type Sender interface {
	Send(cmd Command)
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(cmd Command)

// Send calls f(cmd)
func (f SenderFunc) Send(cmd Command) {
	f(cmd)
}

// Discard is a Sender that drops every command
var Discard Sender = SenderFunc(func(Command) {})

// header is embedded by every command to carry its wire type
type header struct {
	Type string `json:"messagetype"`
}

// MessageType returns the wire type of the command
func (h header) MessageType() string {
	return h.Type
}

// Recorder is a Sender that keeps every command it receives in order
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send appends cmd to the recording
func (r *Recorder) Send(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

// Commands returns a copy of the recorded commands
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

// Types returns the message types of the recorded commands in order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.commands))
	for i, c := range r.commands {
		types[i] = c.MessageType()
	}
	return types
}

// Count returns how many recorded commands have the given message type
func (r *Recorder) Count(messageType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.commands {
		if c.MessageType() == messageType {
			n++
		}
	}
	return n
}

// Len returns the number of recorded commands
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

// Reset forgets everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}
