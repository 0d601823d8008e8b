package events

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrMissingField     = errors.New("missing field")
	ErrInvalidField     = errors.New("invalid field")
)

// Message is one inbound client intent. Fields are read lazily from the raw
// JSON so handlers only pay for what they use.
type Message struct {
	raw []byte
	typ string
}

// ParseMessage checks that raw is a JSON object and reads its messagetype.
// A missing messagetype is not an error; it yields an empty Type.
func ParseMessage(raw []byte) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return Message{}, fmt.Errorf("%w: invalid JSON", ErrMalformedMessage)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Message{}, fmt.Errorf("%w: expected an object", ErrMalformedMessage)
	}
	return Message{
		raw: raw,
		typ: root.Get("messagetype").String(),
	}, nil
}

// NewMessage builds a message of the given type with integer fields
func NewMessage(messageType string, fields map[string]int) Message {
	raw := fmt.Sprintf(`{"messagetype":%q`, messageType)
	for k, v := range fields {
		raw += fmt.Sprintf(`,%q:%d`, k, v)
	}
	raw += "}"
	return Message{raw: []byte(raw), typ: messageType}
}

// Type returns the message's messagetype
func (m Message) Type() string {
	return m.typ
}

// Raw returns the message as received
func (m Message) Raw() []byte {
	return m.raw
}

// Get returns an arbitrary field using gjson path syntax
func (m Message) Get(path string) gjson.Result {
	return gjson.GetBytes(m.raw, path)
}

// Int reads a required integer field
func (m Message) Int(field string) (int, error) {
	r := gjson.GetBytes(m.raw, field)
	if !r.Exists() {
		return 0, fmt.Errorf("%s: %w %q", m.typ, ErrMissingField, field)
	}
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		return 0, fmt.Errorf("%s: %w %q: %s is not an integer", m.typ, ErrInvalidField, field, r.Raw)
	}
	return int(r.Int()), nil
}
