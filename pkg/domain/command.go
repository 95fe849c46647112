package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandSubmit is the only command type the orchestrator acts on.
const CommandSubmit = "submit"

// DefaultEnvelopeKeys lists the fields a UI surface may wrap a command in.
// Design hosts typically post `{pluginMessage: {...}}` from the iframe.
var DefaultEnvelopeKeys = []string{"pluginMessage", "data", "message"}

// ErrInvalidCommand is returned when an inbound message is not a JSON object.
var ErrInvalidCommand = errors.New("invalid command")

// Command is an inbound message from the UI surface.
type Command struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// IsSubmit reports whether the command asks for a fill.
func (c Command) IsSubmit() bool {
	return c.Type == CommandSubmit
}

// Unwrap strips at most one envelope level from a raw message.
// A message that already carries a "type" field is returned untouched.
func Unwrap(data []byte, keys []string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if _, ok := fields["type"]; ok {
		return data, nil
	}
	for _, key := range keys {
		inner, ok := fields[key]
		if !ok {
			continue
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(inner, &probe); err != nil {
			// Not an object; maybe a plain string field.
			continue
		}
		return inner, nil
	}
	return data, nil
}

// DecodeCommand decodes a bare or one-level-wrapped command.
func DecodeCommand(data []byte, keys ...string) (Command, error) {
	if len(keys) == 0 {
		keys = DefaultEnvelopeKeys
	}
	raw, err := Unwrap(data, keys)
	if err != nil {
		return Command{}, err
	}
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return cmd, nil
}
