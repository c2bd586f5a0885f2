package message

import (
	"chat-relay/errors"
	"encoding/json"
	"fmt"
)

type Event string

const (
	SendMessage    Event = "send_message"
	ReceiveMessage Event = "receive_message"
	Ping           Event = "ping"
	Pong           Event = "pong"
)

// Envelope is the frame exchanged over the socket. Data is kept raw so the
// relay can forward it without re-encoding.
type Envelope struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func Encode(event Event, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("could not marshal %s payload: %w", event, err)
		}
		env.Data = data
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	if len(frame) > MaxFrameBytes {
		return nil, fmt.Errorf("%w: %d bytes", errors.ErrFrameTooLarge, len(frame))
	}
	return frame, nil
}

// Forward wraps already encoded data under a new event name.
func Forward(event Event, data json.RawMessage) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data})
}

func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("could not unmarshal envelope: %w", err)
	}
	return env, nil
}
