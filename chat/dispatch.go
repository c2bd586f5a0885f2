package chat

import (
	"chat-relay/message"
)

// WithPongHook registers fn to be called when the relay answers a ping.
func WithPongHook(fn func()) Option {
	return func(s *Session) { s.onPong = fn }
}

// Handle routes one relay frame into the session. It is meant to be the
// single subscription handler for the lifetime of the connection.
func (s *Session) Handle(env message.Envelope) {
	switch env.Event {
	case message.ReceiveMessage:
		msg, err := message.Decode(env.Data)
		if err != nil {
			s.log.Warn("Dropping inbound message", "error", err)
			return
		}
		if _, err := s.OnIncoming(msg); err != nil {
			s.log.Error("Inbound message not stored", "error", err)
		}
	case message.Pong:
		s.log.Debug("Pong received")
		if s.onPong != nil {
			s.onPong()
		}
	default:
		s.log.Warn("Unknown event from relay", "event", env.Event)
	}
}
