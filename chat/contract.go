//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package chat

import "chat-relay/message"

// Emitter sends an event to the relay.
type Emitter interface {
	Emit(event message.Event, payload any) error
}

// Store persists the message log between runs.
type Store interface {
	Load() ([]message.ChatMessage, error)
	Persist(messages []message.ChatMessage) error
	Clear() error
}
