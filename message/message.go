package message

import (
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// TimeLayout is the wall clock format stamped by the sending client.
	TimeLayout        = "15:04:05"
	MaxTextLength     = 2000
	MaxUsernameLength = 64
	MaxTimeLength     = 32

	// MaxFrameBytes bounds the encoded envelope of any valid message.
	// JSON escaping turns a single rune into at most six bytes (\u003c).
	MaxFrameBytes = 6*(MaxTextLength+MaxUsernameLength+MaxTimeLength) + 128
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ChatMessage is the unit of chat content. It is never mutated once created.
type ChatMessage struct {
	Text     string `json:"text" validate:"nonblank,max=2000"`
	Time     string `json:"time" validate:"required,max=32"`
	Username string `json:"username" validate:"nonblank,max=64"`
}

// Key identifies a message for duplicate suppression.
type Key struct {
	Time     string
	Username string
	Text     string
}

func New(username, text string, at time.Time) ChatMessage {
	return ChatMessage{
		Text:     text,
		Time:     at.Format(TimeLayout),
		Username: username,
	}
}

func (m ChatMessage) Key() Key {
	return Key{Time: m.Time, Username: m.Username, Text: m.Text}
}

func (m ChatMessage) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return nil
}

// Decode parses raw JSON into a ChatMessage and checks its shape.
func Decode(data []byte) (ChatMessage, error) {
	var m ChatMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ChatMessage{}, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	if err := m.Validate(); err != nil {
		return ChatMessage{}, err
	}
	return m, nil
}
