package chat

import (
	"chat-relay/errors"
	"chat-relay/message"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

type State int

const (
	Unauthenticated State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	default:
		return "unauthenticated"
	}
}

// Session holds one user's identity and message log.
// Every log mutation happens under mu, so inbound broadcasts and user
// actions never interleave.
type Session struct {
	log      *slog.Logger
	emitter  Emitter
	store    Store
	now      func() time.Time
	onAppend func(message.ChatMessage)
	onPong   func()

	mu       sync.Mutex
	username string
	messages []message.ChatMessage
}

type Option func(*Session)

// WithClock replaces the clock used to stamp outgoing messages.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithAppendHook registers fn to be called after each appended message,
// outside the session lock.
func WithAppendHook(fn func(message.ChatMessage)) Option {
	return func(s *Session) { s.onAppend = fn }
}

func NewSession(log *slog.Logger, emitter Emitter, store Store, opts ...Option) *Session {
	s := &Session{
		log:      log,
		emitter:  emitter,
		store:    store,
		now:      time.Now,
		messages: []message.ChatMessage{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadCache seeds the log from the store. It must run before any user
// interaction. A corrupt cache yields an empty log.
func (s *Session) LoadCache() error {
	messages, err := s.store.Load()
	switch {
	case stderrors.Is(err, errors.ErrCorruptCache):
		s.log.Warn("Ignoring corrupt message cache", "error", err)
		messages = []message.ChatMessage{}
	case err != nil:
		return fmt.Errorf("could not load message cache: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = messages
	return nil
}

func (s *Session) Login(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.ErrEmptyUsername
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = name
	return nil
}

// Logout forgets the identity but keeps the log.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.username == "" {
		return Unauthenticated
	}
	return Active
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Submit sends text to the relay. Nothing is appended locally: the message
// shows up when the relay echoes it back.
func (s *Session) Submit(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyText
	}
	username := s.Username()
	if username == "" {
		return errors.ErrNotLoggedIn
	}

	msg := message.New(username, text, s.now())
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := s.emitter.Emit(message.SendMessage, msg); err != nil {
		return fmt.Errorf("could not send message: %w", err)
	}
	return nil
}

// OnIncoming appends msg unless an entry with the same key already exists.
// It reports whether the log changed.
func (s *Session) OnIncoming(msg message.ChatMessage) (bool, error) {
	if err := msg.Validate(); err != nil {
		s.log.Warn("Dropping inbound message", "error", err)
		return false, err
	}

	appended, err := s.append(msg)
	if appended && s.onAppend != nil {
		s.onAppend(msg)
	}
	return appended, err
}

func (s *Session) append(msg message.ChatMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := msg.Key()
	if lo.ContainsBy(s.messages, func(m message.ChatMessage) bool { return m.Key() == key }) {
		s.log.Debug("Duplicate message ignored", "username", msg.Username, "time", msg.Time)
		return false, nil
	}

	s.messages = append(s.messages, msg)
	if err := s.store.Persist(s.messages); err != nil {
		// Keep memory and cache in step: a later redelivery can retry.
		s.messages = s.messages[:len(s.messages)-1]
		return false, fmt.Errorf("could not persist message log: %w", err)
	}
	return true, nil
}

// Clear drops the cached copy and empties the log. On failure the log is
// left untouched.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("could not clear message cache: %w", err)
	}
	s.messages = []message.ChatMessage{}
	return nil
}

// Messages returns a copy of the log.
func (s *Session) Messages() []message.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]message.ChatMessage{}, s.messages...)
}

// IsOwn reports whether msg was sent under the current identity.
func (s *Session) IsOwn(msg message.ChatMessage) bool {
	username := s.Username()
	return username != "" && msg.Username == username
}
