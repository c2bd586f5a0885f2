package cache

import (
	"chat-relay/errors"
	"chat-relay/message"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key is the fixed cache identifier of the message log.
const Key = "chatMessages"

// Store keeps the whole message log as one JSON array in BadgerDB.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStore(db *badger.DB, log *slog.Logger) Store {
	return Store{db: db, log: log}
}

// Open opens (or creates) the cache directory at path.
func Open(path string, log *slog.Logger) (Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return Store{}, fmt.Errorf("could not open cache at %s: %w", path, err)
	}
	return NewStore(db, log), nil
}

// Load returns the cached log. A missing entry is an empty log.
func (s Store) Load() ([]message.ChatMessage, error) {
	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return []message.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	messages := make([]message.ChatMessage, 0)
	if err := json.Unmarshal(blob, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCorruptCache, err)
	}
	s.log.Debug("Cache loaded", "messages", len(messages))
	return messages, nil
}

// Persist overwrites the cached log with messages.
func (s Store) Persist(messages []message.ChatMessage) error {
	if messages == nil {
		messages = []message.ChatMessage{}
	}
	blob, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key), blob)
	})
}

// Clear removes the cached log.
func (s Store) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(Key))
	})
}

func (s Store) Close() error {
	return s.db.Close()
}
