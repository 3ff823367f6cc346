package repositories

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamlist/internal/shared"
)

// Backend is the raw key/value storage behind a [StateStore].
type Backend interface {
	Get(key string) ([]byte, bool, error) // Get returns the stored bytes and whether the key exists
	Set(key string, value []byte) error   // Set stores value under key, replacing any previous value
	Delete(key string) error              // Delete removes key; deleting a missing key is not an error
	Keys() ([]string, error)              // Keys lists stored keys in ascending order
}

// StateStore serializes values to JSON over a [Backend].
//
// A nil *StateStore, or one without a backend, behaves as an unavailable store.
type StateStore struct {
	backend Backend
	logger  *log.Logger
}

// NewStateStore creates a [StateStore] over backend. The logger defaults to [shared.NewLogger].
func NewStateStore(backend Backend, logger *log.Logger) *StateStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &StateStore{backend: backend, logger: logger}
}

// Available reports whether the store has a backend to read from and write to.
func (s *StateStore) Available() bool {
	return s != nil && s.backend != nil
}

// WithLogger returns a store over the same backend that logs to logger.
func (s *StateStore) WithLogger(logger *log.Logger) *StateStore {
	if s == nil {
		return nil
	}
	return NewStateStore(s.backend, logger)
}

// Read returns the value stored under key decoded as T, or def when the store is unavailable, the key is absent,
// or the stored value fails to parse.
func Read[T any](s *StateStore, key string, def T) T {
	if !s.Available() {
		return def
	}

	data, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warn("failed to read state", "key", key, "error", err)
		return def
	}
	if !ok || len(data) == 0 {
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Warn("discarding unreadable state", "key", key, "error", err)
		return def
	}

	return value
}

// Write serializes value and stores it under key. Failures are logged and ignored.
func (s *StateStore) Write(key string, value any) {
	if !s.Available() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode state", "key", key, "error", err)
		return
	}

	if err := s.backend.Set(key, data); err != nil {
		s.logger.Warn("failed to write state", "key", key, "error", err)
	}
}

// Clear removes keys from the store. Failures are logged and ignored.
func (s *StateStore) Clear(keys ...string) {
	if !s.Available() {
		return
	}

	for _, key := range keys {
		if err := s.backend.Delete(key); err != nil {
			s.logger.Warn("failed to clear state", "key", key, "error", err)
		}
	}
}

// Dump returns every stored key with its raw JSON value.
func (s *StateStore) Dump() (map[string]json.RawMessage, error) {
	if !s.Available() {
		return nil, shared.ErrStorageUnavailable
	}

	keys, err := s.backend.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	out := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		data, ok, err := s.backend.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if !json.Valid(data) {
			data, _ = json.Marshal(string(data))
		}
		out[key] = json.RawMessage(data)
	}

	return out, nil
}

func sortedKeys(keys []string) []string {
	sort.Strings(keys)
	return keys
}
