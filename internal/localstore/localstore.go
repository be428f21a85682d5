// Package localstore persists small pieces of client state as a JSON
// object of key to value, rewritten atomically on every change.
package localstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// Keys used by the browse session
const (
	KeyFavorites      = "favorites"
	KeyRecentlyViewed = "recentlyViewed"
)

// Store is a file backed key/value store, safe for concurrent use
type Store struct {
	path string
	log  *slog.Logger

	mu     sync.Mutex
	values map[string]json.RawMessage
}

// Open loads the state file at path. A missing file yields an empty store;
// an unreadable or corrupt one is logged and also treated as empty.
func Open(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("localstore: empty path")
	}

	s := &Store{path: path, log: log, values: map[string]json.RawMessage{}}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		log.Warn("cannot read local state, starting empty", "op", "localstore.Open", "path", path, "error", err)
		return s, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		log.Warn("corrupt local state, starting empty", "op", "localstore.Open", "path", path, "error", err)
		s.values = map[string]json.RawMessage{}
	}
	return s, nil
}

// Load decodes the value stored under key into dst.
// It reports false when the key is absent or its value cannot be decoded.
func (s *Store) Load(key string, dst any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("localstore: decode %q: %w", key, err)
	}
	return true, nil
}

// Save stores v under key and flushes the state file
func (s *Store) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("localstore: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = raw
	return s.flush()
}

// Delete removes key and flushes the state file
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

// flush must be called with mu held
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore: encode state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("localstore: create dir: %w", err)
		}
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("localstore: write %s: %w", s.path, err)
	}
	return nil
}
