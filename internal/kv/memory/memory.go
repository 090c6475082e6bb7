package memory

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
)

// Store is an in-process key-value store. Contents vanish on restart.
type Store struct {
	mu    sync.Mutex
	items map[string]string
}

func New() *Store {
	return &Store{items: map[string]string{}}
}

// NewSeeded returns a store whose key holds the trimmed content of the file
// at path. A missing or empty file leaves the store empty.
func NewSeeded(key, path string) *Store {
	s := New()
	b, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if v := strings.TrimSpace(string(b)); v != "" {
		s.items[key] = v
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

// Set overwrites the value stored under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
