// Package memory provides an in-process SnapshotPort.
package memory

import (
	"context"
	"slices"
	"sync"

	"hitstory/internal/ports"
)

// Store keeps snapshots in a map. The zero value is not usable; call New.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ ports.SnapshotPort = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	if !ok {
		return nil, ports.ErrSnapshotNotFound
	}
	return slices.Clone(data), nil
}

func (s *Store) Set(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = slices.Clone(data)
	return nil
}

func (s *Store) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

// Len reports how many keys are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
