package ledger

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no ledger has been stored for an encounter
var ErrNotFound = errors.New("ledger not found")

// Store is the key-value persistence scoped to an encounter
type Store interface {
	Get(ctx context.Context, id EncounterID) (*Ledger, error)
	Set(ctx context.Context, id EncounterID, l *Ledger) error
	Unset(ctx context.Context, id EncounterID) error
}

// MemoryStore keeps ledgers in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	ledgers map[EncounterID]*Ledger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ledgers: make(map[EncounterID]*Ledger),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id EncounterID) (*Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

func (s *MemoryStore) Set(ctx context.Context, id EncounterID, l *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledgers[id] = l.Clone()
	return nil
}

func (s *MemoryStore) Unset(ctx context.Context, id EncounterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ledgers, id)
	return nil
}
