package memory

import (
	"context"
	"fmt"
	"sync"

	"moneta/internal/core"
)

// Entry is one appended transaction with its owner.
type Entry struct {
	UserID      string
	Transaction core.Transaction
}

// Store keeps appended transactions in memory. Used for local development
// and as the ledger fake in tests.
type Store struct {
	mu    sync.Mutex
	items []Entry
}

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, userID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Entry{UserID: userID, Transaction: t})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.items...)
}
