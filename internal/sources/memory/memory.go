package memory

import (
	"context"
	"fmt"
	"sync"

	"ventas/internal/core"
	"ventas/internal/sources"
)

// Store keeps transactions in memory. It backs tests and demo runs.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

var (
	_ sources.TransactionReader   = (*Store)(nil)
	_ sources.TransactionImporter = (*Store)(nil)
)

func New(txs ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...)}
}

// ReadTransactions returns a copy of the stored rows.
func (s *Store) ReadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// ImportTransactions validates and appends a batch. Nothing is stored when a row is invalid.
func (s *Store) ImportTransactions(_ context.Context, batchID string, txs []core.Transaction) (int, error) {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("batch %s row %d: %w", batchID, i+1, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, txs...)
	return len(txs), nil
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
