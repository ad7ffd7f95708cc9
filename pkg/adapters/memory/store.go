// Package memory provides the in-process AccountStore used by tests and
// single-node deployments.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Store implements ports.AccountStore in memory. Safe for concurrent use;
// a batch commits under one lock so readers never see partial batches.
type Store struct {
	mu   sync.RWMutex
	data map[domain.Address]*domain.Account
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[domain.Address]*domain.Account),
	}
}

// Get returns a deep copy of the account.
func (s *Store) Get(ctx context.Context, addr domain.Address) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.data[addr]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// Scan returns deep copies of every matching account.
func (s *Store) Scan(ctx context.Context, filter ports.Filter) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Account
	for _, account := range s.data {
		if filter.Match(account) {
			out = append(out, account.Clone())
		}
	}
	return out, nil
}

// Commit applies the whole batch under the write lock.
func (s *Store) Commit(ctx context.Context, ops []ports.WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		if op.Account == nil {
			delete(s.data, op.Addr)
			continue
		}
		s.data[op.Addr] = op.Account.Clone()
	}
	return nil
}
