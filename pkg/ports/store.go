package ports

import (
	"context"

	"github.com/aretw0/tally/pkg/domain"
)

// WriteOp is one staged mutation in an atomic batch. A nil Account closes
// (deletes) the address; otherwise the account is upserted.
type WriteOp struct {
	Addr    domain.Address
	Account *domain.Account
}

// Put stages an upsert for the account's address.
func Put(account *domain.Account) WriteOp {
	return WriteOp{Addr: account.Address, Account: account}
}

// Close stages a deletion of the address.
func Close(addr domain.Address) WriteOp {
	return WriteOp{Addr: addr}
}

// Filter selects accounts by kind and by an offset+byte-match predicate over
// the raw encoding, mirroring ledger-style memcmp scans. A zero Kind matches
// every kind; empty Bytes matches everything of that kind.
type Filter struct {
	Kind   byte
	Offset int
	Bytes  []byte
}

// Match applies the filter to a single account.
func (f Filter) Match(account *domain.Account) bool {
	if f.Kind != domain.KindSystem && account.Kind() != f.Kind {
		return false
	}
	if len(f.Bytes) == 0 {
		return true
	}
	end := f.Offset + len(f.Bytes)
	if f.Offset < 0 || end > len(account.Data) {
		return false
	}
	return string(account.Data[f.Offset:end]) == string(f.Bytes)
}

// AccountStore persists ledger accounts. Commit is all-or-nothing: either
// every op in the batch is applied or none is, and no reader observes a
// partially applied batch.
type AccountStore interface {
	// Get returns a copy of the account, or domain.ErrAccountNotFound.
	Get(ctx context.Context, addr domain.Address) (*domain.Account, error)

	// Scan returns copies of every account matching the filter. Order is
	// unspecified.
	Scan(ctx context.Context, filter Filter) ([]*domain.Account, error)

	// Commit atomically applies a batch of puts and closes.
	Commit(ctx context.Context, ops []WriteOp) error
}
