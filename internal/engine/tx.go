package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// txEntry tracks one account inside a staged transaction.
type txEntry struct {
	account *domain.Account // staged state, nil when absent/deleted
	existed bool            // present in the store at first load
	dirty   bool
	deleted bool
}

// tx stages a transition's reads and writes. Reads see staged writes;
// nothing reaches the store until every check has passed and the batch is
// committed as one unit. Every address the transition looks at, even a miss,
// is recorded so the engine can lock the full set before the deciding pass.
type tx struct {
	store ports.AccountStore
	state map[domain.Address]*txEntry
	order []domain.Address
}

func newTx(store ports.AccountStore) *tx {
	return &tx{
		store: store,
		state: make(map[domain.Address]*txEntry),
	}
}

func (t *tx) entry(ctx context.Context, addr domain.Address) (*txEntry, error) {
	if entry, ok := t.state[addr]; ok {
		return entry, nil
	}

	entry := &txEntry{}
	account, err := t.store.Get(ctx, addr)
	switch {
	case err == nil:
		entry.account = account
		entry.existed = true
	case errors.Is(err, domain.ErrAccountNotFound):
		// Recorded as touched so creation races serialize on this address.
	default:
		return nil, err
	}

	t.state[addr] = entry
	t.order = append(t.order, addr)
	return entry, nil
}

// get returns the staged view of an account.
func (t *tx) get(ctx context.Context, addr domain.Address) (*domain.Account, error) {
	entry, err := t.entry(ctx, addr)
	if err != nil {
		return nil, err
	}
	if entry.account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return entry.account, nil
}

// exists reports whether the account is live in the staged view.
func (t *tx) exists(ctx context.Context, addr domain.Address) (bool, error) {
	entry, err := t.entry(ctx, addr)
	if err != nil {
		return false, err
	}
	return entry.account != nil, nil
}

// put stages an upsert.
func (t *tx) put(ctx context.Context, account *domain.Account) error {
	entry, err := t.entry(ctx, account.Address)
	if err != nil {
		return err
	}
	entry.account = account
	entry.dirty = true
	entry.deleted = false
	return nil
}

// credit adds lamports, creating a system account for a fresh address.
func (t *tx) credit(ctx context.Context, addr domain.Address, lamports uint64) error {
	entry, err := t.entry(ctx, addr)
	if err != nil {
		return err
	}
	if entry.account == nil {
		entry.account = &domain.Account{Address: addr}
	}
	entry.account.Lamports += lamports
	entry.dirty = true
	entry.deleted = false
	return nil
}

// debit removes lamports, failing without side effects when the balance is
// short.
func (t *tx) debit(ctx context.Context, addr domain.Address, lamports uint64) error {
	account, err := t.get(ctx, addr)
	if err != nil {
		return fmt.Errorf("debit %s: %w", addr, err)
	}
	if account.Lamports < lamports {
		return fmt.Errorf("debit %d from %s (balance %d): %w",
			lamports, addr, account.Lamports, domain.ErrInsufficientFunds)
	}
	account.Lamports -= lamports
	entry := t.state[addr]
	entry.dirty = true
	return nil
}

// closeTo stages account closure, sweeping its whole balance to recipient.
func (t *tx) closeTo(ctx context.Context, addr, recipient domain.Address) error {
	account, err := t.get(ctx, addr)
	if err != nil {
		return fmt.Errorf("close %s: %w", addr, err)
	}
	if err := t.credit(ctx, recipient, account.Lamports); err != nil {
		return err
	}

	entry := t.state[addr]
	entry.account = nil
	entry.deleted = true
	entry.dirty = false
	return nil
}

// touched returns every address the transaction has looked at.
func (t *tx) touched() []domain.Address {
	return append([]domain.Address(nil), t.order...)
}

// ops renders the staged writes as a store batch.
func (t *tx) ops() []ports.WriteOp {
	var out []ports.WriteOp
	for _, addr := range t.order {
		entry := t.state[addr]
		switch {
		case entry.deleted && entry.existed:
			out = append(out, ports.Close(addr))
		case entry.dirty && entry.account != nil:
			out = append(out, ports.Put(entry.account))
		}
	}
	return out
}

// openDelta is the net account count change (creates minus closes), used
// for the accounts-open gauge.
func (t *tx) openDelta() int {
	delta := 0
	for _, entry := range t.state {
		if entry.dirty && entry.account != nil && !entry.existed {
			delta++
		}
		if entry.deleted && entry.existed {
			delta--
		}
	}
	return delta
}
