package engine

import (
	"context"
	"errors"

	"github.com/aretw0/tally/pkg/domain"
)

// Airdrop credits lamports to an address, creating the system account when
// it does not exist yet. It is the faucet used by tests and local setups.
func (e *Engine) Airdrop(ctx context.Context, addr domain.Address, lamports uint64) error {
	return e.run(ctx, func(ctx context.Context, t *tx) error {
		return t.credit(ctx, addr, lamports)
	})
}

// Balance returns an account's lamport balance, zero for a missing or
// closed account.
func (e *Engine) Balance(ctx context.Context, addr domain.Address) (uint64, error) {
	account, err := e.store.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Lamports, nil
}
