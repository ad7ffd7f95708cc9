package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tally/pkg/derive"
	"github.com/aretw0/tally/pkg/domain"
)

// holding pairs a token account with its storage address. Custody changes
// rewrite the Owner field; the storage address never moves.
type holding struct {
	addr  domain.Address
	token *domain.TokenAccount
}

// CreateMint creates a fresh mint account at a random address with the
// given authority. The authority funds the rent.
func (e *Engine) CreateMint(ctx context.Context, authority domain.Address) (domain.Address, error) {
	mintAddr := domain.NewAddress()

	err := e.run(ctx, func(ctx context.Context, t *tx) error {
		mint := &domain.Mint{Authority: authority}
		data := mint.Encode()
		rent := e.RentExemptMinimum(len(data))
		if err := t.debit(ctx, authority, rent); err != nil {
			return fmt.Errorf("fund mint rent: %w", err)
		}
		return t.put(ctx, &domain.Account{Address: mintAddr, Lamports: rent, Data: data})
	})
	return mintAddr, err
}

// MintTo issues amount units of mint to recipient's token account, creating
// the token account when needed. Only the mint authority may mint.
func (e *Engine) MintTo(ctx context.Context, authority, mintAddr, recipient domain.Address, amount uint64) error {
	tokenAddr, _, err := derive.Derive(derive.TagTokenAccount, recipient.Bytes(), mintAddr.Bytes())
	if err != nil {
		return err
	}

	return e.run(ctx, func(ctx context.Context, t *tx) error {
		mintAccount, err := t.get(ctx, mintAddr)
		if err != nil {
			return fmt.Errorf("mint %s: %w", mintAddr, err)
		}
		mint, err := domain.DecodeMint(mintAccount.Data)
		if err != nil {
			return err
		}
		if mint.Authority != authority {
			return fmt.Errorf("mint authority %s: %w", authority, domain.ErrNotAuthorized)
		}

		token := &domain.TokenAccount{Mint: mintAddr, Owner: recipient}
		account, err := t.get(ctx, tokenAddr)
		switch {
		case err == nil:
			if token, err = domain.DecodeTokenAccount(account.Data); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrAccountNotFound):
			data := token.Encode()
			rent := e.RentExemptMinimum(len(data))
			if err := t.debit(ctx, authority, rent); err != nil {
				return fmt.Errorf("fund token account rent: %w", err)
			}
			account = &domain.Account{Address: tokenAddr, Lamports: rent, Data: data}
		default:
			return err
		}

		token.Amount += amount
		mint.Supply += amount

		account.Data = token.Encode()
		if err := t.put(ctx, account); err != nil {
			return err
		}
		mintAccount.Data = mint.Encode()
		return t.put(ctx, mintAccount)
	})
}

// TokenBalance returns how many units of mint the owner's token account
// holds; zero when the account does not exist.
func (e *Engine) TokenBalance(ctx context.Context, owner, mintAddr domain.Address) (uint64, error) {
	tokenAddr, _, err := derive.Derive(derive.TagTokenAccount, owner.Bytes(), mintAddr.Bytes())
	if err != nil {
		return 0, err
	}

	account, err := e.store.Get(ctx, tokenAddr)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	token, err := domain.DecodeTokenAccount(account.Data)
	if err != nil {
		return 0, err
	}
	return token.Amount, nil
}

// TokenCustodian returns the current owner of the token account for
// (holder, mint) — the structural "is attached" signal for tree nodes.
func (e *Engine) TokenCustodian(ctx context.Context, holder, mintAddr domain.Address) (domain.Address, error) {
	tokenAddr, _, err := derive.Derive(derive.TagTokenAccount, holder.Bytes(), mintAddr.Bytes())
	if err != nil {
		return domain.Address{}, err
	}

	account, err := e.store.Get(ctx, tokenAddr)
	if err != nil {
		return domain.Address{}, fmt.Errorf("token account %s: %w", tokenAddr, err)
	}
	token, err := domain.DecodeTokenAccount(account.Data)
	if err != nil {
		return domain.Address{}, err
	}
	return token.Owner, nil
}

// loadHolding reads the token account for (owner, mint) and verifies the
// owner currently holds exactly one unit under their own authority.
func (e *Engine) loadHolding(ctx context.Context, t *tx, owner, mintAddr domain.Address) (*holding, error) {
	tokenAddr, _, err := derive.Derive(derive.TagTokenAccount, owner.Bytes(), mintAddr.Bytes())
	if err != nil {
		return nil, err
	}

	account, err := t.get(ctx, tokenAddr)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("no token account for mint %s: %w", mintAddr, domain.ErrNotTokenHolder)
		}
		return nil, err
	}
	token, err := domain.DecodeTokenAccount(account.Data)
	if err != nil {
		return nil, err
	}
	if token.Owner != owner || token.Amount != 1 {
		return nil, fmt.Errorf("mint %s held by %s amount %d: %w",
			mintAddr, token.Owner, token.Amount, domain.ErrNotTokenHolder)
	}
	return &holding{addr: tokenAddr, token: token}, nil
}

// setTokenOwner rewrites the custody of a held token.
func (e *Engine) setTokenOwner(ctx context.Context, t *tx, h *holding, newOwner domain.Address) error {
	h.token.Owner = newOwner

	account, err := t.get(ctx, h.addr)
	if err != nil {
		return err
	}
	account.Data = h.token.Encode()
	return t.put(ctx, account)
}
