package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tally/pkg/derive"
	"github.com/aretw0/tally/pkg/domain"
)

// CreateList creates a TodoList owned by owner, keyed by
// derive("todolist", owner, name). The owner funds the account's rent.
func (e *Engine) CreateList(ctx context.Context, owner domain.Address, name string, capacity uint16) (domain.Address, error) {
	addr, nonce, err := derive.Derive(derive.TagTodoList, owner.Bytes(), derive.NameSeed(name))
	if err != nil {
		return domain.Address{}, err
	}

	err = e.do(ctx, domain.OpNewList, func(ctx context.Context, t *tx) error {
		live, err := t.exists(ctx, addr)
		if err != nil {
			return err
		}
		if live {
			return fmt.Errorf("list %q at %s: %w", name, addr, domain.ErrAlreadyExists)
		}

		list := &domain.TodoList{
			ListOwner: owner,
			Nonce:     nonce,
			Capacity:  capacity,
			Name:      name,
		}
		data := list.Encode()
		rent := e.RentExemptMinimum(len(data))
		if err := t.debit(ctx, owner, rent); err != nil {
			return fmt.Errorf("fund list rent: %w", err)
		}
		return t.put(ctx, &domain.Account{Address: addr, Lamports: rent, Data: data})
	})
	return addr, err
}

// AddItem creates a ListItem under (listOwner, listName), escrows bounty
// lamports from user into it, and appends it to the list's lines. Any signer
// may add; the derived item address doubles as the idempotence guard, since
// the same (owner, user, name) tuple always collides.
func (e *Engine) AddItem(ctx context.Context, user, listOwner domain.Address, listName, itemName string, bounty uint64) (domain.Address, error) {
	listAddr, _, err := derive.Derive(derive.TagTodoList, listOwner.Bytes(), derive.NameSeed(listName))
	if err != nil {
		return domain.Address{}, err
	}
	itemAddr, _, err := derive.Derive(derive.TagTodoListItem,
		listOwner.Bytes(), user.Bytes(), derive.NameSeed(itemName))
	if err != nil {
		return domain.Address{}, err
	}

	err = e.do(ctx, domain.OpAdd, func(ctx context.Context, t *tx) error {
		list, err := e.loadList(ctx, t, listAddr, listOwner)
		if err != nil {
			return err
		}
		if len(list.Lines) >= int(list.Capacity) {
			return fmt.Errorf("list %q has %d of %d items: %w",
				listName, len(list.Lines), list.Capacity, domain.ErrListFull)
		}

		live, err := t.exists(ctx, itemAddr)
		if err != nil {
			return err
		}
		if live {
			return fmt.Errorf("item %q at %s: %w", itemName, itemAddr, domain.ErrAlreadyExists)
		}

		item := &domain.ListItem{Creator: user, Name: itemName}
		data := item.Encode()
		if min := e.RentExemptMinimum(len(data)); bounty < min {
			return fmt.Errorf("bounty %d below minimum %d: %w", bounty, min, domain.ErrBountyTooSmall)
		}

		if err := t.debit(ctx, user, bounty); err != nil {
			return fmt.Errorf("escrow bounty: %w", err)
		}
		if err := t.put(ctx, &domain.Account{Address: itemAddr, Lamports: bounty, Data: data}); err != nil {
			return err
		}

		list.Lines = append(list.Lines, itemAddr)
		return e.storeList(ctx, t, listAddr, list)
	})
	return itemAddr, err
}

// CancelItem refunds the item's full escrow to its creator, removes it from
// the list and reclaims its storage. Only the list owner or the item creator
// may cancel.
func (e *Engine) CancelItem(ctx context.Context, user, listOwner domain.Address, listName string, itemAddr domain.Address) error {
	listAddr, _, err := derive.Derive(derive.TagTodoList, listOwner.Bytes(), derive.NameSeed(listName))
	if err != nil {
		return err
	}

	return e.do(ctx, domain.OpCancel, func(ctx context.Context, t *tx) error {
		list, err := e.loadList(ctx, t, listAddr, listOwner)
		if err != nil {
			return err
		}
		item, err := e.loadItem(ctx, t, itemAddr)
		if err != nil {
			return err
		}

		if user != list.ListOwner && user != item.Creator {
			return fmt.Errorf("cancel by %s: %w", user, domain.ErrNotAuthorized)
		}
		if !list.Contains(itemAddr) {
			return fmt.Errorf("item %s in list %q: %w", itemAddr, listName, domain.ErrItemNotInList)
		}

		if err := t.closeTo(ctx, itemAddr, item.Creator); err != nil {
			return err
		}
		list.Remove(itemAddr)
		return e.storeList(ctx, t, listAddr, list)
	})
}

// FinishItem records the caller's half of the dual confirmation. Setting a
// flag twice from the same role is a no-op; once both flags are true the
// escrow pays out to the list owner, the item leaves the list and its
// storage is reclaimed. A call against the closed item is rejected with
// ErrAccountNotInitialized, which is what prevents a double payout.
func (e *Engine) FinishItem(ctx context.Context, user, listOwner domain.Address, listName string, itemAddr domain.Address) error {
	listAddr, _, err := derive.Derive(derive.TagTodoList, listOwner.Bytes(), derive.NameSeed(listName))
	if err != nil {
		return err
	}

	return e.do(ctx, domain.OpFinish, func(ctx context.Context, t *tx) error {
		list, err := e.loadList(ctx, t, listAddr, listOwner)
		if err != nil {
			return err
		}
		item, err := e.loadItem(ctx, t, itemAddr)
		if err != nil {
			return err
		}

		if !list.Contains(itemAddr) {
			return fmt.Errorf("item %s in list %q: %w", itemAddr, listName, domain.ErrItemNotInList)
		}

		isCreator := user == item.Creator
		isOwner := user == list.ListOwner
		if !isCreator && !isOwner {
			return fmt.Errorf("finish by %s: %w", user, domain.ErrNotAuthorized)
		}

		if isCreator {
			item.CreatorFinished = true
		}
		if isOwner {
			item.ListOwnerFinished = true
		}

		if item.CreatorFinished && item.ListOwnerFinished {
			if err := t.closeTo(ctx, itemAddr, list.ListOwner); err != nil {
				return err
			}
			list.Remove(itemAddr)
			return e.storeList(ctx, t, listAddr, list)
		}

		account, err := t.get(ctx, itemAddr)
		if err != nil {
			return err
		}
		account.Data = item.Encode()
		return t.put(ctx, account)
	})
}

// loadList reads and decodes a list, verifying the supplied owner against
// the stored authority. The address is derived from the owner, so a
// mismatch means the caller supplied an inconsistent derivation.
func (e *Engine) loadList(ctx context.Context, t *tx, addr, listOwner domain.Address) (*domain.TodoList, error) {
	account, err := t.get(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", addr, err)
	}
	list, err := domain.DecodeTodoList(account.Data)
	if err != nil {
		return nil, err
	}
	if list.ListOwner != listOwner {
		return nil, fmt.Errorf("list %s owner %s: %w", addr, listOwner, domain.ErrSeedsMismatch)
	}
	return list, nil
}

// loadItem reads and decodes an item; a missing account is reported as not
// initialized, the post-close state.
func (e *Engine) loadItem(ctx context.Context, t *tx, addr domain.Address) (*domain.ListItem, error) {
	account, err := t.get(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("item %s: %w", addr, domain.ErrAccountNotInitialized)
		}
		return nil, err
	}
	return domain.DecodeListItem(account.Data)
}

func (e *Engine) storeList(ctx context.Context, t *tx, addr domain.Address, list *domain.TodoList) error {
	account, err := t.get(ctx, addr)
	if err != nil {
		return err
	}
	account.Data = list.Encode()
	return t.put(ctx, account)
}
