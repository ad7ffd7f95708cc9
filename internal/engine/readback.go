package engine

import (
	"context"
	"fmt"

	"github.com/aretw0/tally/pkg/derive"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Account returns the decoded readback view of one account. The payload is
// decoded against its discriminator; an unknown tag yields a view without
// fields rather than an error, so raw balances stay inspectable.
func (e *Engine) Account(ctx context.Context, addr domain.Address) (*domain.AccountView, error) {
	account, err := e.store.Get(ctx, addr)
	if err != nil {
		return nil, err
	}
	return view(account)
}

// ListsByOwner scans all TodoList accounts whose owner matches, using the
// offset+byte-match predicate over the raw encoding.
func (e *Engine) ListsByOwner(ctx context.Context, owner domain.Address) ([]*domain.AccountView, error) {
	accounts, err := e.store.Scan(ctx, ports.Filter{
		Kind:   domain.KindTodoList,
		Offset: domain.TodoListOwnerOffset,
		Bytes:  owner.Bytes(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.AccountView, 0, len(accounts))
	for _, account := range accounts {
		v, err := view(account)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// GetList fetches and decodes the list derived from (owner, name).
func (e *Engine) GetList(ctx context.Context, owner domain.Address, name string) (*domain.TodoList, domain.Address, error) {
	addr, _, err := derive.Derive(derive.TagTodoList, owner.Bytes(), derive.NameSeed(name))
	if err != nil {
		return nil, domain.Address{}, err
	}
	account, err := e.store.Get(ctx, addr)
	if err != nil {
		return nil, addr, fmt.Errorf("list %s: %w", addr, err)
	}
	list, err := domain.DecodeTodoList(account.Data)
	return list, addr, err
}

// GetItem fetches and decodes a list item by address.
func (e *Engine) GetItem(ctx context.Context, addr domain.Address) (*domain.ListItem, error) {
	account, err := e.store.Get(ctx, addr)
	if err != nil {
		return nil, err
	}
	return domain.DecodeListItem(account.Data)
}

// GetNode fetches and decodes the tree node derived from (owner, mint).
func (e *Engine) GetNode(ctx context.Context, owner, mint domain.Address) (*domain.TreeNode, domain.Address, error) {
	addr, _, err := derive.Derive(derive.TagTreeNode, owner.Bytes(), mint.Bytes())
	if err != nil {
		return nil, domain.Address{}, err
	}
	account, err := e.store.Get(ctx, addr)
	if err != nil {
		return nil, addr, fmt.Errorf("node %s: %w", addr, err)
	}
	node, err := domain.DecodeTreeNode(account.Data)
	return node, addr, err
}

func view(account *domain.Account) (*domain.AccountView, error) {
	v := &domain.AccountView{
		Address:  account.Address,
		Lamports: account.Lamports,
		Kind:     domain.KindName(account.Kind()),
	}

	var err error
	switch account.Kind() {
	case domain.KindSystem:
	case domain.KindTodoList:
		v.Fields, err = domain.DecodeTodoList(account.Data)
	case domain.KindListItem:
		v.Fields, err = domain.DecodeListItem(account.Data)
	case domain.KindTreeNode:
		v.Fields, err = domain.DecodeTreeNode(account.Data)
	case domain.KindMint:
		v.Fields, err = domain.DecodeMint(account.Data)
	case domain.KindTokenAccount:
		v.Fields, err = domain.DecodeTokenAccount(account.Data)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
