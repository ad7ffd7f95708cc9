package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tally/pkg/derive"
	"github.com/aretw0/tally/pkg/domain"
)

// CreateTree creates the root TreeNode for (owner, mint). The owner must
// hold exactly one unit of the mint at call time; the node starts with all
// child slots empty.
func (e *Engine) CreateTree(ctx context.Context, owner, mint domain.Address) (domain.Address, error) {
	nodeAddr, nonce, err := derive.Derive(derive.TagTreeNode, owner.Bytes(), mint.Bytes())
	if err != nil {
		return domain.Address{}, err
	}

	err = e.do(ctx, domain.OpNewTree, func(ctx context.Context, t *tx) error {
		if _, err := e.loadHolding(ctx, t, owner, mint); err != nil {
			return err
		}

		live, err := t.exists(ctx, nodeAddr)
		if err != nil {
			return err
		}
		if live {
			return fmt.Errorf("tree node at %s: %w", nodeAddr, domain.ErrAlreadyExists)
		}

		node := &domain.TreeNode{Nonce: nonce, ParentMint: mint}
		data := node.Encode()
		rent := e.RentExemptMinimum(len(data))
		if err := t.debit(ctx, owner, rent); err != nil {
			return fmt.Errorf("fund node rent: %w", err)
		}
		return t.put(ctx, &domain.Account{Address: nodeAddr, Lamports: rent, Data: data})
	})
	return nodeAddr, err
}

// InsertChild attaches childMint under the parent node at the given slot.
// The child's token moves into the parent node's custody in the same
// transition, so a mint can be attached in at most one place at a time.
func (e *Engine) InsertChild(ctx context.Context, owner, parentMint, childMint domain.Address, index int) (domain.Address, error) {
	parentAddr, _, err := derive.Derive(derive.TagTreeNode, owner.Bytes(), parentMint.Bytes())
	if err != nil {
		return domain.Address{}, err
	}
	childAddr, childNonce, err := derive.Derive(derive.TagTreeNode, owner.Bytes(), childMint.Bytes())
	if err != nil {
		return domain.Address{}, err
	}

	err = e.do(ctx, domain.OpInsertTreeNode, func(ctx context.Context, t *tx) error {
		parent, err := e.loadNode(ctx, t, parentAddr)
		if err != nil {
			return err
		}
		if index < 0 || index >= domain.ChildrenLen {
			return fmt.Errorf("slot %d of %d: %w", index, domain.ChildrenLen, domain.ErrSlotOutOfRange)
		}
		if parent.ChildrenMint[index] != nil {
			return fmt.Errorf("slot %d holds %s: %w", index, *parent.ChildrenMint[index], domain.ErrSlotOccupied)
		}

		tokenAccount, err := e.loadHolding(ctx, t, owner, childMint)
		if err != nil {
			return err
		}

		live, err := t.exists(ctx, childAddr)
		if err != nil {
			return err
		}
		if live {
			return fmt.Errorf("child node at %s: %w", childAddr, domain.ErrAlreadyExists)
		}

		child := &domain.TreeNode{Nonce: childNonce, ParentMint: childMint}
		childData := child.Encode()
		rent := e.RentExemptMinimum(len(childData))
		if err := t.debit(ctx, owner, rent); err != nil {
			return fmt.Errorf("fund node rent: %w", err)
		}
		if err := t.put(ctx, &domain.Account{Address: childAddr, Lamports: rent, Data: childData}); err != nil {
			return err
		}

		mint := childMint
		parent.ChildrenMint[index] = &mint
		if err := e.storeNode(ctx, t, parentAddr, parent); err != nil {
			return err
		}

		// Custody: the parent node becomes the token's owner.
		return e.setTokenOwner(ctx, t, tokenAccount, parentAddr)
	})
	return childAddr, err
}

// ExtractChild detaches childMint from the parent node: the slot holding it
// is cleared and custody of the token returns to the owner. A child node
// with no children of its own is closed and its rent refunded to the owner.
func (e *Engine) ExtractChild(ctx context.Context, owner, parentMint, childMint domain.Address) error {
	parentAddr, _, err := derive.Derive(derive.TagTreeNode, owner.Bytes(), parentMint.Bytes())
	if err != nil {
		return err
	}
	childAddr, _, err := derive.Derive(derive.TagTreeNode, owner.Bytes(), childMint.Bytes())
	if err != nil {
		return err
	}

	return e.do(ctx, domain.OpExtractTreeNode, func(ctx context.Context, t *tx) error {
		parent, err := e.loadNode(ctx, t, parentAddr)
		if err != nil {
			return err
		}
		slot := parent.SlotOf(childMint)
		if slot < 0 {
			return fmt.Errorf("mint %s in node %s: %w", childMint, parentAddr, domain.ErrSlotEmpty)
		}

		parent.ChildrenMint[slot] = nil
		if err := e.storeNode(ctx, t, parentAddr, parent); err != nil {
			return err
		}

		child, err := e.loadNode(ctx, t, childAddr)
		if err != nil {
			return err
		}
		if !child.HasChildren() {
			if err := t.closeTo(ctx, childAddr, owner); err != nil {
				return err
			}
		}

		tokenAddr, _, err := derive.Derive(derive.TagTokenAccount, owner.Bytes(), childMint.Bytes())
		if err != nil {
			return err
		}
		account, err := t.get(ctx, tokenAddr)
		if err != nil {
			return fmt.Errorf("token account %s: %w", tokenAddr, err)
		}
		token, err := domain.DecodeTokenAccount(account.Data)
		if err != nil {
			return err
		}
		if token.Owner != parentAddr {
			return fmt.Errorf("token %s held by %s, not by node %s: %w",
				childMint, token.Owner, parentAddr, domain.ErrNotAuthorized)
		}
		return e.setTokenOwner(ctx, t, &holding{addr: tokenAddr, token: token}, owner)
	})
}

// loadNode reads and decodes a tree node.
func (e *Engine) loadNode(ctx context.Context, t *tx, addr domain.Address) (*domain.TreeNode, error) {
	account, err := t.get(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("node %s: %w", addr, domain.ErrAccountNotInitialized)
		}
		return nil, err
	}
	return domain.DecodeTreeNode(account.Data)
}

func (e *Engine) storeNode(ctx context.Context, t *tx, addr domain.Address, node *domain.TreeNode) error {
	account, err := t.get(ctx, addr)
	if err != nil {
		return err
	}
	account.Data = node.Encode()
	return t.put(ctx, account)
}
