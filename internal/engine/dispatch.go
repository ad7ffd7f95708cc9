package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/tally/pkg/derive"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Per-opcode argument shapes. Addresses arrive as hex strings and are
// decoded through the address hook.
type newListArgs struct {
	Owner    domain.Address `mapstructure:"owner"`
	Name     string         `mapstructure:"name"`
	Capacity uint16         `mapstructure:"capacity"`
}

type addArgs struct {
	User      domain.Address `mapstructure:"user"`
	ListOwner domain.Address `mapstructure:"list_owner"`
	ListName  string         `mapstructure:"list_name"`
	Name      string         `mapstructure:"name"`
	Bounty    uint64         `mapstructure:"bounty"`
}

type itemArgs struct {
	User      domain.Address `mapstructure:"user"`
	ListOwner domain.Address `mapstructure:"list_owner"`
	ListName  string         `mapstructure:"list_name"`
	Item      domain.Address `mapstructure:"item"`
}

type newTreeArgs struct {
	Owner domain.Address `mapstructure:"owner"`
	Mint  domain.Address `mapstructure:"mint"`
}

type treeChildArgs struct {
	Owner      domain.Address `mapstructure:"owner"`
	ParentMint domain.Address `mapstructure:"parent_mint"`
	ChildMint  domain.Address `mapstructure:"child_mint"`
	Index      int            `mapstructure:"index"`
}

// Dispatch routes a transition request to its engine operation. The signer
// set is the only identity input trusted: the acting address of every opcode
// must have signed, and role claims are re-verified against account state
// inside the operation itself.
func (e *Engine) Dispatch(ctx context.Context, req domain.TransitionRequest) (*domain.Receipt, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if len(req.Signers) == 0 {
		return nil, fmt.Errorf("transition %s: %w", req.Op, domain.ErrMissingSigner)
	}

	var account domain.Address
	var err error

	switch req.Op {
	case domain.OpNewList:
		var a newListArgs
		if err = decodeArgs(req.Op, req.Args, &a); err != nil {
			return nil, err
		}
		if a.Capacity == 0 {
			a.Capacity = DefaultListCapacity
		}
		if err = requireSigner(&req, a.Owner); err != nil {
			return nil, err
		}
		account, err = e.CreateList(ctx, a.Owner, a.Name, a.Capacity)

	case domain.OpAdd:
		var a addArgs
		if err = decodeArgs(req.Op, req.Args, &a); err != nil {
			return nil, err
		}
		if err = requireSigner(&req, a.User); err != nil {
			return nil, err
		}
		account, err = e.AddItem(ctx, a.User, a.ListOwner, a.ListName, a.Name, a.Bounty)

	case domain.OpCancel:
		var a itemArgs
		if err = decodeArgs(req.Op, req.Args, &a); err != nil {
			return nil, err
		}
		if err = requireSigner(&req, a.User); err != nil {
			return nil, err
		}
		account = a.Item
		err = e.CancelItem(ctx, a.User, a.ListOwner, a.ListName, a.Item)

	case domain.OpFinish:
		var a itemArgs
		if err = decodeArgs(req.Op, req.Args, &a); err != nil {
			return nil, err
		}
		if err = requireSigner(&req, a.User); err != nil {
			return nil, err
		}
		account = a.Item
		err = e.FinishItem(ctx, a.User, a.ListOwner, a.ListName, a.Item)

	case domain.OpNewTree:
		var a newTreeArgs
		if err = decodeArgs(req.Op, req.Args, &a); err != nil {
			return nil, err
		}
		if err = requireSigner(&req, a.Owner); err != nil {
			return nil, err
		}
		account, err = e.CreateTree(ctx, a.Owner, a.Mint)

	case domain.OpInsertTreeNode:
		var a treeChildArgs
		if err = decodeArgs(req.Op, req.Args, &a); err != nil {
			return nil, err
		}
		if err = requireSigner(&req, a.Owner); err != nil {
			return nil, err
		}
		account, err = e.InsertChild(ctx, a.Owner, a.ParentMint, a.ChildMint, a.Index)

	case domain.OpExtractTreeNode:
		var a treeChildArgs
		if err = decodeArgs(req.Op, req.Args, &a); err != nil {
			return nil, err
		}
		if err = requireSigner(&req, a.Owner); err != nil {
			return nil, err
		}
		err = e.ExtractChild(ctx, a.Owner, a.ParentMint, a.ChildMint)
		if err == nil {
			account, _, err = derive.Derive(derive.TagTreeNode, a.Owner.Bytes(), a.ParentMint.Bytes())
		}

	default:
		return nil, fmt.Errorf("opcode %q: %w", req.Op, domain.ErrUnknownOp)
	}

	if err != nil {
		return nil, err
	}
	return &domain.Receipt{ID: req.ID, Op: req.Op, Account: account}, nil
}

func requireSigner(req *domain.TransitionRequest, actor domain.Address) error {
	if !req.Signed(actor) {
		return fmt.Errorf("actor %s: %w", actor, domain.ErrMissingSigner)
	}
	return nil
}

func decodeArgs(op string, args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: addressHook,
		Result:     out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("decode %s args: %w", op, err)
	}
	return nil
}

// addressHook converts hex strings into domain.Address during arg decoding.
func addressHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(domain.Address{}) {
		return data, nil
	}
	return domain.ParseAddress(data.(string))
}
