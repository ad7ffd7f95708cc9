package engine_test

import (
	"context"
	"testing"

	"github.com/aretw0/tally/internal/engine"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mintNFT creates a fresh mint under authority and issues a single unit
// to recipient.
func mintNFT(t *testing.T, e *engine.Engine, authority, recipient domain.Address) domain.Address {
	t.Helper()
	ctx := context.Background()

	mint, err := e.CreateMint(ctx, authority)
	require.NoError(t, err)
	require.NoError(t, e.MintTo(ctx, authority, mint, recipient, 1))
	return mint
}

func TestMintTo(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	users := createUsers(t, e, 2)
	authority, holder := users[0], users[1]

	mint := mintNFT(t, e, authority, holder)

	got, err := e.TokenBalance(ctx, holder, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)

	custodian, err := e.TokenCustodian(ctx, holder, mint)
	require.NoError(t, err)
	assert.Equal(t, holder, custodian, "fresh tokens are held under the recipient's own authority")

	got, err = e.TokenBalance(ctx, authority, mint)
	require.NoError(t, err)
	assert.Zero(t, got, "missing token account reads as zero")
}

func TestMintTo_NotAuthority(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	users := createUsers(t, e, 2)
	authority, imposter := users[0], users[1]

	mint, err := e.CreateMint(ctx, authority)
	require.NoError(t, err)

	err = e.MintTo(ctx, imposter, mint, imposter, 1)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestCreateTree(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	mint := mintNFT(t, e, owner, owner)

	nodeAddr, err := e.CreateTree(ctx, owner, mint)
	require.NoError(t, err)

	node, gotAddr, err := e.GetNode(ctx, owner, mint)
	require.NoError(t, err)
	assert.Equal(t, nodeAddr, gotAddr)
	assert.Equal(t, mint, node.ParentMint)
	assert.False(t, node.HasChildren())
}

func TestCreateTree_RequiresToken(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	users := createUsers(t, e, 2)
	owner, holder := users[0], users[1]

	// The mint exists but owner never received the unit.
	mint := mintNFT(t, e, owner, holder)

	_, err := e.CreateTree(ctx, owner, mint)
	assert.ErrorIs(t, err, domain.ErrNotTokenHolder)
}

func TestCreateTree_AlreadyExists(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	mint := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, mint)
	require.NoError(t, err)
	_, err = e.CreateTree(ctx, owner, mint)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestInsertChild(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	childMint := mintNFT(t, e, owner, owner)

	rootAddr, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)

	childAddr, err := e.InsertChild(ctx, owner, rootMint, childMint, 1)
	require.NoError(t, err)

	root, _, err := e.GetNode(ctx, owner, rootMint)
	require.NoError(t, err)
	require.NotNil(t, root.ChildrenMint[1])
	assert.Equal(t, childMint, *root.ChildrenMint[1])
	assert.Nil(t, root.ChildrenMint[0])
	assert.Nil(t, root.ChildrenMint[2])

	child, gotAddr, err := e.GetNode(ctx, owner, childMint)
	require.NoError(t, err)
	assert.Equal(t, childAddr, gotAddr)
	assert.Equal(t, childMint, child.ParentMint)
	assert.False(t, child.HasChildren())

	custodian, err := e.TokenCustodian(ctx, owner, childMint)
	require.NoError(t, err)
	assert.Equal(t, rootAddr, custodian, "attaching moves the token into the parent node's custody")
}

func TestInsertChild_SlotOccupied(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	first := mintNFT(t, e, owner, owner)
	second := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)
	_, err = e.InsertChild(ctx, owner, rootMint, first, 0)
	require.NoError(t, err)

	_, err = e.InsertChild(ctx, owner, rootMint, second, 0)
	assert.ErrorIs(t, err, domain.ErrSlotOccupied)

	custodian, err := e.TokenCustodian(ctx, owner, second)
	require.NoError(t, err)
	assert.Equal(t, owner, custodian, "failed insert leaves custody with the owner")
}

func TestInsertChild_SlotOutOfRange(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	childMint := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)

	for _, index := range []int{-1, domain.ChildrenLen} {
		_, err = e.InsertChild(ctx, owner, rootMint, childMint, index)
		assert.ErrorIs(t, err, domain.ErrSlotOutOfRange)
	}
}

func TestInsertChild_MintAttachesAtMostOnce(t *testing.T) {
	// Once attached, the token sits in the first parent's custody, so a
	// second attachment anywhere fails the holder check.
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	otherMint := mintNFT(t, e, owner, owner)
	childMint := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)
	_, err = e.CreateTree(ctx, owner, otherMint)
	require.NoError(t, err)

	_, err = e.InsertChild(ctx, owner, rootMint, childMint, 0)
	require.NoError(t, err)

	_, err = e.InsertChild(ctx, owner, otherMint, childMint, 0)
	assert.ErrorIs(t, err, domain.ErrNotTokenHolder)
}

func TestExtractChild(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	childMint := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)
	_, err = e.InsertChild(ctx, owner, rootMint, childMint, 2)
	require.NoError(t, err)
	before := balance(t, e, owner)

	require.NoError(t, e.ExtractChild(ctx, owner, rootMint, childMint))

	root, _, err := e.GetNode(ctx, owner, rootMint)
	require.NoError(t, err)
	assert.False(t, root.HasChildren(), "slot cleared")

	_, _, err = e.GetNode(ctx, owner, childMint)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound, "childless node is closed")

	custodian, err := e.TokenCustodian(ctx, owner, childMint)
	require.NoError(t, err)
	assert.Equal(t, owner, custodian, "custody returns to the owner")

	assert.Greater(t, balance(t, e, owner), before, "node rent refunded on close")
}

func TestExtractChild_SlotEmpty(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	childMint := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)

	err = e.ExtractChild(ctx, owner, rootMint, childMint)
	assert.ErrorIs(t, err, domain.ErrSlotEmpty)
}

func TestExtractChild_KeepsNodeWithGrandchildren(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	childMint := mintNFT(t, e, owner, owner)
	grandMint := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)
	_, err = e.InsertChild(ctx, owner, rootMint, childMint, 0)
	require.NoError(t, err)
	_, err = e.InsertChild(ctx, owner, childMint, grandMint, 0)
	require.NoError(t, err)

	require.NoError(t, e.ExtractChild(ctx, owner, rootMint, childMint))

	child, _, err := e.GetNode(ctx, owner, childMint)
	require.NoError(t, err, "node with children survives extraction")
	assert.True(t, child.HasChildren())

	custodian, err := e.TokenCustodian(ctx, owner, childMint)
	require.NoError(t, err)
	assert.Equal(t, owner, custodian)
}

func TestExtractChild_ReinsertElsewhere(t *testing.T) {
	// Detach then reattach under a different parent and slot.
	e := newTestEngine(t)
	ctx := context.Background()
	owner := createUsers(t, e, 1)[0]
	rootMint := mintNFT(t, e, owner, owner)
	otherMint := mintNFT(t, e, owner, owner)
	childMint := mintNFT(t, e, owner, owner)

	_, err := e.CreateTree(ctx, owner, rootMint)
	require.NoError(t, err)
	otherAddr, err := e.CreateTree(ctx, owner, otherMint)
	require.NoError(t, err)

	_, err = e.InsertChild(ctx, owner, rootMint, childMint, 0)
	require.NoError(t, err)
	require.NoError(t, e.ExtractChild(ctx, owner, rootMint, childMint))

	_, err = e.InsertChild(ctx, owner, otherMint, childMint, 2)
	require.NoError(t, err)

	custodian, err := e.TokenCustodian(ctx, owner, childMint)
	require.NoError(t, err)
	assert.Equal(t, otherAddr, custodian)
}
