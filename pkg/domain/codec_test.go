package domain_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoList_EncodeDecode(t *testing.T) {
	owner := domain.NewAddress()
	item := domain.NewAddress()
	list := &domain.TodoList{
		ListOwner: owner,
		Nonce:     254,
		Capacity:  16,
		Name:      "groceries",
		Lines:     []domain.Address{item},
	}

	decoded, err := domain.DecodeTodoList(list.Encode())
	require.NoError(t, err)
	assert.Equal(t, list, decoded)
}

func TestTodoList_OwnerOffset(t *testing.T) {
	// Owner scans byte-match the encoding at TodoListOwnerOffset; the
	// layout is load-bearing for readback filters.
	owner := domain.NewAddress()
	data := (&domain.TodoList{ListOwner: owner, Capacity: 4, Name: "x"}).Encode()

	got := data[domain.TodoListOwnerOffset : domain.TodoListOwnerOffset+domain.AddressLen]
	assert.True(t, bytes.Equal(owner.Bytes(), got))
}

func TestDecode_WrongKind(t *testing.T) {
	item := &domain.ListItem{Creator: domain.NewAddress(), Name: "task"}

	_, err := domain.DecodeTodoList(item.Encode())
	assert.ErrorIs(t, err, domain.ErrBadDiscriminator)
}

func TestDecode_Truncated(t *testing.T) {
	list := &domain.TodoList{ListOwner: domain.NewAddress(), Capacity: 2, Name: "short"}
	data := list.Encode()

	_, err := domain.DecodeTodoList(data[:len(data)-1])
	assert.ErrorIs(t, err, domain.ErrBadDiscriminator)
}

func TestTodoList_Remove(t *testing.T) {
	a, b, c := domain.NewAddress(), domain.NewAddress(), domain.NewAddress()
	list := &domain.TodoList{Lines: []domain.Address{a, b, c}}

	list.Remove(b)

	assert.Equal(t, []domain.Address{a, c}, list.Lines)
	assert.False(t, list.Contains(b))
	assert.True(t, list.Contains(a))
}

func TestTreeNode_Slots(t *testing.T) {
	mint := domain.NewAddress()
	child := domain.NewAddress()
	node := &domain.TreeNode{Nonce: 255, ParentMint: mint}
	node.ChildrenMint[1] = &child

	decoded, err := domain.DecodeTreeNode(node.Encode())
	require.NoError(t, err)

	assert.Nil(t, decoded.ChildrenMint[0])
	require.NotNil(t, decoded.ChildrenMint[1])
	assert.Equal(t, child, *decoded.ChildrenMint[1])
	assert.Nil(t, decoded.ChildrenMint[2])
	assert.Equal(t, 1, decoded.SlotOf(child))
	assert.Equal(t, -1, decoded.SlotOf(mint))
	assert.True(t, decoded.HasChildren())
}

func TestTokenAccount_Offsets(t *testing.T) {
	tok := &domain.TokenAccount{Mint: domain.NewAddress(), Owner: domain.NewAddress(), Amount: 1}
	data := tok.Encode()

	assert.True(t, bytes.Equal(tok.Mint.Bytes(),
		data[domain.TokenMintOffset:domain.TokenMintOffset+domain.AddressLen]))
	assert.True(t, bytes.Equal(tok.Owner.Bytes(),
		data[domain.TokenOwnerOffset:domain.TokenOwnerOffset+domain.AddressLen]))
}

func TestAccount_Kind(t *testing.T) {
	system := &domain.Account{Address: domain.NewAddress(), Lamports: 10}
	assert.Equal(t, domain.KindSystem, system.Kind())
	assert.Equal(t, "system", domain.KindName(system.Kind()))

	list := &domain.Account{Data: (&domain.TodoList{Name: "n"}).Encode()}
	assert.Equal(t, domain.KindTodoList, list.Kind())
}

func TestAddress_TextRoundTrip(t *testing.T) {
	a := domain.NewAddress()

	parsed, err := domain.ParseAddress(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)

	_, err = domain.ParseAddress("zz")
	assert.Error(t, err)
}
