package domain

// ChildrenLen is the fixed number of child slots on every tree node.
const ChildrenLen = 3

// TreeNode is one node of a custody tree. Its identity is the mint it
// represents; a child slot is non-nil only while the child's token is held
// by this tree. Empty slots are first-class nils, not sentinels.
type TreeNode struct {
	Nonce        uint8                 `json:"nonce"`
	ParentMint   Address               `json:"parent_mint"`
	ChildrenMint [ChildrenLen]*Address `json:"children_mint"`
}

// Encode renders the stable binary form: each slot is a presence byte
// followed by the mint address (zeroes when empty).
func (n *TreeNode) Encode() []byte {
	e := newEncoder(KindTreeNode)
	e.byte(n.Nonce)
	e.addr(n.ParentMint)
	for _, child := range n.ChildrenMint {
		if child == nil {
			e.bool(false)
			e.addr(Address{})
		} else {
			e.bool(true)
			e.addr(*child)
		}
	}
	return e.bytes()
}

// DecodeTreeNode parses an encoded TreeNode.
func DecodeTreeNode(data []byte) (*TreeNode, error) {
	d := newDecoder(data, KindTreeNode)
	n := &TreeNode{
		Nonce:      d.byteVal(),
		ParentMint: d.addr(),
	}
	for i := 0; i < ChildrenLen; i++ {
		present := d.bool()
		addr := d.addr()
		if present {
			mint := addr
			n.ChildrenMint[i] = &mint
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return n, nil
}

// SlotOf returns the index of the slot holding mint, or -1.
func (n *TreeNode) SlotOf(mint Address) int {
	for i, child := range n.ChildrenMint {
		if child != nil && *child == mint {
			return i
		}
	}
	return -1
}

// HasChildren reports whether any slot is populated.
func (n *TreeNode) HasChildren() bool {
	for _, child := range n.ChildrenMint {
		if child != nil {
			return true
		}
	}
	return false
}
