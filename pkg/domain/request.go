package domain

// Opcodes accepted by the transition dispatcher.
const (
	OpNewList         = "new_list"
	OpAdd             = "add"
	OpCancel          = "cancel"
	OpFinish          = "finish"
	OpNewTree         = "new_tree"
	OpInsertTreeNode  = "insert_tree_node"
	OpExtractTreeNode = "extract_tree_node"
)

// TransitionRequest is one atomic mutation submitted by an external caller.
// The engine trusts only Signers for identity; role claims inside Args are
// verified against account state, never taken at face value.
type TransitionRequest struct {
	// ID correlates the request with its receipt. Assigned when empty.
	ID string `json:"id,omitempty"`

	// Op is one of the Op* opcodes.
	Op string `json:"op"`

	// Signers is the set of addresses that authorized this transition.
	Signers []Address `json:"signers"`

	// Args carries the opcode-specific scalars (name, capacity, bounty,
	// slot index, addresses in hex form). Decoded per opcode.
	Args map[string]any `json:"args,omitempty"`
}

// Signed reports whether addr is part of the request's signer set.
func (r *TransitionRequest) Signed(addr Address) bool {
	for _, s := range r.Signers {
		if s == addr {
			return true
		}
	}
	return false
}

// Receipt describes a committed transition.
type Receipt struct {
	ID string `json:"id"`
	Op string `json:"op"`

	// Account is the primary account the transition created or mutated.
	Account Address `json:"account"`
}
