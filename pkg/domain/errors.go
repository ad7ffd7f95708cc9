package domain

import "errors"

// Transition error taxonomy. Every engine failure wraps exactly one of these
// sentinels; callers branch with errors.Is and adapters map them to status
// codes. A failed transition has zero observable side effects.
var (
	// ErrAccountNotFound is returned when a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountNotInitialized is returned when operating on an account that
	// has already been closed, e.g. a finish call after the payout fired.
	ErrAccountNotInitialized = errors.New("account not initialized")

	// ErrAlreadyExists is returned when a create targets a derived address
	// that is already initialized.
	ErrAlreadyExists = errors.New("account already exists")

	// ErrNotAuthorized is returned when the caller holds neither of the roles
	// an operation requires.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrMissingSigner is returned when the acting address is absent from the
	// transition's signer set.
	ErrMissingSigner = errors.New("missing signer")

	// ErrListFull is returned by add when the list is at capacity.
	ErrListFull = errors.New("list is full")

	// ErrBountyTooSmall is returned when a bounty cannot keep the item
	// account rent-exempt.
	ErrBountyTooSmall = errors.New("bounty below rent-exempt minimum")

	// ErrItemNotInList is returned when the item is not a member of the
	// referenced list's lines.
	ErrItemNotInList = errors.New("item does not belong to this list")

	// ErrSeedsMismatch is returned when a supplied account does not match its
	// required derivation.
	ErrSeedsMismatch = errors.New("seeds mismatch")

	// ErrSlotOccupied is returned by insert when the target child slot is
	// already populated.
	ErrSlotOccupied = errors.New("child slot occupied")

	// ErrSlotEmpty is returned by extract when no slot holds the given mint.
	ErrSlotEmpty = errors.New("child slot empty")

	// ErrSlotOutOfRange is returned when the slot index exceeds the fixed
	// children array.
	ErrSlotOutOfRange = errors.New("child slot index out of range")

	// ErrNotTokenHolder is returned when the caller does not hold exactly one
	// unit of the required mint.
	ErrNotTokenHolder = errors.New("caller does not hold the token")

	// ErrInsufficientFunds is returned when a debit exceeds the account
	// balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBadDiscriminator is returned when account data does not carry the
	// expected kind tag or codec version.
	ErrBadDiscriminator = errors.New("bad account discriminator")

	// ErrUnknownOp is returned by dispatch for an unrecognized opcode.
	ErrUnknownOp = errors.New("unknown opcode")
)
