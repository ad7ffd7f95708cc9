package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// AddressLen is the byte length of every ledger address.
const AddressLen = 32

// Address identifies an account in the ledger. Signer addresses are random
// keypair-style values; derived addresses come out of pkg/derive.
type Address [AddressLen]byte

// NewAddress returns a fresh random address, the equivalent of generating a
// keypair for a signer or a mint.
func NewAddress() Address {
	var a Address
	if _, err := rand.Read(a[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("domain: reading random address: %v", err))
	}
	return a
}

// ParseAddress decodes the canonical hex form.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("parse address %q: %w", s, err)
	}
	if len(raw) != AddressLen {
		return a, fmt.Errorf("parse address %q: got %d bytes, want %d", s, len(raw), AddressLen)
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is ParseAddress for fixtures and constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the canonical lowercase hex form.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns the raw 32 bytes, suitable for use as a derivation seed.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
