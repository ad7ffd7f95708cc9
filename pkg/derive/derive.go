// Package derive computes deterministic, non-signer-controlled account
// addresses from seed tuples. Everything else in the ledger routes through
// these derivations: a wrong seed tuple yields a different address, so the
// engine fails with "account not found" or a seeds mismatch instead of ever
// touching the wrong account.
package derive

import (
	"crypto/sha256"
	"errors"

	"github.com/aretw0/tally/pkg/domain"
)

// Seed tags namespace the derivation space per account family.
const (
	TagTodoList     = "todolist"
	TagTodoListItem = "todolistitem"
	TagTreeNode     = "node_pda_seed"
	TagTokenAccount = "token"
)

// marker domain-separates derived addresses from any other use of SHA-256.
const marker = "tally/v1/derived-address"

// MaxSeedLen bounds every individual seed. Longer name seeds are truncated
// by NameSeed before derivation, never rejected.
const MaxSeedLen = 32

// ErrNonceExhausted is returned when no nonce in [0,255] yields an address
// outside the signer keyspace. Probability ~(1/256)^256; it exists so the
// search has a defined bottom.
var ErrNonceExhausted = errors.New("derive: nonce space exhausted")

// NameSeed converts a user-supplied name into a derivation seed, truncating
// to MaxSeedLen bytes. Truncation is a documented boundary: two names
// sharing a 32-byte prefix derive the same address, and the second create
// fails with ErrAlreadyExists rather than silently aliasing.
func NameSeed(name string) []byte {
	b := []byte(name)
	if len(b) > MaxSeedLen {
		return b[:MaxSeedLen]
	}
	return b
}

// Derive maps (tag, seeds) to a deterministic address plus the nonce that
// produced it. The search counts the nonce down from 255 and skips any
// candidate whose final byte is zero: that slice of the hash space is
// reserved as a stand-in for signer-controlled keys, which keeps derived
// addresses provably outside it.
func Derive(tag string, seeds ...[]byte) (domain.Address, uint8, error) {
	for nonce := 255; nonce >= 0; nonce-- {
		addr, ok := candidate(tag, uint8(nonce), seeds)
		if ok {
			return addr, uint8(nonce), nil
		}
	}
	return domain.Address{}, 0, ErrNonceExhausted
}

// DeriveWithNonce re-derives with a claimed nonce and reports whether it is
// a valid derivation for the tuple. Engines use it to reject supplied
// accounts whose derivation does not match.
func DeriveWithNonce(tag string, nonce uint8, seeds ...[]byte) (domain.Address, bool) {
	return candidate(tag, nonce, seeds)
}

func candidate(tag string, nonce uint8, seeds [][]byte) (domain.Address, bool) {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			seed = seed[:MaxSeedLen]
		}
		// Length-prefix each seed so (ab, c) and (a, bc) never collide.
		h.Write([]byte{byte(len(seed))})
		h.Write(seed)
	}
	h.Write([]byte{nonce})
	h.Write([]byte(marker))

	var addr domain.Address
	h.Sum(addr[:0])
	if addr[domain.AddressLen-1] == 0 {
		return domain.Address{}, false
	}
	return addr, true
}
