/*
Package tally is a deterministic keyed-account ledger engine. It reconstructs
the account model of an on-chain escrow program — derived addresses, rent
funded storage, atomic multi-account transitions — as an embeddable Go
library with pluggable storage backends.

# Concept

Every piece of state is an account: a 32-byte address, a lamport balance and
a binary payload. Accounts holding structured records (todo lists, escrowed
list items, tree nodes, mints, token accounts) live at addresses derived
deterministically from their logical identity, so independent parties agree
on where state lives without coordination.

All mutation flows through transitions. A transition either commits in full —
every touched account updated in one atomic batch — or fails with no
observable effect. Authorization is checked against the signer set inside
the transition; balances are conserved across every commit.

# Key Features

  - Deterministic addressing: accounts are located by derivation, not lookup
    tables, and the derivation is collision-checked at creation.
  - Escrowed bounties: list items carry their bounty as their own balance,
    released to the list owner only after both parties confirm.
  - Token-gated trees: tree nodes attach children by taking custody of the
    child's token, so a token can be attached in at most one place.
  - Pluggable storage: an in-memory store for embedding and tests, a Redis
    store (with distributed locking) for multi-replica deployments.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/tally"
		"github.com/aretw0/tally/pkg/domain"
	)

	func main() {
		eng := tally.New()
		ctx := context.Background()

		owner := domain.NewAddress()
		if err := eng.Airdrop(ctx, owner, 10*domain.LamportsPerSol); err != nil {
			log.Fatal(err)
		}

		listAddr, err := eng.CreateList(ctx, owner, "chores", 16)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("list lives at", listAddr)
	}
*/
package tally
