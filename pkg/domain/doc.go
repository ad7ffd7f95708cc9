// Package domain contains the pure data model of the tally ledger:
// addresses, account encodings, transition requests and the error taxonomy.
// It has no I/O and no dependency on any adapter.
package domain
