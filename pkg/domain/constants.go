package domain

// LamportsPerSol is the conversion factor used by callers quoting bounties
// in whole-coin units.
const LamportsPerSol uint64 = 1_000_000_000
