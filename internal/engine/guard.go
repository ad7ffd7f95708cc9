package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// guardEntry holds one address mutex and its reference count.
type guardEntry struct {
	mu   sync.Mutex
	refs int
}

// guardTable serializes commits per account address. Entries are reference
// counted and garbage collected when the last holder releases, so the table
// stays proportional to in-flight transitions, not to the account space.
// When a distributed locker is configured, each address also takes a
// cluster-wide lock for the duration.
type guardTable struct {
	mu     sync.Mutex
	locks  map[domain.Address]*guardEntry
	locker ports.DistributedLocker
	ttl    time.Duration
}

func newGuardTable() *guardTable {
	return &guardTable{
		locks: make(map[domain.Address]*guardEntry),
	}
}

func (g *guardTable) acquire(addr domain.Address) *guardEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.locks[addr]
	if !ok {
		entry = &guardEntry{}
		g.locks[addr] = entry
	}
	entry.refs++
	return entry
}

func (g *guardTable) release(addr domain.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.locks[addr]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(g.locks, addr)
	}
}

// lockAll locks every address in a canonical (sorted) order, which makes
// overlapping lock sets deadlock-free. The returned release function must
// be called exactly once.
func (g *guardTable) lockAll(ctx context.Context, addrs []domain.Address) (func(ctx context.Context), error) {
	ordered := append([]domain.Address(nil), addrs...)
	sort.Slice(ordered, func(i, j int) bool {
		return string(ordered[i][:]) < string(ordered[j][:])
	})

	var entries []*guardEntry
	var unlocks []ports.UnlockFunc
	release := func(ctx context.Context) {
		for i := len(unlocks) - 1; i >= 0; i-- {
			// Best effort: a lost distributed lock expires via TTL.
			_ = unlocks[i](ctx)
		}
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
		for i := len(ordered) - 1; i >= 0; i-- {
			g.release(ordered[i])
		}
	}

	for i, addr := range ordered {
		entry := g.acquire(addr)
		entry.mu.Lock()
		entries = append(entries, entry)

		if g.locker != nil {
			unlock, err := g.locker.Lock(ctx, addr.String(), g.ttl)
			if err != nil {
				for j := len(entries) - 1; j >= 0; j-- {
					entries[j].mu.Unlock()
				}
				for j := i; j >= 0; j-- {
					g.release(ordered[j])
				}
				for j := len(unlocks) - 1; j >= 0; j-- {
					_ = unlocks[j](ctx)
				}
				return nil, err
			}
			unlocks = append(unlocks, unlock)
		}
	}

	return release, nil
}
