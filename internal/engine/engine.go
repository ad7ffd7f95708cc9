// Package engine implements the tally transition engine: every mutation of
// the account store is an atomic, authorization-checked transition with zero
// observable side effects on failure.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tally/internal/logging"
	"github.com/aretw0/tally/internal/metrics"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

const (
	// accountOverhead is the fixed per-account storage cost charged on top
	// of the encoded data when computing the rent-exempt minimum.
	accountOverhead = 128

	// defaultRentPerByte prices one byte of persistent storage.
	defaultRentPerByte = 20

	// DefaultListCapacity is used when a new_list request omits capacity.
	DefaultListCapacity uint16 = 16

	// maxLockAttempts bounds the lock-set discovery loop. The touched set
	// grows monotonically per attempt, so two passes normally suffice.
	maxLockAttempts = 3
)

// Engine executes transitions against an AccountStore. Writes to any given
// account are serialized through a per-address guard (and, when configured,
// a distributed locker), so concurrent transitions against the same account
// commit one at a time while disjoint transitions proceed independently.
type Engine struct {
	store   ports.AccountStore
	guards  *guardTable
	logger  *slog.Logger
	metrics *metrics.Metrics

	rentPerByte uint64
	lockTTL     time.Duration
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLocker adds a distributed locker for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.guards.locker = locker
	}
}

// WithRentPerByte overrides the storage price used for rent-exempt minimums.
func WithRentPerByte(price uint64) Option {
	return func(e *Engine) {
		e.rentPerByte = price
	}
}

// WithLockTTL overrides the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// New creates an engine on top of the given store.
func New(store ports.AccountStore, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		guards:      newGuardTable(),
		logger:      logging.NewNop(),
		rentPerByte: defaultRentPerByte,
		lockTTL:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.guards.ttl = e.lockTTL
	return e
}

// RentExemptMinimum returns the minimum balance an account with dataLen
// bytes of data must hold to persist. It is the floor for escrow size.
func (e *Engine) RentExemptMinimum(dataLen int) uint64 {
	return (accountOverhead + uint64(dataLen)) * e.rentPerByte
}

// do wraps a transition body with locking, metrics and logging.
func (e *Engine) do(ctx context.Context, op string, fn func(context.Context, *tx) error) error {
	start := time.Now()
	err := e.run(ctx, fn)

	outcome := "ok"
	if err != nil {
		outcome = errOutcome(err)
	}
	if e.metrics != nil {
		e.metrics.Transitions.WithLabelValues(op, outcome).Inc()
		e.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		e.logger.WarnContext(ctx, "transition rejected", "op", op, "outcome", outcome, "err", err)
	} else {
		e.logger.InfoContext(ctx, "transition committed", "op", op, "took", time.Since(start))
	}
	return err
}

// run executes fn against a staged transaction and commits it atomically.
// The first pass discovers the set of touched addresses; fn is then re-run
// with all of them locked, so the checks and the commit see a serialized
// view of every involved account. Nothing reaches the store unless fn
// returns nil.
func (e *Engine) run(ctx context.Context, fn func(context.Context, *tx) error) error {
	var locked []domain.Address

	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		release, err := e.guards.lockAll(ctx, locked)
		if err != nil {
			return err
		}

		t := newTx(e.store)
		opErr := fn(ctx, t)

		touched := t.touched()
		if !covered(touched, locked) {
			release(ctx)
			locked = merge(locked, touched)
			continue
		}

		if opErr != nil {
			release(ctx)
			return opErr
		}

		commitErr := e.store.Commit(ctx, t.ops())
		if commitErr == nil && e.metrics != nil {
			e.metrics.AccountsOpen.Add(float64(t.openDelta()))
		}
		release(ctx)
		return commitErr
	}

	return fmt.Errorf("transition lock set did not stabilize after %d attempts", maxLockAttempts)
}

// covered reports whether every touched address is in the locked set.
func covered(touched, locked []domain.Address) bool {
	if len(locked) == 0 {
		return len(touched) == 0
	}
	held := make(map[domain.Address]struct{}, len(locked))
	for _, addr := range locked {
		held[addr] = struct{}{}
	}
	for _, addr := range touched {
		if _, ok := held[addr]; !ok {
			return false
		}
	}
	return true
}

// merge unions two address sets.
func merge(a, b []domain.Address) []domain.Address {
	seen := make(map[domain.Address]struct{}, len(a)+len(b))
	out := make([]domain.Address, 0, len(a)+len(b))
	for _, set := range [][]domain.Address{a, b} {
		for _, addr := range set {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}

// errOutcome maps a transition error to its metric label.
func errOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, domain.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, domain.ErrMissingSigner):
		return "missing_signer"
	case errors.Is(err, domain.ErrListFull):
		return "list_full"
	case errors.Is(err, domain.ErrBountyTooSmall):
		return "bounty_too_small"
	case errors.Is(err, domain.ErrItemNotInList):
		return "item_not_in_list"
	case errors.Is(err, domain.ErrSeedsMismatch):
		return "seeds_mismatch"
	case errors.Is(err, domain.ErrAccountNotInitialized):
		return "account_not_initialized"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrSlotOccupied):
		return "slot_occupied"
	case errors.Is(err, domain.ErrSlotEmpty):
		return "slot_empty"
	case errors.Is(err, domain.ErrSlotOutOfRange):
		return "slot_out_of_range"
	case errors.Is(err, domain.ErrNotTokenHolder):
		return "not_token_holder"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrUnknownOp):
		return "unknown_op"
	default:
		return "error"
	}
}
