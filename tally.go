package tally

import (
	"log/slog"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/tally/internal/adapters/http"
	"github.com/aretw0/tally/internal/engine"
	"github.com/aretw0/tally/internal/logging"
	"github.com/aretw0/tally/internal/metrics"
	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the tally release version.
const Version = "0.1.0"

// Engine is the high-level entry point for the tally library. It wraps the
// internal transition engine and provides a simplified API for consumers.
type Engine struct {
	*engine.Engine

	store    ports.AccountStore
	locker   ports.DistributedLocker
	logger   *slog.Logger
	registry *prometheus.Registry

	rentPerByte uint64
	lockTTL     time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a custom AccountStore, bypassing the default in-memory
// backend.
func WithStore(store ports.AccountStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetricsRegistry registers the engine's Prometheus collectors on the
// given registry.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithDistributedLocker adds cross-replica write locking on top of the
// in-process guards.
func WithDistributedLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
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

// New initializes a tally Engine. By default it runs on an in-memory store
// with no metrics; use the options to swap the store or wire observability.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}

	coreOpts := []engine.Option{engine.WithLogger(e.logger)}
	if e.registry != nil {
		coreOpts = append(coreOpts, engine.WithMetrics(metrics.New(e.registry)))
	}
	if e.locker != nil {
		coreOpts = append(coreOpts, engine.WithLocker(e.locker))
	}
	if e.rentPerByte != 0 {
		coreOpts = append(coreOpts, engine.WithRentPerByte(e.rentPerByte))
	}
	if e.lockTTL != 0 {
		coreOpts = append(coreOpts, engine.WithLockTTL(e.lockTTL))
	}

	e.Engine = engine.New(e.store, coreOpts...)
	return e
}

// Handler returns the JSON API handler for the engine, including /healthz
// and, when a registry was configured, /metrics.
func (e *Engine) Handler() http.Handler {
	return httpAdapter.NewHandler(e.Engine, e.logger, e.registry)
}
