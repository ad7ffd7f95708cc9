// Package redis provides the Redis-backed AccountStore and the distributed
// per-account locker used by multi-replica deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.AccountStore on Redis. Accounts are JSON blobs
// keyed by hex address; a ZSET indexes the live addresses so Scan does not
// need KEYS. Commit goes through a TxPipeline, which Redis applies as one
// atomic unit.
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures the store.
type Option func(*Store)

// WithPrefix sets the key prefix for accounts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store from connection parameters.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "tally:account:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(addr domain.Address) string {
	return s.prefix + addr.String()
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Get retrieves one account.
func (s *Store) Get(ctx context.Context, addr domain.Address) (*domain.Account, error) {
	val, err := s.client.Get(ctx, s.key(addr)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", addr, err)
	}

	var account domain.Account
	if err := json.Unmarshal([]byte(val), &account); err != nil {
		return nil, fmt.Errorf("unmarshal account %s: %w", addr, err)
	}
	return &account, nil
}

// Scan walks the address index and applies the filter client-side.
func (s *Store) Scan(ctx context.Context, filter ports.Filter) ([]*domain.Account, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis scan index: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, len(members))
	for i, member := range members {
		keys[i] = s.prefix + member
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis scan mget: %w", err)
	}

	var out []*domain.Account
	for _, val := range vals {
		raw, ok := val.(string)
		if !ok {
			// Index member without a value: deleted between ZRANGE and MGET.
			continue
		}
		var account domain.Account
		if err := json.Unmarshal([]byte(raw), &account); err != nil {
			return nil, fmt.Errorf("unmarshal scanned account: %w", err)
		}
		if filter.Match(&account) {
			out = append(out, &account)
		}
	}
	return out, nil
}

// Commit applies the batch through a transactional pipeline.
func (s *Store) Commit(ctx context.Context, ops []ports.WriteOp) error {
	pipe := s.client.TxPipeline()

	for _, op := range ops {
		if op.Account == nil {
			pipe.Del(ctx, s.key(op.Addr))
			pipe.ZRem(ctx, s.indexKey(), op.Addr.String())
			continue
		}

		data, err := json.Marshal(op.Account)
		if err != nil {
			return fmt.Errorf("marshal account %s: %w", op.Addr, err)
		}
		pipe.Set(ctx, s.key(op.Addr), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: 0, Member: op.Addr.String()})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis commit: %w", err)
	}
	return nil
}
