package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tally/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_MutualExclusion(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "test:")

	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "account-a", 5*time.Second)
	require.NoError(t, err)

	// Second acquisition for the same key must block until released.
	var acquiredSecond sync.WaitGroup
	acquiredSecond.Add(1)
	released := make(chan struct{})
	go func() {
		defer acquiredSecond.Done()
		unlock2, err := locker.Lock(ctx, "account-a", 5*time.Second)
		assert.NoError(t, err)
		select {
		case <-released:
		default:
			t.Error("second lock acquired before first was released")
		}
		if unlock2 != nil {
			assert.NoError(t, unlock2(ctx))
		}
	}()

	// A different key is independent and must not block.
	unlockOther, err := locker.Lock(ctx, "account-b", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlockOther(ctx))

	time.Sleep(20 * time.Millisecond)
	close(released)
	require.NoError(t, unlock(ctx))

	acquiredSecond.Wait()
}

func TestLocker_ContextCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "test:")

	unlock, err := locker.Lock(context.Background(), "held", 5*time.Second)
	require.NoError(t, err)
	defer unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "held", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
