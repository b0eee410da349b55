package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, ttl), mr
}

func TestClaim_OnlyFirstCallerWins(t *testing.T) {
	s, _ := newStore(t, 0)
	ctx := context.Background()
	key := SagaKey("pay-1")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Claim(ctx, key)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	again, err := s.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestClaim_ExpiresWithTTL(t *testing.T) {
	s, mr := newStore(t, time.Minute)
	ctx := context.Background()

	ok, err := s.Claim(ctx, SagaKey("pay-2"))
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = s.Claim(ctx, SagaKey("pay-2"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaim_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewStore(rdb, 0)
	mr.Close()

	_, err = s.Claim(context.Background(), SagaKey("pay-3"))
	assert.Error(t, err)
}
