package replay_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/redis"
	"github.com/dmitrymomot/mfakit/pkg/replay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingStore struct{}

func (failingStore) MarkUsed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestGuard_Check(t *testing.T) {
	t.Parallel()
	store := replay.NewMemoryStore(replay.WithCleanupInterval(0))
	defer store.Close()
	guard := replay.NewGuard(store, time.Minute)
	ctx := context.Background()

	require.NoError(t, guard.Check(ctx, "alice", 100))
	assert.ErrorIs(t, guard.Check(ctx, "alice", 100), replay.ErrReplayed)

	// different counter or subject is independent
	assert.NoError(t, guard.Check(ctx, "alice", 101))
	assert.NoError(t, guard.Check(ctx, "bob", 100))
}

func TestGuard_EmptySubject(t *testing.T) {
	t.Parallel()
	guard := replay.NewGuard(replay.NewMemoryStore(replay.WithCleanupInterval(0)), time.Minute)
	assert.ErrorIs(t, guard.Check(context.Background(), "  ", 1), replay.ErrEmptySubject)
}

func TestGuard_StoreFailure(t *testing.T) {
	t.Parallel()
	guard := replay.NewGuard(failingStore{}, time.Minute)
	err := guard.Check(context.Background(), "alice", 1)
	assert.ErrorIs(t, err, replay.ErrStoreFailure)
	assert.NotErrorIs(t, err, replay.ErrReplayed)
}

func TestGuard_KeyPrefixSeparatesNamespaces(t *testing.T) {
	t.Parallel()
	store := replay.NewMemoryStore(replay.WithCleanupInterval(0))
	defer store.Close()
	ctx := context.Background()

	a := replay.NewGuard(store, time.Minute, replay.WithKeyPrefix("app-a:"))
	b := replay.NewGuard(store, time.Minute, replay.WithKeyPrefix("app-b:"))

	require.NoError(t, a.Check(ctx, "alice", 7))
	assert.NoError(t, b.Check(ctx, "alice", 7))
	assert.Equal(t, 2, store.Len())
}

func TestGuard_ConcurrentChecksAcceptOnce(t *testing.T) {
	t.Parallel()
	store := replay.NewMemoryStore(replay.WithCleanupInterval(0))
	defer store.Close()
	guard := replay.NewGuard(store, time.Minute)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.Check(context.Background(), "alice", 42) == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), accepted.Load())
}

func TestTTLFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 90*time.Second, replay.TTLFor(30*time.Second, 1))
	assert.Equal(t, 30*time.Second, replay.TTLFor(30*time.Second, 0))
	assert.Equal(t, 300*time.Second, replay.TTLFor(60*time.Second, 2))
}

func TestNewGuard_PanicsWithoutStore(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { replay.NewGuard(nil, time.Minute) })
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := replay.NewMemoryStore(replay.WithCleanupInterval(0), replay.WithNow(clock.Now))
	defer store.Close()
	ctx := context.Background()

	fresh, err := store.MarkUsed(ctx, "k", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, fresh)

	clock.Advance(9 * time.Second)
	fresh, err = store.MarkUsed(ctx, "k", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, fresh)

	clock.Advance(time.Second)
	fresh, err = store.MarkUsed(ctx, "k", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestMemoryStore_Purge(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := replay.NewMemoryStore(replay.WithCleanupInterval(0), replay.WithNow(clock.Now))
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkUsed(ctx, "short", time.Second)
	require.NoError(t, err)
	_, err = store.MarkUsed(ctx, "long", time.Hour)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	store.Purge()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	t.Parallel()
	store := replay.NewMemoryStore(replay.WithCleanupInterval(0))
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.MarkUsed(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_BackgroundCleanup(t *testing.T) {
	t.Parallel()
	store := replay.NewMemoryStore(replay.WithCleanupInterval(10 * time.Millisecond))
	defer store.Close()

	_, err := store.MarkUsed(context.Background(), "k", time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	store := replay.NewMemoryStore()
	store.Close()
	assert.NotPanics(t, store.Close)
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: redisURL, RetryAttempts: 1})
	require.NoError(t, err)
	defer client.Close()

	store := replay.NewRedisStore(client)

	prefix := "replay-test:" + time.Now().Format(time.RFC3339Nano) + ":"
	guard := replay.NewGuard(store, 2*time.Second, replay.WithKeyPrefix(prefix))

	require.NoError(t, guard.Check(ctx, "alice", 1))
	assert.ErrorIs(t, guard.Check(ctx, "alice", 1), replay.ErrReplayed)

	ttl, err := client.PTTL(ctx, prefix+"alice:1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, 2*time.Second)
}
