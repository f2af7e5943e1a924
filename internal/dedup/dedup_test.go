package dedup

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloomPositions(t *testing.T) {
	a := bloomPositions([]byte("E1000001"), bloomBits, bloomHashes)
	b := bloomPositions([]byte("E1000001"), bloomBits, bloomHashes)
	require.Len(t, a, bloomHashes)
	assert.Equal(t, a, b)
	for _, p := range a {
		assert.GreaterOrEqual(t, p, int64(0))
		assert.Less(t, p, int64(bloomBits))
	}
	assert.NotEqual(t, a, bloomPositions([]byte("E2000001"), bloomBits, bloomHashes))
}

func TestRedisTrackerWithoutClient(t *testing.T) {
	tr := NewRedisTracker(nil, 0)
	for i := 0; i < 2; i++ {
		first, err := tr.FirstSeen(context.Background(), "FloatingEdgeCheck", []string{"E1"})
		require.NoError(t, err)
		assert.True(t, first)
	}
}

// 需要真实 Redis：设置 DEDUP_TEST_REDIS_ADDR 时运行
func TestRedisTrackerConcurrentFirstSeen(t *testing.T) {
	addr := os.Getenv("DEDUP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DEDUP_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rc := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rc.Close() })
	check := "ConcurrentCheck-" + t.Name()
	require.NoError(t, rc.Del(ctx, "seen:"+check).Err())
	t.Cleanup(func() { rc.Del(context.Background(), "seen:"+check) })

	tr := NewRedisTracker(rc, time.Minute)
	var firsts int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := tr.FirstSeen(ctx, check, []string{"E1000001"})
			assert.NoError(t, err)
			if first {
				atomic.AddInt32(&firsts, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&firsts))

	ttl, err := rc.PTTL(ctx, "seen:"+check).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestMemoryTracker(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTracker(10, time.Hour)

	first, _ := tr.FirstSeen(ctx, "SinkIslandCheck", []string{"E2", "E1"})
	assert.True(t, first)
	again, _ := tr.FirstSeen(ctx, "SinkIslandCheck", []string{"E1", "E2"})
	assert.False(t, again)
	other, _ := tr.FirstSeen(ctx, "FloatingEdgeCheck", []string{"E1", "E2"})
	assert.True(t, other)

	assert.IsType(t, &MemoryTracker{}, New(nil))
}

func TestLRUEvictionAndExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewLRU[int](2, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)
	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
}
