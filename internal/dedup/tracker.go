// 包 dedup：记录标记是否首次出现，用于区分新问题与历史遗留
package dedup

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"atlas-checks/internal/logger"
	"atlas-checks/internal/metrics"
)

const (
	bloomBits   = 1 << 24
	bloomHashes = 4
	// DefaultTTL 位图与内存记录的保留时间
	DefaultTTL = 30 * 24 * time.Hour
)

// Tracker：同一检查下对象集合相同的标记视为同一问题
type Tracker interface {
	FirstSeen(ctx context.Context, check string, uniqueIDs []string) (bool, error)
}

func flagKey(uniqueIDs []string) string {
	ids := append([]string(nil), uniqueIDs...)
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// RedisTracker：每个检查一张布隆位图，键 seen:<check>
type RedisTracker struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedisTracker rc 为 nil 时所有标记都视为首次出现
func NewRedisTracker(rc *redis.Client, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{rc: rc, ttl: ttl}
}

func (t *RedisTracker) FirstSeen(ctx context.Context, check string, uniqueIDs []string) (bool, error) {
	if t.rc == nil {
		return true, nil
	}
	positions := bloomPositions([]byte(flagKey(uniqueIDs)), bloomBits, bloomHashes)
	first, err := bloomCheckAndSet(ctx, t.rc, "seen:"+check, positions, t.ttl)
	if err != nil {
		logger.L().Warn("dedup_redis_error", "check", check, "err", err)
		return true, err
	}
	if first {
		metrics.RedisMissesTotal.Inc()
	} else {
		metrics.RedisHitsTotal.Inc()
	}
	return first, nil
}

// MemoryTracker：未启用 Redis 时的进程内实现，容量有限
type MemoryTracker struct {
	seen *LRU[struct{}]
}

func NewMemoryTracker(capacity int, ttl time.Duration) *MemoryTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryTracker{seen: NewLRU[struct{}](capacity, ttl)}
}

func (t *MemoryTracker) FirstSeen(_ context.Context, check string, uniqueIDs []string) (bool, error) {
	key := check + "|" + flagKey(uniqueIDs)
	if _, ok := t.seen.Get(key); ok {
		return false, nil
	}
	t.seen.Set(key, struct{}{})
	return true, nil
}

// New 有 Redis 客户端用布隆位图，否则用内存 LRU
func New(rc *redis.Client) Tracker {
	if rc != nil {
		return NewRedisTracker(rc, DefaultTTL)
	}
	return NewMemoryTracker(100000, DefaultTTL)
}
