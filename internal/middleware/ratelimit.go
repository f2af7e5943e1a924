// 包 middleware：服务入口的 HTTP 中间件
package middleware

import (
	"net/http"
	"sync"
	"time"

	"atlas-checks/internal/config"
	"atlas-checks/internal/logger"
)

// DefaultQPS 未配置 RATE_LIMIT_QPS 时的每秒请求数
const DefaultQPS = 200

// TokenBucket：每秒补满的令牌桶
// 约束：不排队，超限直接返回 429
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

// NewTokenBucket 每秒 qps 个令牌；qps<=0 时取默认
func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		qps = DefaultQPS
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

// Allow 取一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit 用令牌桶包装 handler
func Limit(tb *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap 按 RATE_LIMIT_ENABLED / RATE_LIMIT_QPS 决定是否限流
func Wrap(next http.Handler) http.Handler {
	if !config.GetenvBool("RATE_LIMIT_ENABLED", false) {
		return next
	}
	qps := config.GetenvInt("RATE_LIMIT_QPS", DefaultQPS)
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return Limit(NewTokenBucket(qps), next)
}
