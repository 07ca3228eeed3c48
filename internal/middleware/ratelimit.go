package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"shortly-platform/internal/clientip"
	"shortly-platform/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const rateLimitMessage = "Too many requests from this IP, please try again later"

// RateLimit 按客户端 IP 限流。配置了 Redis 时使用固定窗口计数，多实例共享；
// 否则在进程内为每个 IP 维护一个令牌桶。
func RateLimit(redisClient *redis.Client, limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	window := time.Duration(limitConfig.Window) * time.Second
	var allow func(ctx context.Context, key string) bool
	if redisClient != nil {
		allow = redisAllow(redisClient, limitConfig.Requests, window)
	} else {
		allow = newMemoryLimiter(limitConfig.Requests, limitConfig.Burst, window).allow
	}

	return func(c *gin.Context) {
		// 跳过特定路径
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !allow(c.Request.Context(), clientip.FromRequest(c.Request)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": rateLimitMessage})
			return
		}
		c.Next()
	}
}

// redisAllow 固定窗口计数，Redis 出错时放行
func redisAllow(rdb *redis.Client, limit int64, window time.Duration) func(ctx context.Context, key string) bool {
	return func(ctx context.Context, key string) bool {
		bucket := time.Now().Unix() / int64(window.Seconds())
		redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

		ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, window)
		if _, err := pipe.Exec(ctx); err != nil {
			zap.S().Warnw("限流计数失败，放行请求", "error", err)
			return true
		}
		return incr.Val() <= limit
	}
}

// memoryLimiter 进程内每 IP 令牌桶
type memoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newMemoryLimiter(requests, burst int64, window time.Duration) *memoryLimiter {
	if burst <= 0 {
		burst = requests
	}
	return &memoryLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    int(burst),
		idle:     window,
		lastGC:   time.Now(),
	}
}

func (m *memoryLimiter) allow(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.lastGC) > m.idle {
		for k, v := range m.limiters {
			if now.Sub(v.lastSeen) > m.idle {
				delete(m.limiters, k)
			}
		}
		m.lastGC = now
	}

	v, ok := m.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}
