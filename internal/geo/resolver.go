package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"shortly-platform/internal/metrics"
	"shortly-platform/internal/model"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "geo:"

var errLookupFailed = errors.New("geo lookup failed")

// Options 地理位置解析器参数
type Options struct {
	Endpoint        string
	Timeout         time.Duration
	CacheTTL        time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Resolver 把客户端 IP 解析为 "地区, 国家" 形式的位置描述。
// 解析是尽力而为的：任何失败都返回 model.UnknownLocation，不会向调用方返回错误。
type Resolver struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	cache    *redis.Client
	cacheTTL time.Duration
	breaker  *gobreaker.CircuitBreaker[string]
	logger   *zap.SugaredLogger
}

// ipAPIResponse ip-api.com 的响应格式
type ipAPIResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
}

// NewResolver 创建解析器，cache 为 nil 时不做结果缓存
func NewResolver(opts Options, cache *redis.Client, logger *zap.SugaredLogger) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = time.Minute
	}

	r := &Resolver{
		client:   &http.Client{},
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		timeout:  opts.Timeout,
		cache:    cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger.Named("geo"),
	}

	failures := opts.BreakerFailures
	r.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "geo-lookup",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warnw("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return r
}

// Normalize 规范化 IP 字符串，去掉 IPv4 映射前缀。
// public 为 false 表示地址无法解析或属于回环/私有网段，不应发起外部查询。
func Normalize(raw string) (addr netip.Addr, public bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap().WithZone("")
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast() {
		return addr, false
	}
	return addr, true
}

// Locate 返回 IP 对应的位置描述
func (r *Resolver) Locate(ctx context.Context, ip string) string {
	addr, public := Normalize(ip)
	if !public {
		if addr.IsValid() {
			metrics.GeoLookups.WithLabelValues("private").Inc()
		} else {
			metrics.GeoLookups.WithLabelValues("invalid").Inc()
		}
		return model.UnknownLocation
	}
	if r.endpoint == "" {
		return model.UnknownLocation
	}

	key := cacheKeyPrefix + addr.String()
	if r.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		cached, err := r.cache.Get(cacheCtx, key).Result()
		cancel()
		if err == nil && cached != "" {
			metrics.GeoLookups.WithLabelValues("cached").Inc()
			return cached
		}
	}

	location, err := r.breaker.Execute(func() (string, error) {
		return r.lookup(ctx, addr)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.GeoLookups.WithLabelValues("breaker_open").Inc()
		} else {
			metrics.GeoLookups.WithLabelValues("failed").Inc()
			r.logger.Warnw("IP 位置查询失败", "ip", addr.String(), "error", err)
		}
		return model.UnknownLocation
	}

	metrics.GeoLookups.WithLabelValues("resolved").Inc()
	if r.cache != nil && r.cacheTTL > 0 && location != model.UnknownLocation {
		cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 200*time.Millisecond)
		if err := r.cache.Set(cacheCtx, key, location, r.cacheTTL).Err(); err != nil {
			r.logger.Debugw("写入位置缓存失败", "ip", addr.String(), "error", err)
		}
		cancel()
	}
	return location
}

// lookup 调用外部接口，超时由 r.timeout 约束
func (r *Resolver) lookup(ctx context.Context, addr netip.Addr) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s?fields=status,message,country,regionName", r.endpoint, url.PathEscape(addr.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", errLookupFailed, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %v", errLookupFailed, err)
	}
	if body.Status != "" && body.Status != "success" {
		// 上游明确拒绝（如保留地址），不计入熔断失败
		r.logger.Debugw("上游未返回位置", "ip", addr.String(), "message", body.Message)
		return model.UnknownLocation, nil
	}
	return Compose(body.RegionName, body.Country), nil
}

// Compose 用 ", " 连接地区和国家，忽略空字段，都为空时返回 Unknown
func Compose(region, country string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(region); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(country); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return model.UnknownLocation
	}
	return strings.Join(parts, ", ")
}

// Disabled 关闭地理位置解析时使用，所有 IP 都记为 Unknown
type Disabled struct{}

func (Disabled) Locate(context.Context, string) string {
	return model.UnknownLocation
}
