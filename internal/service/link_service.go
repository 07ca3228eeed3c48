package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"shortly-platform/internal/analytics"
	"shortly-platform/internal/metrics"
	"shortly-platform/internal/model"
	"shortly-platform/internal/store"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const linkCachePrefix = "link:"

var (
	ErrInvalidURL = errors.New("invalid URL")
	// ErrShortIDExhausted 多次重试后仍然发生短码冲突
	ErrShortIDExhausted = errors.New("could not allocate a unique short id")
)

// Locator 把 IP 解析为位置描述，失败时返回 Unknown
type Locator interface {
	Locate(ctx context.Context, ip string) string
}

// CodeSource 短码来源
type CodeSource interface {
	GetCode() (string, error)
}

// Options LinkService 参数
type Options struct {
	MaxRetries int
	CacheTTL   time.Duration
}

// LinkService 短链接的创建、跳转、统计和删除
type LinkService struct {
	links      *store.LinkStore
	codes      CodeSource
	geo        Locator
	cache      *redis.Client
	cacheTTL   time.Duration
	maxRetries int
	logger     *zap.SugaredLogger
}

// cachedLink 跳转缓存中保存的内容
type cachedLink struct {
	ID          uint   `json:"id"`
	OriginalURL string `json:"originalUrl"`
}

// ShortenResult 创建结果，Reused 表示返回的是已存在的短链接
type ShortenResult struct {
	Link   *model.Link
	Reused bool
}

// NewLinkService cache 为 nil 时跳转不走缓存
func NewLinkService(links *store.LinkStore, codes CodeSource, geo Locator, cache *redis.Client, opts Options, logger *zap.SugaredLogger) *LinkService {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	return &LinkService{
		links:      links,
		codes:      codes,
		geo:        geo,
		cache:      cache,
		cacheTTL:   opts.CacheTTL,
		maxRetries: opts.MaxRetries,
		logger:     logger.Named("link_service"),
	}
}

// NormalizeURL 校验并规范化原始 URL，只接受带主机名的 http/https 地址
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	return raw, nil
}

// Shorten 为 owner 创建短链接；同一用户重复提交同一 URL 时返回已有记录
func (s *LinkService) Shorten(ctx context.Context, ownerID uint, rawURL string) (*ShortenResult, error) {
	originalURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	existing, err := s.links.FindByOwnerAndURL(ctx, ownerID, originalURL)
	if err == nil {
		metrics.LinksCreated.WithLabelValues("reused").Inc()
		return &ShortenResult{Link: existing, Reused: true}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("查询已有短链接失败: %w", err)
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		code, err := s.codes.GetCode()
		if err != nil {
			return nil, fmt.Errorf("生成短码失败: %w", err)
		}

		link, err := s.links.Create(ctx, originalURL, code, ownerID)
		if err == nil {
			metrics.LinksCreated.WithLabelValues("created").Inc()
			return &ShortenResult{Link: link}, nil
		}
		if !errors.Is(err, store.ErrDuplicateKey) {
			return nil, fmt.Errorf("创建短链接失败: %w", err)
		}

		// 可能是并发请求抢先创建了同一 URL，也可能是短码冲突
		if existing, findErr := s.links.FindByOwnerAndURL(ctx, ownerID, originalURL); findErr == nil {
			metrics.LinksCreated.WithLabelValues("reused").Inc()
			return &ShortenResult{Link: existing, Reused: true}, nil
		}
		metrics.ShortIDCollisions.Inc()
		s.logger.Warnw("短码冲突，重新生成", "attempt", attempt, "short_id", code)
	}
	return nil, ErrShortIDExhausted
}

// Visit 依次执行 查找 -> 解析位置 -> 记录点击，返回需要跳转的原始 URL。
// 点击记录写入成功后才返回，短码不存在时不记录点击。
func (s *LinkService) Visit(ctx context.Context, shortID, ip string) (string, error) {
	link, err := s.resolve(ctx, shortID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Redirects.WithLabelValues("miss").Inc()
		} else {
			metrics.Redirects.WithLabelValues("error").Inc()
		}
		return "", err
	}

	click := &model.Click{
		IP:        ip,
		Location:  s.geo.Locate(ctx, ip),
		Timestamp: time.Now(),
	}
	if err := s.links.AppendClick(ctx, link.ID, click); err != nil {
		metrics.Redirects.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.Redirects.WithLabelValues("hit").Inc()
	return link.OriginalURL, nil
}

// Dashboard 计算 owner 的统计数据
func (s *LinkService) Dashboard(ctx context.Context, ownerID uint) (analytics.Dashboard, error) {
	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return analytics.Summarize(links), nil
}

// Delete 删除 owner 名下的短链接并清理跳转缓存
func (s *LinkService) Delete(ctx context.Context, shortID string, ownerID uint) error {
	if err := s.links.DeleteByShortIDAndOwner(ctx, shortID, ownerID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, linkCachePrefix+shortID).Err(); err != nil {
			s.logger.Warnw("清理跳转缓存失败", "short_id", shortID, "error", err)
		}
	}
	return nil
}

// resolve 先查缓存再查库
func (s *LinkService) resolve(ctx context.Context, shortID string) (*cachedLink, error) {
	key := linkCachePrefix + shortID
	if s.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, time.Second)
		raw, err := s.cache.Get(cacheCtx, key).Bytes()
		cancel()
		if err == nil {
			var cl cachedLink
			if json.Unmarshal(raw, &cl) == nil && cl.ID != 0 {
				metrics.CacheResults.WithLabelValues("link", "hit").Inc()
				return &cl, nil
			}
		}
		metrics.CacheResults.WithLabelValues("link", "miss").Inc()
	}

	link, err := s.links.FindByShortID(ctx, shortID)
	if err != nil {
		return nil, err
	}
	cl := &cachedLink{ID: link.ID, OriginalURL: link.OriginalURL}

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(cl); err == nil {
			cacheCtx, cancel := context.WithTimeout(ctx, time.Second)
			if err := s.cache.Set(cacheCtx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Debugw("写入跳转缓存失败", "short_id", shortID, "error", err)
			}
			cancel()
		}
	}
	return cl, nil
}
