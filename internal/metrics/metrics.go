package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests 按路由和状态码统计请求数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortly_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortly_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Redirects 重定向结果: hit / miss / error
	Redirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortly_redirects_total",
			Help: "Total number of short link redirects by outcome",
		},
		[]string{"outcome"},
	)

	LinksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortly_links_created_total",
			Help: "Total number of shorten requests by result (created, reused)",
		},
		[]string{"result"},
	)

	// ShortIDCollisions 插入时短码冲突次数
	ShortIDCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortly_shortid_collisions_total",
			Help: "Total number of short id collisions detected on insert",
		},
	)

	// GeoLookups 地理位置查询结果: resolved / private / invalid / cached / failed / breaker_open
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortly_geo_lookups_total",
			Help: "Total number of geo lookups by outcome",
		},
		[]string{"outcome"},
	)

	CacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortly_cache_results_total",
			Help: "Redis cache lookups by cache name and result",
		},
		[]string{"cache", "result"},
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortly_chat_requests_total",
			Help: "Total number of chat proxy requests by outcome",
		},
		[]string{"outcome"},
	)
)
