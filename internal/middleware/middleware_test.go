package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shortly-platform/internal/config"
	"shortly-platform/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(r http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_PerClientInMemory(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, &config.Limit{Enabled: true, Requests: 2, Burst: 2, Window: 900, SkipPaths: []string{"/health"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "/x", "203.0.113.1").Code)

	// 其他客户端不受影响，跳过的路径不计数
	assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.2").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "/health", "203.0.113.1").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, &config.Limit{Enabled: false}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.1").Code)
	}
}

func TestGinZapRecovery_HidesPanicDetail(t *testing.T) {
	r := gin.New()
	r.Use(GinZapRecovery(zap.NewNop(), true))
	r.GET("/boom", func(c *gin.Context) { panic("password: 'hunter22'") })

	w := doRequest(r, "/boom", "203.0.113.1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Something went wrong"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), GinZapLogger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, "/x", "203.0.113.1")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestStripCredentials(t *testing.T) {
	dump := "GET / HTTP/1.1\r\nHost: x\r\nCookie: token=secret\r\n\r\n"
	out := stripCredentials(dump)
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "Host: x")
}

func TestRateLimit_RedisFixedWindow(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	r := gin.New()
	r.Use(RateLimit(rdb, &config.Limit{Enabled: true, Requests: 3, Window: 900}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.1").Code)
	}
	w := doRequest(r, "/x", "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"`+rateLimitMessage+`"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.2").Code)

	keys := mr.Keys()
	require.Len(t, keys, 2)
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, "ratelimit:"))
		assert.Greater(t, mr.TTL(k).Seconds(), 0.0)
	}
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	mr.Close()

	r := gin.New()
	r.Use(RateLimit(rdb, &config.Limit{Enabled: true, Requests: 1, Window: 900}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "/x", "203.0.113.1").Code)
}

// failingServer 记录访问日志，处理器读完请求体后返回 500
func failingServer(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(GinZapLogger(zap.New(core)))
	r.POST("/login", func(c *gin.Context) {
		_, _ = c.GetRawData()
		c.Status(http.StatusInternalServerError)
	})
	return r, logs
}

func loggedBody(t *testing.T, logs *observer.ObservedLogs) string {
	t.Helper()
	entries := logs.All()
	require.Len(t, entries, 1)
	body, ok := entries[0].ContextMap()["body"].(string)
	require.True(t, ok)
	return body
}

func TestGinZapLogger_RedactsBodyOnServerError(t *testing.T) {
	r, logs := failingServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.co","Password":"hunter2secret"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	body := loggedBody(t, logs)
	assert.NotContains(t, body, "hunter2secret")
	assert.Contains(t, body, "a@b.co")
}

func TestGinZapLogger_RedactsPasswordCutByBodyLimit(t *testing.T) {
	r, logs := failingServer(t)

	// 截断点落在密码值中间
	prefix := `{"name":"` + strings.Repeat("a", maxLoggedBody-len(`{"name":"`)-len(`","password":"`)-5) + `","password":"`
	payload := prefix + `hunter2secret"}`
	require.Greater(t, len(payload), maxLoggedBody)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	body := loggedBody(t, logs)
	assert.NotContains(t, body, "hunte")
	assert.Contains(t, body, `"password":"[REDACTED]"`)
}
