package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shortly-platform/internal/metrics"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// 上游响应体上限
const maxResponseBytes = 1 << 20

// ErrUpstream 问答服务不可用、超时或返回了非法响应
var ErrUpstream = errors.New("chat upstream failure")

// Client 把问题转发给外部问答服务
type Client struct {
	http     *http.Client
	endpoint string
	timeout  time.Duration
	logger   *zap.SugaredLogger
}

type askRequest struct {
	Question string `json:"question"`
}

// NewClient endpoint 为问答服务根地址，请求发往 <endpoint>/chat
func NewClient(endpoint string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		http:     &http.Client{},
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
		logger:   logger.Named("chat"),
	}
}

// Ask 转发问题并原样返回上游的 JSON，不做重试
func (c *Client) Ask(ctx context.Context, question string) (json.RawMessage, error) {
	if c.endpoint == "" {
		metrics.ChatRequests.WithLabelValues("unconfigured").Inc()
		return nil, fmt.Errorf("%w: endpoint not configured", ErrUpstream)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ChatRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ChatRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if !json.Valid(body) {
		metrics.ChatRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: response is not JSON", ErrUpstream)
	}

	metrics.ChatRequests.WithLabelValues("ok").Inc()
	return json.RawMessage(body), nil
}
