// Package clientip 从请求中推断客户端地址
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Headers 按优先级排列的代理头
var Headers = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// FromRequest 依次检查代理头，都为空时使用连接的对端地址。
// 多值时取第一个逗号分隔的值并去掉空白，结果可能为空字符串。
func FromRequest(r *http.Request) string {
	raw := ""
	for _, h := range Headers {
		if v := r.Header.Get(h); strings.TrimSpace(v) != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		raw = peer(r.RemoteAddr)
	}
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}

func peer(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
