package logger

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// Redacted 敏感字段替换值
const Redacted = "[REDACTED]"

// SensitiveFields 记录日志前需要脱敏的字段，匹配时忽略大小写
var SensitiveFields = []string{"password", "oldPassword", "newPassword", "confirmNewPassword"}

// 值可能被截断而缺少结尾引号
var sensitivePattern = regexp.MustCompile(`(?i)("(?:password|oldPassword|newPassword|confirmNewPassword)"\s*:\s*)"(?:[^"\\]|\\.)*(?:"|\\?$)`)

var inlinePattern = regexp.MustCompile(`(?i)(password[:=\s]*)['"][^'"]*['"]?`)

// RedactJSON 对 JSON 请求体做脱敏，解析失败时退化为正则替换
func RedactJSON(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return sensitivePattern.ReplaceAllString(string(body), `${1}"`+Redacted+`"`)
	}

	out, err := json.Marshal(redactValue(data))
	if err != nil {
		return Redacted
	}
	return string(out)
}

// RedactText 对错误信息等自由文本做脱敏
func RedactText(s string) string {
	return inlinePattern.ReplaceAllString(s, "${1}"+Redacted)
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if isSensitive(k) {
				val[k] = Redacted
				continue
			}
			val[k] = redactValue(inner)
		}
	case []any:
		for i, inner := range val {
			val[i] = redactValue(inner)
		}
	}
	return v
}

func isSensitive(key string) bool {
	for _, field := range SensitiveFields {
		if strings.EqualFold(key, field) {
			return true
		}
	}
	return false
}
