package tracing

import (
	"strings"
)

// 写入 span 或调试日志的各类文本长度上限，按 rune 计
const (
	MaxSQLLength          = 500
	MaxRedisKeyLength     = 100
	MaxResumeTextLength   = 150
	MaxErrorMessageLength = 300
)

// piiKeys 属性名包含其中任一关键字时，值按个人信息掩码
var piiKeys = []string{
	"email", "phone", "linkedin", "github", "website",
	"name", "姓名", "location", "address", "地址",
	"api_key", "password", "token",
}

// SafeAttributeValue 按属性名决定掩码还是截断
func SafeAttributeValue(name, value string, maxLength int) string {
	lower := strings.ToLower(name)
	for _, key := range piiKeys {
		if strings.Contains(lower, key) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 保留首尾少量字符，其余替换为 *。
// 两个字以内只留第一个字，五个字以内留首尾各一个，更长的留首尾各两个。
func MaskPII(value string) string {
	runes := []rune(value)
	n := len(runes)
	switch {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n == 2:
		return string(runes[0]) + "*"
	case n <= 4:
		return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// TruncateString 超长时保留首尾两段，中间以 ... 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	keep := (maxLength - 3) / 2
	return string(runes[:keep]) + "..." + string(runes[len(runes)-keep:])
}

func SafeSQL(sql string) string { return TruncateString(sql, MaxSQLLength) }

func SafeRedisKey(key string) string { return TruncateString(key, MaxRedisKeyLength) }

// SafeResumeContent 简历正文只用于调试日志，截断到首尾各一小段
func SafeResumeContent(content string) string {
	return TruncateString(content, MaxResumeTextLength)
}
