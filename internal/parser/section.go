package parser

import (
	"strings"
	"unicode/utf8"
)

// 标题行长度上限，超过此长度的行不会被视为章节标题
const sectionHeadingMaxLen = 50

// splitLines 按换行符拆分文本，保留空行以保证行号与原文一致
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// lineLen 按字符计算行长度
func lineLen(s string) int {
	return utf8.RuneCountInString(s)
}

// containsAny 判断小写行是否包含任一关键词
func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// sectionTracker 章节状态机：短的关键词行进入章节，包含边界关键词的行离开章节
type sectionTracker struct {
	enter  []string
	exit   []string
	active bool
}

// isHeading 判断是否为章节标题行，命中时进入章节
func (s *sectionTracker) isHeading(line, lower string) bool {
	if containsAny(lower, s.enter) && lineLen(line) < sectionHeadingMaxLen {
		s.active = true
		return true
	}
	return false
}

// checkBoundary 遇到其他章节的关键词时离开当前章节，之后的标题行可以重新进入
func (s *sectionTracker) checkBoundary(lower string) {
	if s.active && containsAny(lower, s.exit) {
		s.active = false
	}
}

// lookahead 返回锚点行之后 [i+1, i+span) 范围内去除空白后的非空行
func lookahead(lines []string, i, span int) []string {
	end := i + span
	if end > len(lines) {
		end = len(lines)
	}
	window := make([]string, 0, span)
	for j := i + 1; j < end; j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			continue
		}
		window = append(window, next)
	}
	return window
}
