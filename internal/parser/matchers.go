package parser

import (
	"regexp"
	"strings"
)

// 字段匹配器：每个函数只负责一个字段，输入为锚点后的候选窗口，窗口内第一个命中者胜出。

var (
	educationPeriodRe = regexp.MustCompile(`(?i)(20\d{2}[-–]\s*20\d{2}|20\d{2}[-–]\s*(present|current|now))`)
	gpaRe             = regexp.MustCompile(`(?i)(gpa|cgpa)[:\s]*([0-9]+\.[0-9]+|[0-9]+/[0-9]+)`)

	// 公司名候选行不能像日期或月份
	dateLikeRe = regexp.MustCompile(`(?i)(20\d{2}[-–]|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)

	// 按优先级排列的任职时间模式
	experiencePeriodRes = []*regexp.Regexp{
		regexp.MustCompile(`(20\d{2}[-–]\s*20\d{2})`),
		regexp.MustCompile(`(?i)(20\d{2}[-–]\s*(present|current|now))`),
		regexp.MustCompile(`(?i)((jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*20\d{2}\s*[-–]\s*(present|current|now))`),
		regexp.MustCompile(`(?i)((jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*20\d{2}\s*[-–]\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*20\d{2})`),
	}

	bulletRe      = regexp.MustCompile(`^[•\-*]\s`)
	numberedRe    = regexp.MustCompile(`^[0-9]+\.\s`)
	listMarkerRe  = regexp.MustCompile(`^([•\-*]|[0-9]+\.)\s*`)
	descExcludeRe = regexp.MustCompile(`(?i)(20\d{2}[-–]|university|college|education|skill)`)
)

// 公司名候选行长度上限
const companyMaxLen = 100

// institutionMarkers 大小写敏感的院校标记
var institutionMarkers = []string{"University", "College", "Institute"}

func hasInstitutionMarker(line string) bool {
	for _, m := range institutionMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// matchInstitution 第一个包含 University/College/Institute 的行
func matchInstitution(window []string) (string, bool) {
	for _, line := range window {
		if hasInstitutionMarker(line) {
			return line, true
		}
	}
	return "", false
}

// matchEducationPeriod 第一个年份区间，如 2020-2024 或 2022-present
func matchEducationPeriod(window []string) (string, bool) {
	for _, line := range window {
		if m := educationPeriodRe.FindString(line); m != "" {
			return m, true
		}
	}
	return "", false
}

// matchGPA 返回 GPA/CGPA 后的数值部分
func matchGPA(window []string) (string, bool) {
	for _, line := range window {
		if m := gpaRe.FindStringSubmatch(line); m != nil {
			return m[2], true
		}
	}
	return "", false
}

// matchCompany 第一个不像日期的短行
func matchCompany(window []string) (string, bool) {
	for _, line := range window {
		if lineLen(line) < companyMaxLen && !dateLikeRe.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

// matchExperiencePeriod 按行扫描，每行按优先级依次尝试各模式，最早命中的行胜出
func matchExperiencePeriod(window []string) (string, bool) {
	for _, line := range window {
		for _, re := range experiencePeriodRes {
			if m := re.FindString(line); m != "" {
				return m, true
			}
		}
	}
	return "", false
}

// isListItem 是否以项目符号或编号开头
func isListItem(line string) bool {
	return bulletRe.MatchString(line) || numberedRe.MatchString(line)
}

// matchAchievements 收集窗口内所有列表项，去掉前缀标记
func matchAchievements(window []string) []string {
	achievements := []string{}
	for _, line := range window {
		if isListItem(line) {
			achievements = append(achievements, strings.TrimSpace(listMarkerRe.ReplaceAllString(line, "")))
		}
	}
	return achievements
}

// matchDescription 拼接紧随锚点的若干行，跳过日期和其他章节关键词所在的行
func matchDescription(window []string) (string, bool) {
	parts := make([]string, 0, len(window))
	for _, line := range window {
		if descExcludeRe.MatchString(line) {
			continue
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
