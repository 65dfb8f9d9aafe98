package parser

import (
	"strings"

	"portfolio-go/internal/types"
)

// 基础扫描器使用的关键词
var (
	basicEducationKeywords = []string{"university", "college", "institute", "bachelor", "master", "degree", "education"}
	basicSkillTerms        = []string{"javascript", "python", "java", "react", "node", "html", "css", "sql", "mongodb", "express"}
)

// 基础扫描中被视为教育条目或学校的行长度上限
const basicLineMaxLen = 100

// ParseBasic 简化的单遍扫描，在完整解析流程失败后使用。
// 只识别教育经历和一组常见技术词，不提取工作经历。
func ParseBasic(text string) *types.ParseResult {
	result := types.NewParseResult()

	var current *types.EducationRecord
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case containsAny(lower, basicEducationKeywords) && lineLen(line) < basicLineMaxLen:
			if current != nil {
				result.Education = append(result.Education, *current)
			}
			current = &types.EducationRecord{Degree: trimmed}
		case current == nil:
		case current.Institution == "" && lineLen(line) < basicLineMaxLen:
			current.Institution = trimmed
		case current.Period == "" && (strings.Contains(line, "20") || strings.Contains(line, "19")):
			current.Period = trimmed
		}
	}
	if current != nil {
		result.Education = append(result.Education, *current)
	}

	lowerText := strings.ToLower(text)
	var found []string
	for _, term := range basicSkillTerms {
		if strings.Contains(lowerText, term) {
			found = append(found, term)
		}
	}
	if len(found) > 0 {
		result.Skills = append(result.Skills, types.SkillCategory{Category: FallbackSkillCategory, Skills: found})
	}
	return result
}
