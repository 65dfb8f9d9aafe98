package parser

import (
	"regexp"
	"strings"

	"portfolio-go/internal/types"
)

const (
	// MaxEducationRecords 教育经历最多保留的条数
	MaxEducationRecords = 3
	// 教育锚点的前瞻窗口（包含锚点行本身）
	educationLookahead = 5
	// FallbackInstitution 兜底记录使用的占位学校名
	FallbackInstitution = "Educational Institution"
)

var (
	educationEnterKeywords = []string{"education", "academic", "qualification", "university", "college", "institute"}
	educationExitKeywords  = []string{"experience", "skill", "project"}

	degreeLevelRe  = regexp.MustCompile(`(?i)(bachelor|b\.?tech|b\.?e|b\.?sc|master|m\.?tech|m\.?e|m\.?sc|phd|doctorate)`)
	fieldOfStudyRe = regexp.MustCompile(`(?i)(computer science|information technology|software engineering|electrical engineering|mechanical engineering)`)

	educationFallbackMarkers = []string{"University", "College", "Bachelor", "Master"}
)

// isEducationAnchor 学位、专业或院校名所在行
func isEducationAnchor(line string) bool {
	return degreeLevelRe.MatchString(line) || fieldOfStudyRe.MatchString(line) || hasInstitutionMarker(line)
}

// ExtractEducation 扫描教育章节，按文档顺序返回最多 MaxEducationRecords 条记录。
// 章节内没有任何锚点时退化为全文扫描，最多产生一条兜底记录。
func ExtractEducation(text string) []types.EducationRecord {
	lines := splitLines(text)
	section := sectionTracker{enter: educationEnterKeywords, exit: educationExitKeywords}
	records := []types.EducationRecord{}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		if section.isHeading(line, lower) {
			continue
		}
		section.checkBoundary(lower)

		if !section.active || line == "" || !isEducationAnchor(line) {
			continue
		}

		window := lookahead(lines, i, educationLookahead)
		rec := types.EducationRecord{Degree: line}
		rec.Institution, _ = matchInstitution(window)
		rec.Period, _ = matchEducationPeriod(window)
		rec.GPA, _ = matchGPA(window)
		records = append(records, rec)

		if len(records) == MaxEducationRecords {
			return records
		}
	}

	if len(records) == 0 {
		if rec, ok := educationFallback(lines); ok {
			records = append(records, rec)
		}
	}
	return records
}

// educationFallback 全文第一行包含院校或学位字样的内容
func educationFallback(lines []string) (types.EducationRecord, bool) {
	for _, raw := range lines {
		for _, m := range educationFallbackMarkers {
			if strings.Contains(raw, m) {
				return types.EducationRecord{
					Degree:      strings.TrimSpace(raw),
					Institution: FallbackInstitution,
				}, true
			}
		}
	}
	return types.EducationRecord{}, false
}
