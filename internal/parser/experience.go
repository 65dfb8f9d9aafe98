package parser

import (
	"regexp"
	"strings"

	"portfolio-go/internal/types"
)

const (
	// MaxExperienceRecords 工作经历最多保留的条数
	MaxExperienceRecords = 4
	// 工作经历锚点的前瞻窗口（包含锚点行本身）
	experienceLookahead = 10
	// 没有成就列表时用于拼接描述的窗口
	descriptionLookahead = 4

	atSeparator  = " at "
	atSeparatorN = len(atSeparator)
)

var (
	experienceEnterKeywords = []string{"experience", "work", "employment", "professional", "career"}
	experienceExitKeywords  = []string{"education", "skill", "project"}

	jobTitleRe = regexp.MustCompile(`(?i)(developer|engineer|analyst|specialist|manager|consultant|intern|associate)`)
	jobStackRe = regexp.MustCompile(`(?i)(full.?stack|front.?end|back.?end|software|web)`)
)

// isExperienceAnchor 职位名称、技术栈描述，或包含 " at " / "@" 的行
func isExperienceAnchor(line string) bool {
	return jobTitleRe.MatchString(line) ||
		jobStackRe.MatchString(line) ||
		strings.Contains(line, atSeparator) ||
		strings.Contains(line, "@")
}

// indexAt 不区分大小写地查找 " at " 的位置
func indexAt(line string) int {
	for i := 0; i+atSeparatorN <= len(line); i++ {
		if line[i] == ' ' && line[i+1]|0x20 == 'a' && line[i+2]|0x20 == 't' && line[i+3] == ' ' {
			return i
		}
	}
	return -1
}

// splitPosition 把 "Software Engineer at TechCorp" 拆成职位和公司
func splitPosition(line string) (position, company string) {
	idx := indexAt(line)
	if idx < 0 {
		return line, ""
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+atSeparatorN:])
}

// ExtractExperience 扫描工作经历章节，按文档顺序返回最多 MaxExperienceRecords 条记录。
// 前瞻窗口内出现列表项时只填充 Achievements，否则用紧随的几行拼接 Description。
func ExtractExperience(text string) []types.ExperienceRecord {
	lines := splitLines(text)
	section := sectionTracker{enter: experienceEnterKeywords, exit: experienceExitKeywords}
	records := []types.ExperienceRecord{}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		if section.isHeading(line, lower) {
			continue
		}
		section.checkBoundary(lower)

		if !section.active || line == "" || !isExperienceAnchor(line) {
			continue
		}

		rec := types.ExperienceRecord{}
		rec.Position, rec.Company = splitPosition(line)

		window := lookahead(lines, i, experienceLookahead)
		if rec.Company == "" {
			rec.Company, _ = matchCompany(window)
		}
		rec.Period, _ = matchExperiencePeriod(window)
		rec.Achievements = matchAchievements(window)

		if len(rec.Achievements) == 0 {
			rec.Description, _ = matchDescription(lookahead(lines, i, descriptionLookahead))
		}

		records = append(records, rec)
		if len(records) == MaxExperienceRecords {
			break
		}
	}
	return records
}
