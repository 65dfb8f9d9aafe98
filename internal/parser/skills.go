package parser

import (
	"strings"

	"portfolio-go/internal/types"
)

const (
	// FallbackSkillCategory 兜底扫描产生的分类名
	FallbackSkillCategory = "Technical Skills"
	// MaxFallbackSkills 兜底分类最多保留的技能数
	MaxFallbackSkills = 15
)

// skillVocabulary 一个标准分类及其封闭词表
type skillVocabulary struct {
	Category string
	Terms    []string
}

// skillCategories 标准分类，顺序即输出顺序
var skillCategories = []skillVocabulary{
	{Category: "Programming Languages", Terms: []string{"javascript", "python", "java", "c++", "c#", "php", "ruby", "swift", "kotlin", "typescript"}},
	{Category: "Frontend", Terms: []string{"react", "angular", "vue", "html", "css", "bootstrap", "tailwind", "sass", "jquery"}},
	{Category: "Backend", Terms: []string{"node.js", "express", "django", "flask", "spring", "laravel", "asp.net", "fastapi"}},
	{Category: "Database", Terms: []string{"mysql", "mongodb", "postgresql", "sqlite", "oracle", "redis", "firebase"}},
	{Category: "Tools & Technologies", Terms: []string{"git", "docker", "aws", "azure", "jenkins", "kubernetes", "linux", "rest api", "graphql"}},
	{Category: "Soft Skills", Terms: []string{"communication", "leadership", "teamwork", "problem-solving", "agile", "scrum"}},
}

var (
	skillsHeadingKeywords = []string{"skill", "technical", "technology"}
	skillsExitKeywords    = []string{"experience", "education", "project"}
)

// SkillScope 技能扫描范围
type SkillScope int

const (
	// ScopeDocument 扫描全文所有非标题行（默认）
	ScopeDocument SkillScope = iota
	// ScopeSection 只扫描技能章节内的行
	ScopeSection
)

// ExtractSkills 使用默认的全文范围提取技能
func ExtractSkills(text string) []types.SkillCategory {
	return ExtractSkillsScoped(text, ScopeDocument)
}

// ExtractSkillsScoped 逐行匹配各分类词表，分类内按首次出现顺序去重。
// 技能章节的标题行本身不参与匹配。没有任何分类命中时，对全文做一次兜底扫描，
// 结果归入 FallbackSkillCategory。
func ExtractSkillsScoped(text string, scope SkillScope) []types.SkillCategory {
	found := make([][]string, len(skillCategories))
	section := sectionTracker{enter: skillsHeadingKeywords, exit: skillsExitKeywords}

	for _, line := range splitLines(text) {
		lower := strings.ToLower(line)
		if section.isHeading(line, lower) {
			continue
		}
		if scope == ScopeDocument || section.active {
			for ci, vocab := range skillCategories {
				for _, term := range vocab.Terms {
					if strings.Contains(lower, term) && !containsTerm(found[ci], term) {
						found[ci] = append(found[ci], term)
					}
				}
			}
		}
		// 边界行本身仍属于技能章节
		section.checkBoundary(lower)
	}

	skills := []types.SkillCategory{}
	for ci, terms := range found {
		if len(terms) > 0 {
			skills = append(skills, types.SkillCategory{Category: skillCategories[ci].Category, Skills: terms})
		}
	}
	if len(skills) > 0 {
		return skills
	}

	if terms := scanVocabulary(text, MaxFallbackSkills); len(terms) > 0 {
		skills = append(skills, types.SkillCategory{Category: FallbackSkillCategory, Skills: terms})
	}
	return skills
}

// scanVocabulary 按词表顺序收集全文出现过的技能
func scanVocabulary(text string, limit int) []string {
	lower := strings.ToLower(text)
	var terms []string
	for _, vocab := range skillCategories {
		for _, term := range vocab.Terms {
			if strings.Contains(lower, term) {
				terms = append(terms, term)
				if len(terms) == limit {
					return terms
				}
			}
		}
	}
	return terms
}

func containsTerm(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}
