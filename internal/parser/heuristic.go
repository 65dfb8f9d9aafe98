package parser

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"portfolio-go/internal/types"
)

// HeuristicExtractor 组合各字段提取器，把纯文本转换为结构化的简历内容
type HeuristicExtractor struct {
	skillScope SkillScope
	logger     *log.Logger
}

// HeuristicOption 提取器配置选项
type HeuristicOption func(*HeuristicExtractor)

// WithSkillScope 设置技能扫描范围
func WithSkillScope(scope SkillScope) HeuristicOption {
	return func(h *HeuristicExtractor) {
		h.skillScope = scope
	}
}

// WithHeuristicLogger 设置日志记录器
func WithHeuristicLogger(logger *log.Logger) HeuristicOption {
	return func(h *HeuristicExtractor) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHeuristicExtractor 创建启发式提取器
func NewHeuristicExtractor(opts ...HeuristicOption) *HeuristicExtractor {
	h := &HeuristicExtractor{
		skillScope: ScopeDocument,
		logger:     log.New(os.Stderr, "[简历提取] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Extract 依次运行教育、工作经历、技能、个人信息提取。
// 各阶段之间检查 ctx，被取消时返回错误。
func (h *HeuristicExtractor) Extract(ctx context.Context, text string) (*types.ParseResult, error) {
	start := time.Now()
	result := types.NewParseResult()

	stages := []struct {
		name string
		run  func()
	}{
		{"education", func() { result.Education = ExtractEducation(text) }},
		{"experience", func() { result.Experience = ExtractExperience(text) }},
		{"skills", func() { result.Skills = ExtractSkillsScoped(text, h.skillScope) }},
		{"personal_info", func() { result.PersonalInfo = ExtractPersonalInfo(text) }},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("提取阶段 %s 前上下文已结束: %w", stage.name, err)
		}
		stage.run()
	}

	h.logger.Printf("启发式提取完成: 教育 %d 条, 工作经历 %d 条, 技能分类 %d 个 (用时 %s)",
		len(result.Education), len(result.Experience), len(result.Skills), time.Since(start))
	return result, nil
}

// ExtractBasic 运行基础扫描器
func (h *HeuristicExtractor) ExtractBasic(ctx context.Context, text string) (*types.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("基础提取前上下文已结束: %w", err)
	}
	result := ParseBasic(text)
	h.logger.Printf("基础提取完成: 教育 %d 条, 技能分类 %d 个", len(result.Education), len(result.Skills))
	return result, nil
}
