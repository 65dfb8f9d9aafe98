package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"portfolio-go/internal/parser"
	"portfolio-go/internal/tracing"
	"portfolio-go/internal/types"
)

var tracer = otel.Tracer("processor")

// 默认的文本获取超时
const defaultExtractTimeout = 60 * time.Second

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	PDFExtractor PDFExtractor     // PDF文本获取
	Extractor    ContentExtractor // 启发式内容提取
	Store        ContentStore     // 解析结果持久化
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Debug             bool          // 是否开启调试模式
	Logger            *log.Logger   // 日志记录器
	ExtractTimeout    time.Duration // 文本获取超时
	AtomicPersistence bool          // 存储支持时在单个事务中替换内容
}

// ResumeProcessor 简历内容解析的编排器，负责三层降级策略和持久化
type ResumeProcessor struct {
	PDFExtractor PDFExtractor
	Extractor    ContentExtractor
	Store        ContentStore

	Config Settings
}

// NewResumeProcessorV2 使用明确分离的组件和设置创建处理器
func NewResumeProcessorV2(comp *Components, set *Settings, opts ...SettingOpt) *ResumeProcessor {
	for _, opt := range opts {
		opt(set)
	}
	if set.Logger == nil {
		set.Logger = log.New(os.Stdout, "[Processor] ", log.LstdFlags)
	}
	if set.ExtractTimeout <= 0 {
		set.ExtractTimeout = defaultExtractTimeout
	}

	processor := &ResumeProcessor{
		PDFExtractor: comp.PDFExtractor,
		Extractor:    comp.Extractor,
		Store:        comp.Store,
		Config:       *set,
	}
	if processor.Extractor == nil {
		processor.Extractor = parser.NewHeuristicExtractor(parser.WithHeuristicLogger(set.Logger))
	}
	if processor.Store == nil {
		processor.Config.Logger.Println("警告: ResumeProcessor 的 Store 依赖未初始化，解析结果不会被保存")
		processor.Store = NopContentStore{}
	}
	return processor
}

// CreateProcessor 便捷工厂函数，用于创建组件和设置并构造处理器
func CreateProcessor(compOpts []ComponentOpt, setOpts []SettingOpt) (*ResumeProcessor, error) {
	components := &Components{}
	settings := &Settings{
		Logger:         log.New(os.Stdout, "[Processor] ", log.LstdFlags),
		ExtractTimeout: defaultExtractTimeout,
	}
	for _, opt := range compOpts {
		opt(components)
	}
	for _, opt := range setOpts {
		opt(settings)
	}
	if components.PDFExtractor == nil {
		return nil, fmt.Errorf("必须提供PDF提取器组件")
	}
	return NewResumeProcessorV2(components, settings), nil
}

// ParseResume 解析简历并替换已保存的内容，永远返回结果而不是错误。
//
// 第一层：获取文本并运行完整的启发式提取。
// 第二层：有文本但提取流程失败时，运行基础扫描。
// 第三层：没有得到任何文本时，写入占位数据。
//
// 返回值的 Tier 标明结果来源，Err 记录导致降级的原因。
func (rp *ResumeProcessor) ParseResume(ctx context.Context, data []byte, resumeID uint64) *types.TieredResult {
	ctx, span := tracer.Start(ctx, "ResumeProcessor.ParseResume",
		trace.WithAttributes(
			attribute.Int64("resume.id", int64(resumeID)),
			attribute.Int("resume.size_bytes", len(data)),
		))
	defer span.End()

	start := time.Now()
	var tiered *types.TieredResult

	text, err := rp.acquireText(ctx, data, resumeID)
	if err != nil {
		rp.logWarn("简历 %d 未获取到文本, 使用占位数据: %v", resumeID, err)
		tiered = rp.runSample(ctx, resumeID, err)
	} else {
		rp.logDebug("简历 %d 文本前缀: %s", resumeID, tracing.SafeResumeContent(text))
		tiered = rp.runFull(ctx, text, resumeID)
	}

	span.SetAttributes(
		attribute.Int("resume.tier", int(tiered.Tier)),
		attribute.Int("resume.education_count", len(tiered.Result.Education)),
		attribute.Int("resume.experience_count", len(tiered.Result.Experience)),
		attribute.Int("resume.skills_count", len(tiered.Result.Skills)),
		attribute.Int("resume.persist_failures", tiered.PersistFailures),
	)
	if info := tiered.Result.PersonalInfo; !info.IsEmpty() {
		span.SetAttributes(
			attribute.String("resume.email", tracing.SafeAttributeValue("email", info.Email, tracing.MaxResumeTextLength)),
			attribute.String("resume.phone", tracing.SafeAttributeValue("phone", info.Phone, tracing.MaxResumeTextLength)),
		)
	}
	if tiered.Err != nil {
		tracing.RecordError(span, tiered.Err, tracing.ErrorTypeExtraction)
	}

	rp.logInfo("简历 %d 解析完成: 层级=%s, 教育=%d, 工作经历=%d, 技能分类=%d, 持久化失败=%d (用时 %s)",
		resumeID, tiered.Tier, len(tiered.Result.Education), len(tiered.Result.Experience),
		len(tiered.Result.Skills), tiered.PersistFailures, time.Since(start))
	return tiered
}

// acquireText 获取文本，空白文本视为失败
func (rp *ResumeProcessor) acquireText(ctx context.Context, data []byte, resumeID uint64) (text string, err error) {
	if rp.PDFExtractor == nil {
		return "", NewNoTextError(resumeID, fmt.Errorf("PDF提取器未初始化"))
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", NewNoTextError(resumeID, panicError(r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, rp.Config.ExtractTimeout)
	defer cancel()

	uri := fmt.Sprintf("resume-%d.pdf", resumeID)
	text, meta, err := rp.PDFExtractor.ExtractTextFromBytes(ctx, data, uri, map[string]interface{}{"resume_id": resumeID})
	if err != nil {
		return "", NewNoTextError(resumeID, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", NewNoTextError(resumeID, nil)
	}
	rp.logDebug("简历 %d 提取到 %d 个字符, 元数据: %v", resumeID, len(text), meta)
	return text, nil
}

// runFull 第一层，失败时转入第二层
func (rp *ResumeProcessor) runFull(ctx context.Context, text string, resumeID uint64) *types.TieredResult {
	result, err := rp.safeExtract(ctx, func(ctx context.Context) (*types.ParseResult, error) {
		return rp.Extractor.Extract(ctx, text)
	})
	if err != nil {
		pipelineErr := NewPipelineError(resumeID, "完整提取失败", err)
		rp.logError(pipelineErr, "简历 %d 完整提取失败, 尝试基础扫描", resumeID)
		return rp.runBasic(ctx, text, resumeID, pipelineErr)
	}
	return &types.TieredResult{
		Tier:            types.TierFull,
		Result:          result,
		PersistFailures: rp.persist(ctx, resumeID, result),
	}
}

// runBasic 第二层，基础扫描也失败时返回空结果
func (rp *ResumeProcessor) runBasic(ctx context.Context, text string, resumeID uint64, cause error) *types.TieredResult {
	result, err := rp.safeExtract(ctx, func(ctx context.Context) (*types.ParseResult, error) {
		return rp.Extractor.ExtractBasic(ctx, text)
	})
	if err != nil {
		basicErr := NewBasicFallbackError(resumeID, err)
		rp.logError(basicErr, "简历 %d 基础扫描失败, 返回空结果", resumeID)
		return &types.TieredResult{
			Tier:   types.TierBasic,
			Result: types.NewParseResult(),
			Err:    errors.Join(cause, basicErr),
		}
	}
	return &types.TieredResult{
		Tier:            types.TierBasic,
		Result:          result,
		Err:             cause,
		PersistFailures: rp.persist(ctx, resumeID, result),
	}
}

// runSample 第三层，写入并返回占位数据
func (rp *ResumeProcessor) runSample(ctx context.Context, resumeID uint64, cause error) *types.TieredResult {
	result := SampleResult()
	return &types.TieredResult{
		Tier:            types.TierSample,
		Result:          result,
		Err:             cause,
		PersistFailures: rp.persist(ctx, resumeID, result),
	}
}

// safeExtract 运行提取函数，把panic转换为错误，并补齐nil切片
func (rp *ResumeProcessor) safeExtract(ctx context.Context, fn func(context.Context) (*types.ParseResult, error)) (result *types.ParseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, panicError(r)
		}
	}()
	result, err = fn(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("提取器返回了空结果")
	}
	normalize(result)
	return result, nil
}

func normalize(r *types.ParseResult) {
	if r.Education == nil {
		r.Education = []types.EducationRecord{}
	}
	if r.Experience == nil {
		r.Experience = []types.ExperienceRecord{}
	}
	if r.Skills == nil {
		r.Skills = []types.SkillCategory{}
	}
	for i := range r.Experience {
		if r.Experience[i].Achievements == nil {
			r.Experience[i].Achievements = []string{}
		}
	}
}
