package processor

import (
	"context"

	"portfolio-go/internal/types"
)

//
// 文本获取
//

// PDFExtractor 把PDF字节转换为纯文本
type PDFExtractor interface {
	// ExtractTextFromBytes 从字节数组提取文本和元数据
	// 参数：
	// - uri: 资源标识符，仅用于日志或元数据
	// - extraMeta: 附加的元数据，会合并到返回值中
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error)
}

//
// 内容提取
//

// ContentExtractor 从纯文本中提取结构化简历内容
type ContentExtractor interface {
	// Extract 完整的启发式提取
	Extract(ctx context.Context, text string) (*types.ParseResult, error)

	// ExtractBasic 简化的单遍扫描，只识别教育经历和常见技能
	ExtractBasic(ctx context.Context, text string) (*types.ParseResult, error)
}

//
// 存储
//

// ContentStore 解析结果的持久化协作者，每个调用都可能阻塞或失败
type ContentStore interface {
	DeleteEducationByResumeID(ctx context.Context, resumeID uint64) error
	InsertEducation(ctx context.Context, resumeID uint64, record types.EducationRecord) error
	DeleteExperienceByResumeID(ctx context.Context, resumeID uint64) error
	InsertExperience(ctx context.Context, resumeID uint64, record types.ExperienceRecord) error
	DeleteSkillsByResumeID(ctx context.Context, resumeID uint64) error
	InsertSkillCategory(ctx context.Context, resumeID uint64, category types.SkillCategory) error
}

// AtomicContentStore 支持在单个事务中替换某份简历的全部内容
type AtomicContentStore interface {
	ContentStore
	ReplaceResumeContent(ctx context.Context, resumeID uint64, result *types.ParseResult) error
}

// NopContentStore 丢弃所有写入，用于命令行等不需要持久化的场景
type NopContentStore struct{}

var _ ContentStore = NopContentStore{}

func (NopContentStore) DeleteEducationByResumeID(context.Context, uint64) error { return nil }
func (NopContentStore) InsertEducation(context.Context, uint64, types.EducationRecord) error {
	return nil
}
func (NopContentStore) DeleteExperienceByResumeID(context.Context, uint64) error { return nil }
func (NopContentStore) InsertExperience(context.Context, uint64, types.ExperienceRecord) error {
	return nil
}
func (NopContentStore) DeleteSkillsByResumeID(context.Context, uint64) error { return nil }
func (NopContentStore) InsertSkillCategory(context.Context, uint64, types.SkillCategory) error {
	return nil
}
