package types

// EducationRecord 教育经历条目
type EducationRecord struct {
	Degree      string `json:"degree"`                // 原始行文本
	Institution string `json:"institution"`           // 学校，可能为空
	Location    string `json:"location,omitempty"`    // 地点
	Period      string `json:"period"`                // 自由格式的时间段，如 "2020-2024"
	Description string `json:"description,omitempty"` // 描述
	GPA         string `json:"gpa,omitempty"`         // 原始匹配值，如 "3.8"
}

// ExperienceRecord 工作经历条目
type ExperienceRecord struct {
	Position     string   `json:"position"`
	Company      string   `json:"company"`
	Location     string   `json:"location,omitempty"`
	Period       string   `json:"period"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// SkillCategory 技能分类
type SkillCategory struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// PersonalInfo 个人信息，各字段均可能缺失
type PersonalInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// IsEmpty 判断是否没有任何字段
func (p PersonalInfo) IsEmpty() bool {
	return p.Email == "" && p.Phone == "" && p.Location == ""
}

// ParseResult 一次解析的聚合结果
type ParseResult struct {
	Education    []EducationRecord  `json:"education"`
	Experience   []ExperienceRecord `json:"experience"`
	Skills       []SkillCategory    `json:"skills"`
	PersonalInfo PersonalInfo       `json:"personalInfo"`
}

// NewParseResult 创建各列表均非nil的空结果，序列化时输出 [] 而不是 null
func NewParseResult() *ParseResult {
	return &ParseResult{
		Education:  []EducationRecord{},
		Experience: []ExperienceRecord{},
		Skills:     []SkillCategory{},
	}
}

// SkillsCount 返回技能分类数量
func (r *ParseResult) SkillsCount() int {
	if r == nil {
		return 0
	}
	return len(r.Skills)
}

// Tier 解析结果来源的层级
type Tier int

const (
	// TierFull 完整启发式解析
	TierFull Tier = 1
	// TierBasic 基础逐行扫描
	TierBasic Tier = 2
	// TierSample 合成的占位数据，不是真实简历内容
	TierSample Tier = 3
)

// String 返回层级名称
func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierBasic:
		return "basic"
	case TierSample:
		return "sample"
	default:
		return "unknown"
	}
}

// TieredResult 带层级标签的解析结果
type TieredResult struct {
	Tier   Tier         `json:"tier"`
	Result *ParseResult `json:"result"`
	// Err 记录导致降级的原因，Tier为TierFull时为nil
	Err error `json:"-"`
	// PersistFailures 持久化阶段失败的调用次数
	PersistFailures int `json:"persistFailures"`
}

// IsSynthetic 结果是否为占位数据
func (r *TieredResult) IsSynthetic() bool {
	return r != nil && r.Tier == TierSample
}
