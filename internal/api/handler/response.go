package handler

import (
	"time"

	"portfolio-go/internal/storage/models"
	"portfolio-go/internal/types"
)

// downloadURL 公开下载地址，文件保存在对象存储中，统一经由接口下载
const downloadURL = "/api/resume"

// ResumeSummary 简历元数据和内容条数
type ResumeSummary struct {
	ID              uint64    `json:"id"`
	Filename        string    `json:"filename"`
	OriginalName    string    `json:"originalName"`
	URL             string    `json:"url"`
	Size            int64     `json:"size"`
	UploadedAt      time.Time `json:"uploadedAt"`
	LastUpdated     time.Time `json:"lastUpdated"`
	EducationCount  int64     `json:"educationCount"`
	ExperienceCount int64     `json:"experienceCount"`
	SkillsCount     int64     `json:"skillsCount"`
	Tier            string    `json:"tier,omitempty"`
}

// UploadResponse 上传接口的响应。无论结果来自哪一层都返回成功，Tier 标明来源。
type UploadResponse struct {
	Message       string             `json:"message"`
	Resume        ResumeSummary      `json:"resume"`
	ParsedContent *types.ParseResult `json:"parsedContent"`
}

// EducationItem 教育经历行
type EducationItem struct {
	ID          uint64    `json:"id"`
	ResumeID    uint64    `json:"resume_id"`
	Degree      string    `json:"degree"`
	Institution string    `json:"institution"`
	Location    string    `json:"location"`
	Period      string    `json:"period"`
	Description string    `json:"description"`
	GPA         string    `json:"gpa"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExperienceItem 工作经历行，成果已拆分为列表
type ExperienceItem struct {
	ID           uint64    `json:"id"`
	ResumeID     uint64    `json:"resume_id"`
	Position     string    `json:"position"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Period       string    `json:"period"`
	Description  string    `json:"description"`
	Achievements []string  `json:"achievements"`
	CreatedAt    time.Time `json:"created_at"`
}

// SkillItem 技能分类行，技能已拆分为列表
type SkillItem struct {
	ID        uint64    `json:"id"`
	ResumeID  uint64    `json:"resume_id"`
	Category  string    `json:"category"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}

// ResumeInfo 内容接口附带的文件信息
type ResumeInfo struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
	LastUpdated time.Time `json:"lastUpdated"`
	Tier        string    `json:"tier,omitempty"`
}

// ContentResponse 公开展示用的简历内容
type ContentResponse struct {
	Education  []EducationItem  `json:"education"`
	Experience []ExperienceItem `json:"experience"`
	Skills     []SkillItem      `json:"skills"`
	ResumeInfo ResumeInfo       `json:"resumeInfo"`
}

// CheckResponse 简历可用性检查
type CheckResponse struct {
	Available       bool       `json:"available"`
	Message         string     `json:"message"`
	Filename        string     `json:"filename,omitempty"`
	Size            int64      `json:"size,omitempty"`
	UploadedAt      *time.Time `json:"uploadedAt,omitempty"`
	LastUpdated     *time.Time `json:"lastUpdated,omitempty"`
	LastModified    *time.Time `json:"lastModified,omitempty"`
	FileSize        int64      `json:"fileSize,omitempty"`
	EducationCount  int64      `json:"educationCount"`
	ExperienceCount int64      `json:"experienceCount"`
	SkillsCount     int64      `json:"skillsCount"`
}

func toEducationItems(rows []models.ResumeEducation) []EducationItem {
	items := make([]EducationItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, EducationItem{
			ID:          r.ID,
			ResumeID:    r.ResumeID,
			Degree:      r.Degree,
			Institution: r.Institution,
			Location:    r.Location,
			Period:      r.Period,
			Description: r.Description,
			GPA:         r.GPA,
			CreatedAt:   r.CreatedAt,
		})
	}
	return items
}

func toExperienceItems(rows []models.ResumeExperience) []ExperienceItem {
	items := make([]ExperienceItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ExperienceItem{
			ID:           r.ID,
			ResumeID:     r.ResumeID,
			Position:     r.Position,
			Company:      r.Company,
			Location:     r.Location,
			Period:       r.Period,
			Description:  r.Description,
			Achievements: models.SplitAchievements(r.Achievements),
			CreatedAt:    r.CreatedAt,
		})
	}
	return items
}

func toSkillItems(rows []models.ResumeSkill) []SkillItem {
	items := make([]SkillItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, SkillItem{
			ID:        r.ID,
			ResumeID:  r.ResumeID,
			Category:  r.Category,
			Skills:    models.SplitSkills(r.Skills),
			CreatedAt: r.CreatedAt,
		})
	}
	return items
}
