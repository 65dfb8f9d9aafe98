package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"portfolio-go/internal/types"
)

const (
	// AchievementSeparator 工作成果在数据库中的分隔符
	AchievementSeparator = "| "
	// SkillSeparator 技能列表在数据库中的分隔符
	SkillSeparator = ", "
)

// Resume 当前简历文件的元数据，表中只保留最新一份
type Resume struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	Filename     string         `gorm:"type:varchar(255);not null"`
	OriginalName string         `gorm:"type:varchar(255);not null"`
	ObjectKey    string         `gorm:"type:varchar(1024);not null"`
	FileSize     int64          `gorm:"not null"`
	FileMD5      string         `gorm:"type:char(32);index:idx_resumes_file_md5"`
	ParseTier    int            `gorm:"default:0"`
	PersonalInfo datatypes.JSON `gorm:"type:json"`
	UploadedAt   time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt    time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Resume) TableName() string {
	return "resumes"
}

// ResumeEducation 教育经历
type ResumeEducation struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	ResumeID    uint64    `gorm:"not null;index:idx_resume_education_resume_id"`
	Degree      string    `gorm:"type:varchar(512);not null"`
	Institution string    `gorm:"type:varchar(512)"`
	Location    string    `gorm:"type:varchar(255)"`
	Period      string    `gorm:"type:varchar(100)"`
	Description string    `gorm:"type:text"`
	GPA         string    `gorm:"column:gpa;type:varchar(50)"`
	CreatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (ResumeEducation) TableName() string {
	return "resume_education"
}

// ResumeExperience 工作经历，成果以 "| " 拼接保存
type ResumeExperience struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	ResumeID     uint64    `gorm:"not null;index:idx_resume_experience_resume_id"`
	Position     string    `gorm:"type:varchar(512);not null"`
	Company      string    `gorm:"type:varchar(512)"`
	Location     string    `gorm:"type:varchar(255)"`
	Period       string    `gorm:"type:varchar(100)"`
	Description  string    `gorm:"type:text"`
	Achievements string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (ResumeExperience) TableName() string {
	return "resume_experience"
}

// ResumeSkill 一个技能分类，技能以 ", " 拼接保存
type ResumeSkill struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ResumeID  uint64    `gorm:"not null;index:idx_resume_skills_resume_id"`
	Category  string    `gorm:"type:varchar(255);not null"`
	Skills    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (ResumeSkill) TableName() string {
	return "resume_skills"
}

// JoinAchievements 编码成果列表
func JoinAchievements(achievements []string) string {
	return strings.Join(achievements, AchievementSeparator)
}

// SplitAchievements 按 "|" 拆分并去掉空白项
func SplitAchievements(s string) []string {
	return splitTrimmed(s, "|")
}

// JoinSkills 编码技能列表
func JoinSkills(skills []string) string {
	return strings.Join(skills, SkillSeparator)
}

// SplitSkills 按 "," 拆分并去掉空白项
func SplitSkills(s string) []string {
	return splitTrimmed(s, ",")
}

func splitTrimmed(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewResumeEducation 从领域模型创建数据库模型
func NewResumeEducation(resumeID uint64, edu types.EducationRecord) *ResumeEducation {
	return &ResumeEducation{
		ResumeID:    resumeID,
		Degree:      edu.Degree,
		Institution: edu.Institution,
		Location:    edu.Location,
		Period:      edu.Period,
		Description: edu.Description,
		GPA:         edu.GPA,
	}
}

// ToRecord 将数据库模型转换为领域模型
func (e *ResumeEducation) ToRecord() types.EducationRecord {
	return types.EducationRecord{
		Degree:      e.Degree,
		Institution: e.Institution,
		Location:    e.Location,
		Period:      e.Period,
		Description: e.Description,
		GPA:         e.GPA,
	}
}

// NewResumeExperience 从领域模型创建数据库模型
func NewResumeExperience(resumeID uint64, exp types.ExperienceRecord) *ResumeExperience {
	return &ResumeExperience{
		ResumeID:     resumeID,
		Position:     exp.Position,
		Company:      exp.Company,
		Location:     exp.Location,
		Period:       exp.Period,
		Description:  exp.Description,
		Achievements: JoinAchievements(exp.Achievements),
	}
}

// ToRecord 将数据库模型转换为领域模型
func (e *ResumeExperience) ToRecord() types.ExperienceRecord {
	return types.ExperienceRecord{
		Position:     e.Position,
		Company:      e.Company,
		Location:     e.Location,
		Period:       e.Period,
		Description:  e.Description,
		Achievements: SplitAchievements(e.Achievements),
	}
}

// NewResumeSkill 从领域模型创建数据库模型
func NewResumeSkill(resumeID uint64, skill types.SkillCategory) *ResumeSkill {
	return &ResumeSkill{
		ResumeID: resumeID,
		Category: skill.Category,
		Skills:   JoinSkills(skill.Skills),
	}
}

// ToCategory 将数据库模型转换为领域模型
func (s *ResumeSkill) ToCategory() types.SkillCategory {
	return types.SkillCategory{
		Category: s.Category,
		Skills:   SplitSkills(s.Skills),
	}
}
