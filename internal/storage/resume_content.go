package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portfolio-go/internal/storage/models"
	"portfolio-go/internal/tracing"
	"portfolio-go/internal/types"
)

// ContentCounts 当前简历各类内容的条数
type ContentCounts struct {
	Education  int64 `json:"educationCount"`
	Experience int64 `json:"experienceCount"`
	Skills     int64 `json:"skillsCount"`
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

//
// 解析结果持久化
//

// DeleteEducationByResumeID 删除某份简历的全部教育经历
func (m *MySQL) DeleteEducationByResumeID(ctx context.Context, resumeID uint64) error {
	return m.db.WithContext(ctx).Where("resume_id = ?", resumeID).Delete(&models.ResumeEducation{}).Error
}

// InsertEducation 新增一条教育经历
func (m *MySQL) InsertEducation(ctx context.Context, resumeID uint64, record types.EducationRecord) error {
	return m.db.WithContext(ctx).Create(models.NewResumeEducation(resumeID, record)).Error
}

// DeleteExperienceByResumeID 删除某份简历的全部工作经历
func (m *MySQL) DeleteExperienceByResumeID(ctx context.Context, resumeID uint64) error {
	return m.db.WithContext(ctx).Where("resume_id = ?", resumeID).Delete(&models.ResumeExperience{}).Error
}

// InsertExperience 新增一条工作经历
func (m *MySQL) InsertExperience(ctx context.Context, resumeID uint64, record types.ExperienceRecord) error {
	return m.db.WithContext(ctx).Create(models.NewResumeExperience(resumeID, record)).Error
}

// DeleteSkillsByResumeID 删除某份简历的全部技能分类
func (m *MySQL) DeleteSkillsByResumeID(ctx context.Context, resumeID uint64) error {
	return m.db.WithContext(ctx).Where("resume_id = ?", resumeID).Delete(&models.ResumeSkill{}).Error
}

// InsertSkillCategory 新增一个技能分类
func (m *MySQL) InsertSkillCategory(ctx context.Context, resumeID uint64, category types.SkillCategory) error {
	return m.db.WithContext(ctx).Create(models.NewResumeSkill(resumeID, category)).Error
}

// ReplaceResumeContent 在一个事务中删除旧内容并写入新的解析结果
func (m *MySQL) ReplaceResumeContent(ctx context.Context, resumeID uint64, result *types.ParseResult) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.ReplaceResumeContent",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("resume.id", int64(resumeID)),
			attribute.Int("resume.education_count", len(result.Education)),
			attribute.Int("resume.experience_count", len(result.Experience)),
			attribute.Int("resume.skills_count", len(result.Skills)),
		))
	defer span.End()

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteContent(tx, resumeID); err != nil {
			return err
		}
		if len(result.Education) > 0 {
			rows := make([]*models.ResumeEducation, 0, len(result.Education))
			for _, edu := range result.Education {
				rows = append(rows, models.NewResumeEducation(resumeID, edu))
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("写入教育经历失败: %w", err)
			}
		}
		if len(result.Experience) > 0 {
			rows := make([]*models.ResumeExperience, 0, len(result.Experience))
			for _, exp := range result.Experience {
				rows = append(rows, models.NewResumeExperience(resumeID, exp))
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("写入工作经历失败: %w", err)
			}
		}
		if len(result.Skills) > 0 {
			rows := make([]*models.ResumeSkill, 0, len(result.Skills))
			for _, skill := range result.Skills {
				rows = append(rows, models.NewResumeSkill(resumeID, skill))
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("写入技能失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
	}
	return err
}

func deleteContent(tx *gorm.DB, resumeID uint64) error {
	if err := tx.Where("resume_id = ?", resumeID).Delete(&models.ResumeEducation{}).Error; err != nil {
		return fmt.Errorf("删除教育经历失败: %w", err)
	}
	if err := tx.Where("resume_id = ?", resumeID).Delete(&models.ResumeExperience{}).Error; err != nil {
		return fmt.Errorf("删除工作经历失败: %w", err)
	}
	if err := tx.Where("resume_id = ?", resumeID).Delete(&models.ResumeSkill{}).Error; err != nil {
		return fmt.Errorf("删除技能失败: %w", err)
	}
	return nil
}

//
// 简历元数据
//

// CurrentResume 返回最新上传的简历，没有时返回 ErrNotFound
func (m *MySQL) CurrentResume(ctx context.Context) (*models.Resume, error) {
	var resume models.Resume
	err := m.db.WithContext(ctx).Order("uploaded_at DESC").Order("id DESC").First(&resume).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &resume, nil
}

// ReplaceResume 删除已有的简历及其内容并写入新记录，返回被删除的旧记录供调用方清理文件
func (m *MySQL) ReplaceResume(ctx context.Context, resume *models.Resume) ([]models.Resume, error) {
	var previous []models.Resume
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Find(&previous).Error; err != nil {
			return fmt.Errorf("查询旧简历失败: %w", err)
		}
		for _, old := range previous {
			if err := deleteContent(tx, old.ID); err != nil {
				return err
			}
		}
		if err := tx.Where("1 = 1").Delete(&models.Resume{}).Error; err != nil {
			return fmt.Errorf("删除旧简历失败: %w", err)
		}
		return tx.Create(resume).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// UpdateParseOutcome 记录解析层级和个人信息
func (m *MySQL) UpdateParseOutcome(ctx context.Context, resumeID uint64, tier types.Tier, info types.PersonalInfo) error {
	updates, err := parseOutcomeUpdates(tier, info)
	if err != nil {
		return err
	}
	return m.db.WithContext(ctx).Model(&models.Resume{}).Where("id = ?", resumeID).Updates(updates).Error
}

// parseOutcomeUpdates 没有提取到任何个人信息时不写 personal_info 列
func parseOutcomeUpdates(tier types.Tier, info types.PersonalInfo) (map[string]interface{}, error) {
	updates := map[string]interface{}{"parse_tier": int(tier)}
	if info.IsEmpty() {
		return updates, nil
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("序列化个人信息失败: %w", err)
	}
	updates["personal_info"] = datatypes.JSON(infoJSON)
	return updates, nil
}

// DeleteResume 删除简历记录及其全部内容
func (m *MySQL) DeleteResume(ctx context.Context, resumeID uint64) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteContent(tx, resumeID); err != nil {
			return err
		}
		return tx.Delete(&models.Resume{}, resumeID).Error
	})
}

// CountContent 统计某份简历的内容条数
func (m *MySQL) CountContent(ctx context.Context, resumeID uint64) (ContentCounts, error) {
	var counts ContentCounts
	db := m.db.WithContext(ctx)
	if err := db.Model(&models.ResumeEducation{}).Where("resume_id = ?", resumeID).Count(&counts.Education).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&models.ResumeExperience{}).Where("resume_id = ?", resumeID).Count(&counts.Experience).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&models.ResumeSkill{}).Where("resume_id = ?", resumeID).Count(&counts.Skills).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

//
// 内容查询与手工维护
//

// ListEducation 按时间段倒序返回教育经历
func (m *MySQL) ListEducation(ctx context.Context, resumeID uint64) ([]models.ResumeEducation, error) {
	var rows []models.ResumeEducation
	err := m.db.WithContext(ctx).Where("resume_id = ?", resumeID).Order("period DESC").Find(&rows).Error
	return rows, err
}

// ListExperience 按时间段倒序返回工作经历
func (m *MySQL) ListExperience(ctx context.Context, resumeID uint64) ([]models.ResumeExperience, error) {
	var rows []models.ResumeExperience
	err := m.db.WithContext(ctx).Where("resume_id = ?", resumeID).Order("period DESC").Find(&rows).Error
	return rows, err
}

// ListSkills 按写入顺序返回技能分类
func (m *MySQL) ListSkills(ctx context.Context, resumeID uint64) ([]models.ResumeSkill, error) {
	var rows []models.ResumeSkill
	err := m.db.WithContext(ctx).Where("resume_id = ?", resumeID).Order("id ASC").Find(&rows).Error
	return rows, err
}

// SaveEducation ID为0时新增，否则更新同一简历下的记录
func (m *MySQL) SaveEducation(ctx context.Context, row *models.ResumeEducation) error {
	db := m.db.WithContext(ctx)
	if row.ID == 0 {
		return db.Create(row).Error
	}
	res := db.Model(&models.ResumeEducation{}).
		Where("id = ? AND resume_id = ?", row.ID, row.ResumeID).
		Select("degree", "institution", "location", "period", "description", "gpa").
		Updates(row)
	return res.Error
}

// DeleteEducation 删除同一简历下的一条教育经历
func (m *MySQL) DeleteEducation(ctx context.Context, resumeID, id uint64) error {
	return m.db.WithContext(ctx).Where("id = ? AND resume_id = ?", id, resumeID).Delete(&models.ResumeEducation{}).Error
}

// SaveExperience ID为0时新增，否则更新同一简历下的记录
func (m *MySQL) SaveExperience(ctx context.Context, row *models.ResumeExperience) error {
	db := m.db.WithContext(ctx)
	if row.ID == 0 {
		return db.Create(row).Error
	}
	res := db.Model(&models.ResumeExperience{}).
		Where("id = ? AND resume_id = ?", row.ID, row.ResumeID).
		Select("position", "company", "location", "period", "description", "achievements").
		Updates(row)
	return res.Error
}

// DeleteExperience 删除同一简历下的一条工作经历
func (m *MySQL) DeleteExperience(ctx context.Context, resumeID, id uint64) error {
	return m.db.WithContext(ctx).Where("id = ? AND resume_id = ?", id, resumeID).Delete(&models.ResumeExperience{}).Error
}

// EnqueueOutbox 写入一条待投递的消息
func (m *MySQL) EnqueueOutbox(ctx context.Context, msg *models.OutboxMessage) error {
	if msg.Status == "" {
		msg.Status = models.OutboxStatusPending
	}
	return m.db.WithContext(ctx).Create(msg).Error
}
