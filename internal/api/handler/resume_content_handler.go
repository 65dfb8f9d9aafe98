package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"portfolio-go/internal/constants"
	"portfolio-go/internal/export"
	"portfolio-go/internal/logger"
	"portfolio-go/internal/storage"
	"portfolio-go/internal/storage/models"
	"portfolio-go/internal/types"
)

const (
	jsonContentType = "application/json; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// HandleContent 返回公开展示用的简历内容，成功的响应会被缓存
func (h *ResumeHandler) HandleContent(ctx context.Context, c *app.RequestContext) {
	if body, ok := h.cache.Get(ctx, constants.CacheKeyResumeContent); ok {
		c.Header("X-Cache", "HIT")
		c.Data(consts.StatusOK, jsonContentType, body)
		return
	}

	resume, err := h.repo.CurrentResume(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(ctx, c, consts.StatusNotFound, "No resume content available", nil)
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to fetch resume content", err)
		return
	}

	education, err := h.repo.ListEducation(ctx, resume.ID)
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to fetch resume content", err)
		return
	}
	experience, err := h.repo.ListExperience(ctx, resume.ID)
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to fetch resume content", err)
		return
	}
	skills, err := h.repo.ListSkills(ctx, resume.ID)
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to fetch resume content", err)
		return
	}

	body, err := json.Marshal(ContentResponse{
		Education:  toEducationItems(education),
		Experience: toExperienceItems(experience),
		Skills:     toSkillItems(skills),
		ResumeInfo: ResumeInfo{
			Filename:    resume.OriginalName,
			Size:        resume.FileSize,
			UploadedAt:  resume.UploadedAt,
			LastUpdated: resume.UploadedAt,
			Tier:        tierName(resume.ParseTier),
		},
	})
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to fetch resume content", err)
		return
	}

	h.cache.Set(ctx, constants.CacheKeyResumeContent, body)
	c.Header("X-Cache", "MISS")
	c.Data(consts.StatusOK, jsonContentType, body)
}

// HandleCheck 检查简历是否可下载。该接口总是返回200，失败原因写在 message 中。
func (h *ResumeHandler) HandleCheck(ctx context.Context, c *app.RequestContext) {
	if body, ok := h.cache.Get(ctx, constants.CacheKeyResumeCheck); ok {
		c.Header("X-Cache", "HIT")
		c.Data(consts.StatusOK, jsonContentType, body)
		return
	}

	resp := h.buildCheck(ctx)
	body, err := json.Marshal(resp)
	if err != nil {
		// 结构体序列化不会失败
		logger.Ctx(ctx).Error().Err(err).Msg("序列化简历检查结果失败")
		c.JSON(consts.StatusOK, CheckResponse{Message: "Error checking resume availability"})
		return
	}
	h.cache.Set(ctx, constants.CacheKeyResumeCheck, body)
	c.Header("X-Cache", "MISS")
	c.Data(consts.StatusOK, jsonContentType, body)
}

func (h *ResumeHandler) buildCheck(ctx context.Context) CheckResponse {
	resume, err := h.repo.CurrentResume(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return CheckResponse{Message: "No resume available"}
		}
		logger.Ctx(ctx).Error().Err(err).Msg("检查简历可用性失败")
		return CheckResponse{Message: "Error checking resume availability"}
	}

	info, err := h.objects.StatResumeFile(ctx, resume.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return CheckResponse{Message: "Resume file not found on server"}
		}
		logger.Ctx(ctx).Error().Err(err).Str("object_key", resume.ObjectKey).Msg("获取简历文件信息失败")
		return CheckResponse{Message: "Error checking resume availability"}
	}

	counts, err := h.repo.CountContent(ctx, resume.ID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("统计简历内容失败")
	}

	uploadedAt := resume.UploadedAt
	lastModified := info.LastModified
	return CheckResponse{
		Available:       true,
		Message:         "Resume is available for download",
		Filename:        resume.OriginalName,
		Size:            resume.FileSize,
		UploadedAt:      &uploadedAt,
		LastUpdated:     &uploadedAt,
		LastModified:    &lastModified,
		FileSize:        info.Size,
		EducationCount:  counts.Education,
		ExperienceCount: counts.Experience,
		SkillsCount:     counts.Skills,
	}
}

// HandleExport 把当前保存的简历内容导出为XLSX
func (h *ResumeHandler) HandleExport(ctx context.Context, c *app.RequestContext) {
	resume, err := h.repo.CurrentResume(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(ctx, c, consts.StatusNotFound, "No resume found", nil)
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to export resume", err)
		return
	}

	result, err := h.loadStoredResult(ctx, resume)
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to export resume", err)
		return
	}
	data, err := export.XLSXBytes(result)
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to export resume", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="resume-content.xlsx"`)
	c.Data(consts.StatusOK, xlsxContentType, data)
}

// loadStoredResult 从数据库重建解析结果
func (h *ResumeHandler) loadStoredResult(ctx context.Context, resume *models.Resume) (*types.ParseResult, error) {
	education, err := h.repo.ListEducation(ctx, resume.ID)
	if err != nil {
		return nil, err
	}
	experience, err := h.repo.ListExperience(ctx, resume.ID)
	if err != nil {
		return nil, err
	}
	skills, err := h.repo.ListSkills(ctx, resume.ID)
	if err != nil {
		return nil, err
	}

	result := types.NewParseResult()
	for i := range education {
		result.Education = append(result.Education, education[i].ToRecord())
	}
	for i := range experience {
		result.Experience = append(result.Experience, experience[i].ToRecord())
	}
	for i := range skills {
		result.Skills = append(result.Skills, skills[i].ToCategory())
	}
	if len(resume.PersonalInfo) > 0 {
		if err := json.Unmarshal(resume.PersonalInfo, &result.PersonalInfo); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Uint64("resume_id", resume.ID).Msg("个人信息格式错误, 已忽略")
		}
	}
	return result, nil
}
