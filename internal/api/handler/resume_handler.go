package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"

	"portfolio-go/internal/cache"
	"portfolio-go/internal/config"
	"portfolio-go/internal/constants"
	"portfolio-go/internal/logger"
	"portfolio-go/internal/outbox"
	"portfolio-go/internal/storage"
	"portfolio-go/internal/storage/models"
	"portfolio-go/internal/tracing"
	"portfolio-go/internal/types"
)

// ResumeRepository 简历元数据与内容的存取，*storage.MySQL 实现了该接口
type ResumeRepository interface {
	CurrentResume(ctx context.Context) (*models.Resume, error)
	ReplaceResume(ctx context.Context, resume *models.Resume) ([]models.Resume, error)
	UpdateParseOutcome(ctx context.Context, resumeID uint64, tier types.Tier, info types.PersonalInfo) error
	DeleteResume(ctx context.Context, resumeID uint64) error
	CountContent(ctx context.Context, resumeID uint64) (storage.ContentCounts, error)

	ListEducation(ctx context.Context, resumeID uint64) ([]models.ResumeEducation, error)
	ListExperience(ctx context.Context, resumeID uint64) ([]models.ResumeExperience, error)
	ListSkills(ctx context.Context, resumeID uint64) ([]models.ResumeSkill, error)
	SaveEducation(ctx context.Context, row *models.ResumeEducation) error
	DeleteEducation(ctx context.Context, resumeID, id uint64) error
	SaveExperience(ctx context.Context, row *models.ResumeExperience) error
	DeleteExperience(ctx context.Context, resumeID, id uint64) error

	EnqueueOutbox(ctx context.Context, msg *models.OutboxMessage) error
}

// ResumeParser 简历解析，*processor.ResumeProcessor 实现了该接口
type ResumeParser interface {
	ParseResume(ctx context.Context, data []byte, resumeID uint64) *types.TieredResult
}

// UploadLocker 多实例之间串行化上传，*storage.Redis 实现了该接口
type UploadLocker interface {
	AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (string, error)
	ReleaseLock(ctx context.Context, lockKey string, lockValue string) (bool, error)
	UploadLockTTL() time.Duration
}

var (
	_ ResumeRepository = (*storage.MySQL)(nil)
	_ UploadLocker     = (*storage.Redis)(nil)
)

// ResumeHandler 简历相关的HTTP处理器
type ResumeHandler struct {
	cfg     *config.Config
	repo    ResumeRepository
	objects storage.ObjectStorage
	parser  ResumeParser
	cache   cache.Cache
	locker  UploadLocker
	now     func() time.Time
}

// NewResumeHandler 创建简历处理器。locker 可以为nil，此时不做跨实例互斥。
func NewResumeHandler(
	cfg *config.Config,
	repo ResumeRepository,
	objects storage.ObjectStorage,
	parser ResumeParser,
	responseCache cache.Cache,
	locker UploadLocker,
) *ResumeHandler {
	if responseCache == nil {
		responseCache = cache.NewMemoryCache(config.GetDuration(cfg.Cache.TTL, 5*time.Second), nil)
	}
	return &ResumeHandler{
		cfg:     cfg,
		repo:    repo,
		objects: objects,
		parser:  parser,
		cache:   responseCache,
		locker:  locker,
		now:     time.Now,
	}
}

// fail 返回 {"error": msg} 并在当前span上记录错误
func (h *ResumeHandler) fail(ctx context.Context, c *app.RequestContext, status int, msg string, err error) {
	if err != nil {
		tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
		if status >= consts.StatusInternalServerError {
			logger.Ctx(ctx).Error().Err(err).Str("path", string(c.Path())).Msg(msg)
		}
	}
	c.JSON(status, utils.H{"error": msg})
}

// HandleUpload 接收PDF，保存到对象存储，替换当前简历并解析内容
func (h *ResumeHandler) HandleUpload(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, "No file uploaded", nil)
		return
	}
	if !isPDF(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		h.fail(ctx, c, consts.StatusBadRequest, "Only PDF files are allowed for resume", nil)
		return
	}
	if limit := int64(h.cfg.Server.MaxUploadMB) << 20; limit > 0 && fileHeader.Size > limit {
		h.fail(ctx, c, consts.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d MB limit", h.cfg.Server.MaxUploadMB), nil)
		return
	}

	if h.locker != nil {
		token, err := h.locker.AcquireLock(ctx, constants.KeyResumeUploadLock, h.locker.UploadLockTTL())
		if err != nil {
			h.fail(ctx, c, consts.StatusInternalServerError, "Failed to upload resume", err)
			return
		}
		if token == "" {
			h.fail(ctx, c, consts.StatusConflict, "Another resume upload is in progress", nil)
			return
		}
		defer func() {
			if _, err := h.locker.ReleaseLock(context.Background(), constants.KeyResumeUploadLock, token); err != nil {
				logger.Warn().Err(err).Msg("释放上传锁失败")
			}
		}()
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to upload resume", err)
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to upload resume", err)
		return
	}

	objectKey, md5Hex, err := h.objects.UploadResumeFile(ctx, fileHeader.Filename, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to upload resume", err)
		return
	}

	uploadedAt := h.now()
	resume := &models.Resume{
		Filename:     storedFilename(objectKey),
		OriginalName: fileHeader.Filename,
		ObjectKey:    objectKey,
		FileSize:     int64(len(data)),
		FileMD5:      md5Hex,
		UploadedAt:   uploadedAt,
	}
	previous, err := h.repo.ReplaceResume(ctx, resume)
	if err != nil {
		if delErr := h.objects.DeleteFile(ctx, objectKey); delErr != nil {
			logger.Warn().Err(delErr).Str("object_key", objectKey).Msg("回滚已上传的简历文件失败")
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to upload resume", err)
		return
	}
	h.removeObjects(ctx, previous, objectKey)

	tiered := h.parser.ParseResume(ctx, data, resume.ID)
	if tiered.Err != nil {
		logger.Ctx(ctx).Warn().Err(tiered.Err).Uint64("resume_id", resume.ID).
			Str("tier", tiered.Tier.String()).Bool("synthetic", tiered.IsSynthetic()).Msg("简历解析已降级")
	}
	if err := h.repo.UpdateParseOutcome(ctx, resume.ID, tiered.Tier, tiered.Result.PersonalInfo); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Uint64("resume_id", resume.ID).Msg("记录解析层级失败")
	}

	counts, err := h.repo.CountContent(ctx, resume.ID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Uint64("resume_id", resume.ID).Msg("统计简历内容失败")
	}
	h.enqueueParsedEvent(ctx, resume.ID, tiered)
	h.cache.Clear(ctx)

	logger.Ctx(ctx).Info().
		Uint64("resume_id", resume.ID).
		Str("tier", tiered.Tier.String()).
		Int64("education", counts.Education).
		Int64("experience", counts.Experience).
		Int64("skills", counts.Skills).
		Int("persist_failures", tiered.PersistFailures).
		Msg("简历上传处理完成")

	c.JSON(consts.StatusOK, UploadResponse{
		Message: "Resume uploaded and processed successfully",
		Resume: ResumeSummary{
			ID:              resume.ID,
			Filename:        resume.Filename,
			OriginalName:    resume.OriginalName,
			URL:             downloadURL,
			Size:            resume.FileSize,
			UploadedAt:      uploadedAt,
			LastUpdated:     uploadedAt,
			EducationCount:  counts.Education,
			ExperienceCount: counts.Experience,
			SkillsCount:     counts.Skills,
			Tier:            tiered.Tier.String(),
		},
		ParsedContent: tiered.Result,
	})
}

// enqueueParsedEvent 未配置RabbitMQ时跳过
func (h *ResumeHandler) enqueueParsedEvent(ctx context.Context, resumeID uint64, tiered *types.TieredResult) {
	if h.cfg.RabbitMQ.URL == "" {
		return
	}
	msg, err := outbox.NewResumeParsedMessage(storage.ResumeParsedEvent{
		ResumeID:        resumeID,
		Tier:            tiered.Tier.String(),
		Synthetic:       tiered.IsSynthetic(),
		EducationCount:  len(tiered.Result.Education),
		ExperienceCount: len(tiered.Result.Experience),
		SkillsCount:     tiered.Result.SkillsCount(),
		PersistFailures: tiered.PersistFailures,
		ParsedAt:        h.now(),
	}, &h.cfg.RabbitMQ)
	if err == nil {
		err = h.repo.EnqueueOutbox(ctx, msg)
	}
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Uint64("resume_id", resumeID).Msg("写入 resume.parsed 事件失败")
	}
}

func (h *ResumeHandler) removeObjects(ctx context.Context, resumes []models.Resume, keep string) {
	for _, old := range resumes {
		if old.ObjectKey == "" || old.ObjectKey == keep {
			continue
		}
		if err := h.objects.DeleteFile(ctx, old.ObjectKey); err != nil {
			logger.Warn().Err(err).Str("object_key", old.ObjectKey).Msg("删除旧简历文件失败")
		}
	}
}

// HandleAdminInfo 返回当前简历的元数据和内容条数
func (h *ResumeHandler) HandleAdminInfo(ctx context.Context, c *app.RequestContext) {
	resume, err := h.repo.CurrentResume(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(ctx, c, consts.StatusNotFound, "No resume found", nil)
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to fetch resume", err)
		return
	}

	counts, err := h.repo.CountContent(ctx, resume.ID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("统计简历内容失败")
	}
	c.JSON(consts.StatusOK, ResumeSummary{
		ID:              resume.ID,
		Filename:        resume.Filename,
		OriginalName:    resume.OriginalName,
		URL:             downloadURL,
		Size:            resume.FileSize,
		UploadedAt:      resume.UploadedAt,
		LastUpdated:     resume.UploadedAt,
		EducationCount:  counts.Education,
		ExperienceCount: counts.Experience,
		SkillsCount:     counts.Skills,
		Tier:            tierName(resume.ParseTier),
	})
}

// HandleDownload 以附件形式返回简历PDF
func (h *ResumeHandler) HandleDownload(ctx context.Context, c *app.RequestContext) {
	resume, err := h.repo.CurrentResume(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "No resume available for download", "available": false})
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to download resume", err)
		return
	}

	reader, info, err := h.objects.OpenResumeFile(ctx, resume.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "Resume file not found on server", "available": false})
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to download resume", err)
		return
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to download resume", err)
		return
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = constants.ResumeContentType
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, resume.OriginalName))
	c.Header("Cache-Control", "no-cache")
	c.Data(consts.StatusOK, contentType, data)
}

// HandleDelete 删除简历文件、记录和全部内容
func (h *ResumeHandler) HandleDelete(ctx context.Context, c *app.RequestContext) {
	resume, err := h.repo.CurrentResume(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(ctx, c, consts.StatusNotFound, "No resume found to delete", nil)
			return
		}
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to delete resume", err)
		return
	}

	if err := h.objects.DeleteFile(ctx, resume.ObjectKey); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("object_key", resume.ObjectKey).Msg("删除简历文件失败")
	}
	if err := h.repo.DeleteResume(ctx, resume.ID); err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, "Failed to delete resume", err)
		return
	}
	h.cache.Clear(ctx)

	c.JSON(consts.StatusOK, utils.H{
		"message": "Resume deleted successfully",
		"deleted": utils.H{
			"filename":     resume.Filename,
			"originalName": resume.OriginalName,
		},
	})
}

// HandleHealth 存活检查
func (h *ResumeHandler) HandleHealth(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

func isPDF(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return strings.HasPrefix(contentType, constants.ResumeContentType)
}

// storedFilename resume/{id}/original.pdf -> {id}.pdf
func storedFilename(objectKey string) string {
	dir := path.Base(path.Dir(objectKey))
	if dir == "." || dir == "/" {
		return path.Base(objectKey)
	}
	return dir + path.Ext(objectKey)
}

func tierName(tier int) string {
	if tier == 0 {
		return ""
	}
	return types.Tier(tier).String()
}
