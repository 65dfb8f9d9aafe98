package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"portfolio-go/internal/config"
	"portfolio-go/internal/constants"
)

// ObjectInfo 对象的基本信息
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStorage 简历文件的对象存储接口
type ObjectStorage interface {
	// UploadResumeFile 流式上传简历文件并计算MD5，返回对象键和MD5
	UploadResumeFile(ctx context.Context, originalName string, reader io.Reader, fileSize int64) (string, string, error)
	// OpenResumeFile 打开简历文件用于流式读取，调用方负责关闭
	OpenResumeFile(ctx context.Context, objectKey string) (io.ReadCloser, ObjectInfo, error)
	// StatResumeFile 获取简历文件信息，不存在时返回 ErrNotFound
	StatResumeFile(ctx context.Context, objectKey string) (ObjectInfo, error)
	// DeleteFile 删除文件
	DeleteFile(ctx context.Context, objectKey string) error
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	logger *log.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("MinIO存储桶名称不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		bucket: cfg.BucketName,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.ensureBucketExists(ctx); err != nil {
		return nil, err
	}
	if cfg.NoncurrentExpireDays > 0 {
		if err := m.setupLifecycle(ctx, cfg.NoncurrentExpireDays); err != nil {
			logger.Printf("[WARN] 设置存储桶 %s 生命周期规则失败: %v", m.bucket, err)
		}
	}

	logger.Printf("MinIO客户端初始化成功: %s/%s", cfg.Endpoint, m.bucket)
	return m, nil
}

func (m *MinIO) ensureBucketExists(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.cfg.Location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", m.bucket, err)
	}
	m.logger.Printf("存储桶 %s 已创建", m.bucket)
	return nil
}

// setupLifecycle 为被覆盖的旧版本简历设置过期规则
func (m *MinIO) setupLifecycle(ctx context.Context, days int) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     "expire-noncurrent-resumes",
			Status: "Enabled",
			RuleFilter: lifecycle.Filter{
				Prefix: constants.ResumeObjectPrefix + "/",
			},
			NoncurrentVersionExpiration: lifecycle.NoncurrentVersionExpiration{
				NoncurrentDays: lifecycle.ExpirationDays(days),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, m.bucket, cfg)
}

// ResumeObjectKey 生成简历文件的对象键，例如 resume/{uuidv7}/original.pdf
func ResumeObjectKey(originalName string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".pdf"
	}
	return fmt.Sprintf("%s/%s/original%s", constants.ResumeObjectPrefix, id.String(), ext), nil
}

// UploadResumeFile 流式上传简历文件并同时计算MD5
func (m *MinIO) UploadResumeFile(ctx context.Context, originalName string, reader io.Reader, fileSize int64) (string, string, error) {
	objectKey, err := ResumeObjectKey(originalName)
	if err != nil {
		return "", "", err
	}

	md5Hash := md5.New()
	teeReader := io.TeeReader(reader, md5Hash)

	info, err := m.client.PutObject(ctx, m.bucket, objectKey, teeReader, fileSize,
		minio.PutObjectOptions{ContentType: getContentType(filepath.Ext(objectKey))})
	if err != nil {
		return "", "", fmt.Errorf("上传简历文件到MinIO失败: %w", err)
	}

	md5Hex := hex.EncodeToString(md5Hash.Sum(nil))
	m.logger.Printf("[DEBUG] 已上传 %s, ETag: %s, Size: %d, MD5: %s", objectKey, info.ETag, info.Size, md5Hex)
	return objectKey, md5Hex, nil
}

// OpenResumeFile 打开简历文件
func (m *MinIO) OpenResumeFile(ctx context.Context, objectKey string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("获取对象 %s 失败: %w", objectKey, err)
	}
	// GetObject 是惰性的，Stat 才会真正访问服务端
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, objectNotFound(objectKey, err)
	}
	return obj, toObjectInfo(stat), nil
}

// StatResumeFile 获取简历文件信息
func (m *MinIO) StatResumeFile(ctx context.Context, objectKey string) (ObjectInfo, error) {
	stat, err := m.client.StatObject(ctx, m.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, objectNotFound(objectKey, err)
	}
	return toObjectInfo(stat), nil
}

// DeleteFile 删除文件
func (m *MinIO) DeleteFile(ctx context.Context, objectKey string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象 %s 失败: %w", objectKey, err)
	}
	return nil
}

func objectNotFound(objectKey string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("获取对象 %s 状态失败: %w", objectKey, err)
}

func toObjectInfo(stat minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		LastModified: stat.LastModified,
	}
}

func getContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return constants.ResumeContentType
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
