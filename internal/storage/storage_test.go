package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"portfolio-go/internal/config"
	"portfolio-go/internal/storage/models"
	"portfolio-go/internal/types"
)

var objectKeyRe = regexp.MustCompile(`^resume/[0-9a-f-]{36}/original\.pdf$`)

func TestResumeObjectKey(t *testing.T) {
	key, err := ResumeObjectKey("My Resume.PDF")
	require.NoError(t, err)
	assert.Regexp(t, objectKeyRe, key)

	other, err := ResumeObjectKey("noext")
	require.NoError(t, err)
	assert.Regexp(t, objectKeyRe, other)
	assert.NotEqual(t, key, other)
}

func TestGetContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", getContentType(".PDF"))
	assert.Equal(t, "text/plain", getContentType(".txt"))
	assert.Equal(t, "application/octet-stream", getContentType(".bin"))
}

func TestParseOutcomeUpdates(t *testing.T) {
	updates, err := parseOutcomeUpdates(types.TierSample, types.PersonalInfo{})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"parse_tier": 3}, updates)

	updates, err = parseOutcomeUpdates(types.TierFull, types.PersonalInfo{Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, updates["parse_tier"])
	assert.JSONEq(t, `{"email":"jane@example.com"}`, string(updates["personal_info"].(datatypes.JSON)))
}

func TestObjectNotFound(t *testing.T) {
	err := objectNotFound("resume/x/original.pdf", minio.ErrorResponse{Code: "NoSuchKey"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = objectNotFound("resume/x/original.pdf", errors.New("connection refused"))
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "resume/x/original.pdf")
}

// 以下测试需要真实的 MySQL / Redis / MinIO，通过 PORTFOLIO_TEST_CONFIG 指定配置文件
func loadIntegrationConfig(t *testing.T) *config.Config {
	t.Helper()
	path := os.Getenv("PORTFOLIO_TEST_CONFIG")
	if path == "" {
		t.Skip("未设置 PORTFOLIO_TEST_CONFIG，跳过集成测试")
	}
	cfg, err := config.LoadConfigFromFileOnly(path)
	require.NoError(t, err)
	return cfg
}

func TestMySQLResumeLifecycle(t *testing.T) {
	cfg := loadIntegrationConfig(t)
	db, err := NewMySQL(&cfg.MySQL)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	resume := &models.Resume{
		Filename:     "a.pdf",
		OriginalName: "A.pdf",
		ObjectKey:    "resume/a/original.pdf",
		FileSize:     10,
		UploadedAt:   time.Now(),
	}
	_, err = db.ReplaceResume(ctx, resume)
	require.NoError(t, err)
	require.NotZero(t, resume.ID)

	result := &types.ParseResult{
		Education:  []types.EducationRecord{{Degree: "BSc", Institution: "MIT", Period: "2018-2022"}},
		Experience: []types.ExperienceRecord{{Position: "Engineer", Company: "Acme", Period: "2022-2024", Achievements: []string{"a", "b"}}},
		Skills:     []types.SkillCategory{{Category: "Backend", Skills: []string{"go", "python"}}},
	}
	require.NoError(t, db.ReplaceResumeContent(ctx, resume.ID, result))
	require.NoError(t, db.UpdateParseOutcome(ctx, resume.ID, types.TierFull, types.PersonalInfo{Email: "a@b.c"}))

	counts, err := db.CountContent(ctx, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, ContentCounts{Education: 1, Experience: 1, Skills: 1}, counts)

	exp, err := db.ListExperience(ctx, resume.ID)
	require.NoError(t, err)
	require.Len(t, exp, 1)
	assert.Equal(t, []string{"a", "b"}, exp[0].ToRecord().Achievements)

	current, err := db.CurrentResume(ctx)
	require.NoError(t, err)
	assert.Equal(t, resume.ID, current.ID)
	assert.Equal(t, int(types.TierFull), current.ParseTier)

	next := &models.Resume{Filename: "b.pdf", OriginalName: "B.pdf", ObjectKey: "resume/b/original.pdf", UploadedAt: time.Now()}
	previous, err := db.ReplaceResume(ctx, next)
	require.NoError(t, err)
	require.Len(t, previous, 1)
	assert.Equal(t, resume.ID, previous[0].ID)

	counts, err = db.CountContent(ctx, resume.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Education)

	require.NoError(t, db.DeleteResume(ctx, next.ID))
	_, err = db.CurrentResume(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisUploadLock(t *testing.T) {
	cfg := loadIntegrationConfig(t)
	r, err := NewRedisAdapter(&cfg.Redis)
	require.NoError(t, err)
	defer r.Close()
	ctx := context.Background()
	key := "portfolio:test:lock"

	token, err := r.AcquireLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := r.AcquireLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.Empty(t, again)

	released, err := r.ReleaseLock(ctx, key, "wrong-token")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = r.ReleaseLock(ctx, key, token)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestMinIOResumeFile(t *testing.T) {
	cfg := loadIntegrationConfig(t)
	m, err := NewMinIO(&cfg.MinIO, nil)
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("%PDF-1.4 integration")
	key, md5Hex, err := m.UploadResumeFile(ctx, "it.pdf", bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	assert.Len(t, md5Hex, 32)
	defer m.DeleteFile(ctx, key)

	reader, info, err := m.OpenResumeFile(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "application/pdf", info.ContentType)

	require.NoError(t, m.DeleteFile(ctx, key))
	_, err = m.StatResumeFile(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
