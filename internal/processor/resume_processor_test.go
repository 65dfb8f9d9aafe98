package processor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"portfolio-go/internal/types"
)

// MockPDFExtractor 模拟PDF提取器
type MockPDFExtractor struct {
	text     string
	err      error
	panicVal interface{}
	calls    int
}

func (m *MockPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	m.calls++
	if m.panicVal != nil {
		panic(m.panicVal)
	}
	return m.text, extraMeta, m.err
}

// MockContentExtractor 模拟内容提取器
type MockContentExtractor struct {
	full       *types.ParseResult
	fullErr    error
	fullPanic  bool
	basic      *types.ParseResult
	basicErr   error
	basicCalls int
}

func (m *MockContentExtractor) Extract(ctx context.Context, text string) (*types.ParseResult, error) {
	if m.fullPanic {
		panic("index out of range")
	}
	return m.full, m.fullErr
}

func (m *MockContentExtractor) ExtractBasic(ctx context.Context, text string) (*types.ParseResult, error) {
	m.basicCalls++
	return m.basic, m.basicErr
}

// MockContentStore 记录所有存储调用，failOps 中的操作返回错误
type MockContentStore struct {
	mu         sync.Mutex
	ops        []string
	education  []types.EducationRecord
	experience []types.ExperienceRecord
	skills     []types.SkillCategory
	failOps    map[string]bool
}

func (m *MockContentStore) call(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, op)
	if m.failOps[op] {
		return errors.New(op + " failed")
	}
	return nil
}

func (m *MockContentStore) DeleteEducationByResumeID(ctx context.Context, resumeID uint64) error {
	return m.call("delete_education")
}

func (m *MockContentStore) InsertEducation(ctx context.Context, resumeID uint64, record types.EducationRecord) error {
	if err := m.call("insert_education"); err != nil {
		return err
	}
	m.education = append(m.education, record)
	return nil
}

func (m *MockContentStore) DeleteExperienceByResumeID(ctx context.Context, resumeID uint64) error {
	return m.call("delete_experience")
}

func (m *MockContentStore) InsertExperience(ctx context.Context, resumeID uint64, record types.ExperienceRecord) error {
	if err := m.call("insert_experience"); err != nil {
		return err
	}
	m.experience = append(m.experience, record)
	return nil
}

func (m *MockContentStore) DeleteSkillsByResumeID(ctx context.Context, resumeID uint64) error {
	return m.call("delete_skills")
}

func (m *MockContentStore) InsertSkillCategory(ctx context.Context, resumeID uint64, category types.SkillCategory) error {
	if err := m.call("insert_skill_category"); err != nil {
		return err
	}
	m.skills = append(m.skills, category)
	return nil
}

// MockAtomicStore 额外支持事务替换
type MockAtomicStore struct {
	MockContentStore
	replaced   *types.ParseResult
	replaceErr error
}

func (m *MockAtomicStore) ReplaceResumeContent(ctx context.Context, resumeID uint64, result *types.ParseResult) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = result
	return nil
}

func newTestProcessor(t *testing.T, pdf PDFExtractor, extractor ContentExtractor, store ContentStore, setOpts ...SettingOpt) *ResumeProcessor {
	t.Helper()
	compOpts := []ComponentOpt{WithcompPdfextractor(pdf), WithcompContentstore(store)}
	if extractor != nil {
		compOpts = append(compOpts, WithcompContentextractor(extractor))
	}
	setOpts = append([]SettingOpt{WithsetLogger(log.New(io.Discard, "", 0))}, setOpts...)
	rp, err := CreateProcessor(compOpts, setOpts)
	require.NoError(t, err)
	return rp
}

const scenarioText = `Education
Bachelor of Technology in Computer Science
ABC University
2020-2024

Experience
Software Engineer at TechCorp
2021-2023
• Led a team of 5

Skills
react, node.js, python
`

func TestParseResume_FullTier(t *testing.T) {
	store := &MockContentStore{}
	rp := newTestProcessor(t, &MockPDFExtractor{text: scenarioText}, nil, store)

	tiered := rp.ParseResume(context.Background(), []byte("%PDF"), 7)

	require.NotNil(t, tiered)
	assert.Equal(t, types.TierFull, tiered.Tier)
	assert.NoError(t, tiered.Err)
	assert.Zero(t, tiered.PersistFailures)

	require.Len(t, tiered.Result.Education, 1)
	assert.Equal(t, "ABC University", tiered.Result.Education[0].Institution)
	require.Len(t, tiered.Result.Experience, 1)
	assert.Equal(t, "TechCorp", tiered.Result.Experience[0].Company)
	assert.Equal(t, []string{"Led a team of 5"}, tiered.Result.Experience[0].Achievements)
	assert.NotEmpty(t, tiered.Result.Skills)

	// 先删除再插入
	require.GreaterOrEqual(t, len(store.ops), 3)
	assert.Equal(t, []string{"delete_education", "delete_experience", "delete_skills"}, store.ops[:3])
	assert.Equal(t, tiered.Result.Education, store.education)
	assert.Equal(t, tiered.Result.Skills, store.skills)
}

func TestParseResume_EmptyTextUsesSample(t *testing.T) {
	for name, text := range map[string]string{"空文本": "", "只有空白": "  \n\t \n"} {
		t.Run(name, func(t *testing.T) {
			extractor := &MockContentExtractor{}
			store := &MockContentStore{}
			rp := newTestProcessor(t, &MockPDFExtractor{text: text}, extractor, store)

			tiered := rp.ParseResume(context.Background(), nil, 1)

			assert.Equal(t, types.TierSample, tiered.Tier)
			assert.Equal(t, SampleResult(), tiered.Result)
			assert.ErrorIs(t, tiered.Err, ErrNoTextExtracted)
			assert.Zero(t, extractor.basicCalls)
			assert.Equal(t, SampleResult().Education, store.education)
		})
	}
}

func TestParseResume_SampleIsDeterministic(t *testing.T) {
	rp := newTestProcessor(t, &MockPDFExtractor{}, nil, &MockContentStore{})

	first := rp.ParseResume(context.Background(), nil, 1)
	second := rp.ParseResume(context.Background(), nil, 2)

	assert.Equal(t, first.Result, second.Result)
	require.Len(t, first.Result.Education, 1)
	assert.Equal(t, "Bachelor of Technology in Computer Science", first.Result.Education[0].Degree)
	assert.Equal(t, "Sample University", first.Result.Education[0].Institution)
	assert.Equal(t, "2020-2024", first.Result.Education[0].Period)
	assert.Len(t, first.Result.Experience, 1)
	assert.Len(t, first.Result.Skills, 2)

	// 修改返回值不影响下一次
	first.Result.Education[0].Degree = "changed"
	assert.Equal(t, "Bachelor of Technology in Computer Science", SampleResult().Education[0].Degree)
}

func TestParseResume_PDFFailuresUseSample(t *testing.T) {
	tests := []struct {
		name string
		pdf  PDFExtractor
	}{
		{"提取返回错误", &MockPDFExtractor{err: errors.New("corrupt xref")}},
		{"提取panic", &MockPDFExtractor{panicVal: "boom"}},
		{"未配置提取器", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockContentStore{}
			rp := newTestProcessor(t, &MockPDFExtractor{}, nil, store)
			rp.PDFExtractor = tt.pdf

			tiered := rp.ParseResume(context.Background(), []byte("x"), 3)

			assert.Equal(t, types.TierSample, tiered.Tier)
			assert.ErrorIs(t, tiered.Err, ErrNoTextExtracted)
			assert.Equal(t, SampleResult(), tiered.Result)
			assert.NotEmpty(t, store.ops)
		})
	}
}

func TestParseResume_ExtractErrorFallsBackToBasic(t *testing.T) {
	basic := &types.ParseResult{
		Education: []types.EducationRecord{{Degree: "Bachelor of Science"}},
		Skills:    []types.SkillCategory{{Category: "Backend", Skills: []string{"python"}}},
	}
	extractor := &MockContentExtractor{fullErr: errors.New("bad layout"), basic: basic}
	store := &MockContentStore{}
	rp := newTestProcessor(t, &MockPDFExtractor{text: "some text"}, extractor, store)

	tiered := rp.ParseResume(context.Background(), nil, 4)

	assert.Equal(t, types.TierBasic, tiered.Tier)
	assert.ErrorIs(t, tiered.Err, ErrExtractionPipeline)
	assert.Equal(t, 1, extractor.basicCalls)
	assert.Equal(t, basic.Education, tiered.Result.Education)
	// nil 切片被补齐
	assert.NotNil(t, tiered.Result.Experience)
	assert.Empty(t, tiered.Result.Experience)
	// 第二层同样替换已保存的内容
	assert.Contains(t, store.ops, "delete_education")
	assert.Equal(t, basic.Education, store.education)
}

func TestParseResume_ExtractPanicFallsBackToBasic(t *testing.T) {
	extractor := &MockContentExtractor{fullPanic: true, basic: types.NewParseResult()}
	rp := newTestProcessor(t, &MockPDFExtractor{text: "some text"}, extractor, &MockContentStore{})

	tiered := rp.ParseResume(context.Background(), nil, 5)

	assert.Equal(t, types.TierBasic, tiered.Tier)
	assert.ErrorIs(t, tiered.Err, ErrExtractionPipeline)
	assert.Contains(t, tiered.Err.Error(), "panic")
}

func TestParseResume_BasicFailureReturnsEmpty(t *testing.T) {
	extractor := &MockContentExtractor{fullErr: errors.New("bad"), basicErr: errors.New("worse")}
	store := &MockContentStore{}
	rp := newTestProcessor(t, &MockPDFExtractor{text: "text"}, extractor, store)

	tiered := rp.ParseResume(context.Background(), nil, 6)

	assert.Equal(t, types.TierBasic, tiered.Tier)
	assert.ErrorIs(t, tiered.Err, ErrExtractionPipeline)
	assert.ErrorIs(t, tiered.Err, ErrBasicFallback)
	assert.Empty(t, tiered.Result.Education)
	assert.Empty(t, tiered.Result.Experience)
	assert.Empty(t, tiered.Result.Skills)
	assert.Empty(t, store.ops)
}

func TestParseResume_PersistFailuresAreCounted(t *testing.T) {
	store := &MockContentStore{failOps: map[string]bool{
		"delete_experience": true,
		"insert_education":  true,
	}}
	rp := newTestProcessor(t, &MockPDFExtractor{text: scenarioText}, nil, store)

	tiered := rp.ParseResume(context.Background(), nil, 8)

	assert.Equal(t, types.TierFull, tiered.Tier)
	assert.NoError(t, tiered.Err)
	// delete_experience 1次 + insert_education 1次
	assert.Equal(t, 2, tiered.PersistFailures)
	// 失败后后续调用仍然执行
	assert.Contains(t, store.ops, "delete_skills")
	assert.Contains(t, store.ops, "insert_experience")
	assert.Len(t, store.experience, 1)
	assert.Empty(t, store.education)
}

func TestRecordPersistError_TagsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "persist")

	recordPersistError(span, 42, "insert_education", NewPersistenceError(42, "insert_education", errors.New("duplicate key")))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "persistence", attrs["error.type"])
	assert.Equal(t, "42", attrs["resume.id"])
	assert.Equal(t, "insert_education", attrs["persist.op"])
}

func TestParseResume_AtomicPersistence(t *testing.T) {
	t.Run("事务替换", func(t *testing.T) {
		store := &MockAtomicStore{}
		rp := newTestProcessor(t, &MockPDFExtractor{text: scenarioText}, nil, store, WithsetAtomicpersistence(true))

		tiered := rp.ParseResume(context.Background(), nil, 9)

		assert.Zero(t, tiered.PersistFailures)
		assert.Equal(t, tiered.Result, store.replaced)
		assert.Empty(t, store.ops)
	})

	t.Run("事务失败计为一次", func(t *testing.T) {
		store := &MockAtomicStore{replaceErr: errors.New("deadlock")}
		rp := newTestProcessor(t, &MockPDFExtractor{text: scenarioText}, nil, store, WithsetAtomicpersistence(true))

		tiered := rp.ParseResume(context.Background(), nil, 10)

		assert.Equal(t, types.TierFull, tiered.Tier)
		assert.Equal(t, 1, tiered.PersistFailures)
	})

	t.Run("存储不支持事务时逐条写入", func(t *testing.T) {
		store := &MockContentStore{}
		rp := newTestProcessor(t, &MockPDFExtractor{text: scenarioText}, nil, store, WithsetAtomicpersistence(true))

		rp.ParseResume(context.Background(), nil, 11)

		assert.Equal(t, "delete_education", store.ops[0])
	})

	t.Run("未开启时不使用事务", func(t *testing.T) {
		store := &MockAtomicStore{}
		rp := newTestProcessor(t, &MockPDFExtractor{text: scenarioText}, nil, store)

		rp.ParseResume(context.Background(), nil, 12)

		assert.Nil(t, store.replaced)
		assert.NotEmpty(t, store.ops)
	})
}

func TestCreateProcessor(t *testing.T) {
	_, err := CreateProcessor(nil, nil)
	assert.Error(t, err)

	var buf bytes.Buffer
	rp, err := CreateProcessor(
		[]ComponentOpt{WithcompPdfextractor(&MockPDFExtractor{})},
		[]SettingOpt{WithsetLogger(log.New(&buf, "", 0))},
	)
	require.NoError(t, err)
	assert.NotNil(t, rp.Extractor)
	assert.IsType(t, NopContentStore{}, rp.Store)
	assert.Equal(t, defaultExtractTimeout, rp.Config.ExtractTimeout)
	assert.Contains(t, buf.String(), "Store")
}

func TestResumeProcessError(t *testing.T) {
	cause := errors.New("io timeout")
	err := NewPersistenceError(3, "insert_skill_category", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert_skill_category")
	assert.Contains(t, err.Error(), "简历ID:3")

	noText := NewNoTextError(1, nil)
	assert.ErrorIs(t, noText, ErrNoTextExtracted)
	assert.NotContains(t, noText.Error(), "<nil>")
}
