package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"portfolio-go/internal/config"
)

func TestMaskPII(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"a":           "*",
		"张三":          "张*",
		"王小明":         "王*明",
		"13812345678": "13*******78",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskPII(in), in)
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab...ij", TruncateString("abcdefghij", 7))
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "us**om", SafeAttributeValue("user_email", "userom", 100))
	assert.Equal(t, "plain", SafeAttributeValue("resume_tier", "plain", 100))
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordError(span, errors.New("boom"), ErrorTypeExtraction)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	var errType string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "error.type" {
			errType = kv.Value.AsString()
		}
	}
	assert.Equal(t, "extraction", errType)
}

func TestRecordHTTPError_Category(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "GET /api/resume")
	RecordHTTPError(span, errors.New("not found"), 404)
	span.End()

	attrs := map[string]string{}
	for _, kv := range recorder.Ended()[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "http", attrs["error.type"])
	assert.Equal(t, "client_error", attrs["error.category"])
	assert.Equal(t, "404", attrs["http.status_code"])
}

func TestSafeResumeContent(t *testing.T) {
	short := "Education\nABC University"
	assert.Equal(t, short, SafeResumeContent(short))

	long := strings.Repeat("a", 100) + strings.Repeat("b", 100)
	got := SafeResumeContent(long)
	assert.Len(t, []rune(got), MaxResumeTextLength-1)
	assert.True(t, strings.HasPrefix(got, "aaa"))
	assert.True(t, strings.HasSuffix(got, "bbb"))
	assert.Contains(t, got, "...")
}

func TestRecordError_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(nil, errors.New("x"), ErrorTypeDB)
		RecordHTTPError(nil, nil, 500)
	})
}

func TestInitTracerProvider_Disabled(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracerProvider_MissingEndpoint(t *testing.T) {
	_, err := InitTracerProvider(context.Background(), config.TracingConfig{Enabled: true})
	assert.Error(t, err)
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 0.0, sampleRatio(-1))
	assert.Equal(t, 1.0, sampleRatio(3))
	assert.Equal(t, 0.25, sampleRatio(0.25))
}
