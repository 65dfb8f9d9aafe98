package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStdLoggerMapsLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "json"}, &buf)

	std := NewStdLogger("[Processor] ")
	std.Printf("[WARN] 简历 %d 改为逐条写入", 7)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "输出应为单行JSON")
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Processor", entry["component"])
	assert.Equal(t, "简历 7 改为逐条写入", entry["message"])
}

func TestNewStdLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info", Format: "json"}, &buf)

	NewStdLogger("[EinoPDF] ").Println("[DEBUG] 不应输出")
	assert.Empty(t, buf.String(), "低于当前级别的消息应被丢弃")

	NewStdLogger("[EinoPDF] ").Println("已初始化")
	assert.Contains(t, buf.String(), `"level":"info"`)
}
