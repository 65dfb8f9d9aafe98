package parser

import (
	"context"
	"errors"
	"io"
	"time"
)

// TextExtractor 把PDF字节转换为纯文本。返回空文本不是错误，由调用方决定如何处理。
type TextExtractor interface {
	// ExtractFromFile 从本地PDF文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	// uri 仅用于日志与元数据，extraMeta 会合并进返回的元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error)
}

// ErrEmptyDocument 输入为空
var ErrEmptyDocument = errors.New("PDF内容为空")

// 后端名称
const (
	BackendEino       = "eino"
	BackendTika       = "tika"
	BackendLedongthuc = "ledongthuc"
)

// 默认的单次提取超时
const defaultExtractTimeout = 30 * time.Second

// newMetadata 复制调用方元数据，并补充公共字段
func newMetadata(extraMeta map[string]interface{}, uri string) map[string]interface{} {
	meta := make(map[string]interface{}, len(extraMeta)+4)
	for k, v := range extraMeta {
		meta[k] = v
	}
	if _, ok := meta["source_file_path"]; !ok && uri != "" {
		meta["source_file_path"] = uri
	}
	meta["extraction_time"] = time.Now().Format(time.RFC3339)
	return meta
}
