package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// LedongthucPDFExtractor 纯Go实现的逐页文本提取，不依赖外部服务
type LedongthucPDFExtractor struct {
	logger *log.Logger
}

// LedongthucOption 配置选项
type LedongthucOption func(*LedongthucPDFExtractor)

// WithLedongthucLogger 配置日志记录器
func WithLedongthucLogger(logger *log.Logger) LedongthucOption {
	return func(e *LedongthucPDFExtractor) {
		e.logger = logger
	}
}

var _ TextExtractor = (*LedongthucPDFExtractor)(nil)

// NewLedongthucPDFExtractor 创建提取器
func NewLedongthucPDFExtractor(options ...LedongthucOption) *LedongthucPDFExtractor {
	e := &LedongthucPDFExtractor{
		logger: log.New(os.Stderr, "[NativePDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractFromFile 读取文件后提取
func (e *LedongthucPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开PDF文件 %s 失败: %w", filePath, err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath, nil)
}

// ExtractTextFromReader 读取全部内容后提取，pdf.Reader 需要随机访问
func (e *LedongthucPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, extraMeta)
}

// ExtractTextFromBytes 按页提取纯文本，无法读取的页会被跳过。
// 损坏的PDF可能导致底层库panic，这里统一转换为错误。
func (e *LedongthucPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (_ string, _ map[string]interface{}, err error) {
	meta := newMetadata(extraMeta, uri)
	if len(data) == 0 {
		return "", meta, ErrEmptyDocument
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("解析PDF时发生panic (URI: %s): %v", uri, r)
		}
	}()

	startTime := time.Now()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", meta, fmt.Errorf("打开PDF失败 (URI: %s): %w", uri, err)
	}

	var text strings.Builder
	skipped := 0
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", meta, fmt.Errorf("PDF提取被中断: %w", err)
		}
		page := r.Page(i)
		if page.V.IsNull() {
			skipped++
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Printf("第 %d 页读取失败, 跳过: %v", i, err)
			skipped++
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(pageText)
	}

	result := text.String()
	meta["page_count"] = total
	meta["skipped_pages"] = skipped
	meta["text_length"] = len(result)
	meta["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	e.logger.Printf("PDF提取完成: %d 页, 提取了 %d 个字符 (用时 %s)", total, len(result), time.Since(startTime))
	return result, meta, nil
}
