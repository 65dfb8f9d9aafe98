package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// MetadataMode Tika元数据提取模式
type MetadataMode string

const (
	MetadataNone    MetadataMode = "none"
	MetadataMinimal MetadataMode = "minimal"
	MetadataFull    MetadataMode = "full"
)

// TikaPDFExtractor 基于Apache Tika服务的PDF解析器
type TikaPDFExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端
	Client *http.Client

	metadataMode       MetadataMode
	extractAnnotations bool
	logger             *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithMetadataMode 配置元数据提取模式
func WithMetadataMode(mode MetadataMode) TikaOption {
	return func(e *TikaPDFExtractor) {
		switch mode {
		case MetadataNone, MetadataMinimal, MetadataFull:
			e.metadataMode = mode
		}
	}
}

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.logger = logger
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		if timeout > 0 {
			e.Client.Timeout = timeout
		}
	}
}

var _ TextExtractor = (*TikaPDFExtractor)(nil)

// NewTikaPDFExtractor 创建一个新的Tika PDF解析器
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) *TikaPDFExtractor {
	extractor := &TikaPDFExtractor{
		ServerURL:          strings.TrimRight(serverURL, "/"),
		Client:             &http.Client{Timeout: 60 * time.Second},
		metadataMode:       MetadataMinimal,
		extractAnnotations: true,
		logger:             log.New(os.Stderr, "[TikaPDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromFile 从PDF文件提取文本内容
func (e *TikaPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开PDF文件 %s 失败: %w", filePath, err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath, nil)
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *TikaPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, extraMeta)
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *TikaPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	meta := newMetadata(extraMeta, uri)
	if len(data) == 0 {
		return "", meta, ErrEmptyDocument
	}
	startTime := time.Now()

	headers := map[string]string{"Accept": "text/plain; charset=UTF-8"}
	if !e.extractAnnotations {
		headers["X-Tika-PDFExtractAnnotationText"] = "false"
	}
	textBytes, err := e.put(ctx, "/tika", data, uri, headers)
	if err != nil {
		e.logger.Printf("Tika文本提取失败 (URI: %s): %v", uri, err)
		return "", meta, err
	}
	text := string(textBytes)

	meta["text_length"] = len(text)
	meta["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if e.metadataMode != MetadataNone {
		rawMetadata, err := e.extractMetadata(ctx, data, uri)
		if err != nil {
			e.logger.Printf("元数据提取失败: %v, 继续使用基本元数据", err)
		}
		for k, v := range rawMetadata {
			if e.metadataMode == MetadataFull || isImportantMetadata(k) {
				meta[k] = v
			}
		}
	}

	e.logger.Printf("PDF文本提取完成: 提取了 %d 个字符 (用时 %s)", len(text), time.Since(startTime))
	return text, meta, nil
}

// put 向Tika服务器发送PUT请求并返回响应体
func (e *TikaPDFExtractor) put(ctx context.Context, path string, data []byte, uri string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	return body, nil
}

// extractMetadata 提取文档元数据
func (e *TikaPDFExtractor) extractMetadata(ctx context.Context, data []byte, uri string) (map[string]interface{}, error) {
	body, err := e.put(ctx, "/meta", data, uri, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	return metadata, nil
}

var importantMetadataKeys = map[string]bool{
	"pdf:PDFVersion":      true,
	"xmpTPg:NPages":       true,
	"dcterms:created":     true,
	"language":            true,
	"dc:title":            true,
	"Content-Type":        true,
	"pdf:docinfo:title":   true,
	"pdf:docinfo:created": true,
}

func isImportantMetadata(key string) bool {
	return importantMetadataKeys[key]
}
