package main

import (
	"context"
	"strings"

	"portfolio-go/internal/processor"
)

// plainTextExtractor 输入已经是纯文本时使用
type plainTextExtractor struct{}

var _ processor.PDFExtractor = plainTextExtractor{}

func (plainTextExtractor) ExtractTextFromBytes(_ context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	meta := make(map[string]interface{}, len(extraMeta)+1)
	for k, v := range extraMeta {
		meta[k] = v
	}
	meta["source"] = "plain_text"
	if uri != "" {
		meta["source_file_path"] = uri
	}
	return strings.ToValidUTF8(string(data), ""), meta, nil
}
