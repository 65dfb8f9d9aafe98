package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrNoTextExtracted 文本获取失败或只得到空白文本，直接进入占位数据层
	ErrNoTextExtracted = errors.New("未从PDF中提取到文本")
	// ErrExtractionPipeline 已有文本但启发式提取过程出错，进入基础扫描层
	ErrExtractionPipeline = errors.New("简历内容提取失败")
	// ErrPersistence 存储层的删除或插入失败，不会中断当前层
	ErrPersistence = errors.New("简历内容持久化失败")
	// ErrBasicFallback 基础扫描本身也失败
	ErrBasicFallback = errors.New("基础扫描失败")
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	ResumeID uint64
	Op       string
	BaseErr  error
	Detail   string
	Cause    error
}

func (e *ResumeProcessError) Error() string {
	msg := fmt.Sprintf("%s (操作:%s, 简历ID:%d)", e.BaseErr, e.Op, e.ResumeID)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 同时暴露基础错误和底层原因
func (e *ResumeProcessError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

// NewNoTextError 文本获取失败
func NewNoTextError(resumeID uint64, cause error) error {
	return &ResumeProcessError{
		ResumeID: resumeID,
		Op:       "acquire_text",
		BaseErr:  ErrNoTextExtracted,
		Cause:    cause,
	}
}

// NewPipelineError 提取流程失败
func NewPipelineError(resumeID uint64, detail string, cause error) error {
	return &ResumeProcessError{
		ResumeID: resumeID,
		Op:       "extract",
		BaseErr:  ErrExtractionPipeline,
		Detail:   detail,
		Cause:    cause,
	}
}

// NewPersistenceError 存储调用失败，op 为具体的存储操作名
func NewPersistenceError(resumeID uint64, op string, cause error) error {
	return &ResumeProcessError{
		ResumeID: resumeID,
		Op:       op,
		BaseErr:  ErrPersistence,
		Cause:    cause,
	}
}

// NewBasicFallbackError 基础扫描失败
func NewBasicFallbackError(resumeID uint64, cause error) error {
	return &ResumeProcessError{
		ResumeID: resumeID,
		Op:       "extract_basic",
		BaseErr:  ErrBasicFallback,
		Cause:    cause,
	}
}

// panicError 把recover得到的值转换为error
func panicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
