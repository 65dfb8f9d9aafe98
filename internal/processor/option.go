package processor

import (
	"io"
	"log"
	"time"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithcompPdfextractor 设置PDF提取器组件
func WithcompPdfextractor(extractor PDFExtractor) ComponentOpt {
	return func(c *Components) {
		c.PDFExtractor = extractor
	}
}

// WithcompContentextractor 设置内容提取器组件
func WithcompContentextractor(extractor ContentExtractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = extractor
	}
}

// WithcompContentstore 设置存储组件
func WithcompContentstore(store ContentStore) ComponentOpt {
	return func(c *Components) {
		c.Store = store
	}
}

// ----- 设置选项 -----

// WithsetDebug 设置调试模式
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger *log.Logger) SettingOpt {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		} else {
			s.Logger = log.New(io.Discard, "[ResumeProcessorNilLoggerFallback] ", log.LstdFlags)
		}
	}
}

// WithsetExtracttimeout 设置文本获取的超时时间
func WithsetExtracttimeout(timeout time.Duration) SettingOpt {
	return func(s *Settings) {
		if timeout > 0 {
			s.ExtractTimeout = timeout
		}
	}
}

// WithsetAtomicpersistence 设置是否在单个事务中替换简历内容
func WithsetAtomicpersistence(atomic bool) SettingOpt {
	return func(s *Settings) {
		s.AtomicPersistence = atomic
	}
}

// ----- 日志辅助方法 -----

// logDebug 记录调试级别日志
func (rp *ResumeProcessor) logDebug(format string, args ...interface{}) {
	if rp.Config.Debug && rp.Config.Logger != nil {
		rp.Config.Logger.Printf("[DEBUG] "+format, args...)
	}
}

// logInfo 记录信息级别日志
func (rp *ResumeProcessor) logInfo(format string, args ...interface{}) {
	if rp.Config.Logger != nil {
		rp.Config.Logger.Printf(format, args...)
	}
}

// logWarn 记录警告级别日志
func (rp *ResumeProcessor) logWarn(format string, args ...interface{}) {
	if rp.Config.Logger != nil {
		rp.Config.Logger.Printf("[WARN] "+format, args...)
	}
}

// logError 记录错误级别日志
func (rp *ResumeProcessor) logError(err error, format string, args ...interface{}) {
	if rp.Config.Logger == nil {
		return
	}
	if err != nil {
		rp.Config.Logger.Printf("[ERROR] "+format+": %v", append(args, err)...)
		return
	}
	rp.Config.Logger.Printf("[ERROR] "+format, args...)
}
