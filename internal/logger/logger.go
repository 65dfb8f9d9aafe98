package logger // 全局 zerolog 日志记录器以及给 *log.Logger 组件使用的桥接

import (
	"context"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger 默认的全局日志实例，应用中其他地方可以直接使用
	Logger = log.Logger
)

// Config 日志配置结构体
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // 日志级别：debug, info, warn, error等
	Format       string `json:"format" yaml:"format"`               // json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳的格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否在日志中报告调用者的文件名和行号
}

// Init 初始化日志系统
func Init(config Config) {
	InitWithWriter(config, os.Stdout)
}

// InitWithWriter 与 Init 相同，但输出到指定的 writer
func InitWithWriter(config Config, out io.Writer) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := out
	if config.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: config.TimeFormat,
			NoColor:    false,
		}
	}

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	contextLogger := zerolog.New(output).
		Level(level).
		With().
		Timestamp()

	if config.ReportCaller {
		contextLogger = contextLogger.Caller()
	}

	Logger = contextLogger.Logger()
	log.Logger = Logger
}

// Debug 开始一条调试级别的日志事件
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 开始一条信息级别的日志事件
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 开始一条警告级别的日志事件
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 开始一条错误级别的日志事件
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 开始一条致命错误级别的日志事件，记录后程序将退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中获取日志记录器，上下文中没有时返回全局 Logger
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &Logger
}

// WithContext 将全局日志记录器添加到上下文中
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}

// componentWriter 把标准库 logger 的输出转成 zerolog 事件。
// 以 [DEBUG]/[WARN]/[ERROR] 开头的消息映射到对应级别。
type componentWriter struct {
	component string
}

func (w componentWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	event := Logger.Info()
	switch {
	case strings.Contains(msg, "[DEBUG] "):
		event = Logger.Debug()
		msg = strings.Replace(msg, "[DEBUG] ", "", 1)
	case strings.Contains(msg, "[WARN] "):
		event = Logger.Warn()
		msg = strings.Replace(msg, "[WARN] ", "", 1)
	case strings.Contains(msg, "[ERROR] "):
		event = Logger.Error()
		msg = strings.Replace(msg, "[ERROR] ", "", 1)
	}
	event.Str("component", w.component).Msg(msg)
	return len(p), nil
}

// NewStdLogger 创建写入全局 zerolog 的 *log.Logger，供只接受标准库 logger 的组件使用。
// prefix 形如 "[Processor] "，去掉方括号后作为 component 字段。
func NewStdLogger(prefix string) *stdlog.Logger {
	component := strings.Trim(strings.TrimSpace(prefix), "[]")
	return stdlog.New(componentWriter{component: component}, "", 0)
}
