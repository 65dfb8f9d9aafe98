package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"portfolio-go/internal/api/handler"
	"portfolio-go/internal/api/router"
	"portfolio-go/internal/cache"
	"portfolio-go/internal/config"
	appLogger "portfolio-go/internal/logger"
	"portfolio-go/internal/outbox"
	"portfolio-go/internal/processor"
	"portfolio-go/internal/storage"
	"portfolio-go/internal/tracing"
)

var (
	version     = "1.0.0"        //nolint:gochecknoglobals
	serviceName = "portfolio-go" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file, searches ./config.yaml when empty")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// 日志尚未初始化
		glog.Fatalf("加载配置失败: %v", err)
	}
	initLogger(cfg.Logger)
	glog.Infof("配置加载成功, 版本: %s", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = serviceName
	}
	shutdownTracing, err := tracing.InitTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	if storageManager.MinIO == nil {
		glog.Fatal("未配置MinIO, 无法保存简历文件")
	}

	responseCache, err := cache.New(cfg.Cache, storageManager.Redis)
	if err != nil {
		glog.Fatalf("初始化响应缓存失败: %v", err)
	}

	resumeProcessor, err := processor.NewProcessorFromConfig(ctx, cfg, storageManager.MySQL, appLogger.NewStdLogger)
	if err != nil {
		glog.Fatalf("初始化简历处理器失败: %v", err)
	}
	glog.Infof("简历处理器初始化成功, PDF后端: %s", backendName(cfg.Parser.Backend))

	// *storage.Redis 为nil时不能直接赋给接口
	var locker handler.UploadLocker
	if storageManager.Redis != nil {
		locker = storageManager.Redis
	}
	resumeHandler := handler.NewResumeHandler(cfg, storageManager.MySQL, storageManager.MinIO, resumeProcessor, responseCache, locker)

	var messageRelay *outbox.MessageRelay
	var stopConsumer func()
	if storageManager.RabbitMQ != nil {
		messageRelay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ, &cfg.RabbitMQ, appLogger.NewStdLogger("[MessageRelay] "))
		messageRelay.Start()
		glog.Info("消息中继服务已启动")

		if cfg.RabbitMQ.ParsedQueue != "" {
			stopConsumer, err = storageManager.RabbitMQ.StartConsumer(cfg.RabbitMQ.ParsedQueue, 10, parsedEventHandler(responseCache))
			if err != nil {
				glog.Warnf("启动 resume.parsed 消费者失败: %v", err)
			}
		}
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(maxBodySize(cfg.Server.MaxUploadMB)),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, resumeHandler, cfg)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	if stopConsumer != nil {
		stopConsumer()
	}
	if messageRelay != nil {
		messageRelay.Stop()
		glog.Info("消息中继服务已停止")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Warnf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func initLogger(cfg config.LoggerConfig) {
	appLogger.Init(appLogger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		TimeFormat:   cfg.TimeFormat,
		ReportCaller: cfg.ReportCaller,
	})

	// Hertz 的 glog 与应用共用同一个 zerolog 实例
	glog.SetLogger(hertzadapter.From(appLogger.Logger))
	glog.SetLevel(hlogLevel(appLogger.Logger.GetLevel()))
}

func hlogLevel(level zerolog.Level) glog.Level {
	switch level {
	case zerolog.TraceLevel:
		return glog.LevelTrace
	case zerolog.DebugLevel:
		return glog.LevelDebug
	case zerolog.WarnLevel:
		return glog.LevelWarn
	case zerolog.ErrorLevel:
		return glog.LevelError
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return glog.LevelFatal
	default:
		return glog.LevelInfo
	}
}

// parsedEventHandler 其他实例解析完成后清空本实例的响应缓存
func parsedEventHandler(responseCache cache.Cache) func([]byte) bool {
	return func(body []byte) bool {
		var event storage.ResumeParsedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			// 格式错误的消息重新入队也无法处理
			appLogger.Warn().Err(err).Msg("丢弃无法解析的 resume.parsed 事件")
			return true
		}
		responseCache.Clear(context.Background())
		appLogger.Info().
			Uint64("resume_id", event.ResumeID).
			Str("tier", event.Tier).
			Msg("收到 resume.parsed 事件, 已清空响应缓存")
		return true
	}
}

// maxBodySize 为multipart编码预留1MB
func maxBodySize(maxUploadMB int) int {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return (maxUploadMB + 1) << 20
}

func backendName(backend string) string {
	if backend == "" {
		return "eino"
	}
	return backend
}
