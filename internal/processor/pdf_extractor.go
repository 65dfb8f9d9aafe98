package processor

import (
	"context"
	"fmt"
	"log"
	"time"

	"portfolio-go/internal/config"
	"portfolio-go/internal/parser"
)

// BuildPDFExtractor 根据配置构建文本获取后端
func BuildPDFExtractor(ctx context.Context, cfg *config.Config, loggerProvider func(prefix string) *log.Logger) (PDFExtractor, error) {
	initLogger := loggerProvider("[PDFExtractorInit] ")

	switch cfg.Parser.Backend {
	case parser.BackendTika:
		if cfg.Tika.ServerURL == "" {
			return nil, fmt.Errorf("PDF后端为tika但未配置 tika.server_url")
		}
		initLogger.Printf("使用Tika PDF解析器: %s", cfg.Tika.ServerURL)
		tikaOptions := []parser.TikaOption{
			parser.WithMetadataMode(parser.MetadataMode(cfg.Tika.MetadataMode)),
			parser.WithAnnotations(cfg.Tika.ExtractAnnotations),
			parser.WithTikaLogger(loggerProvider("[TikaPDF] ")),
		}
		if cfg.Tika.Timeout > 0 {
			tikaOptions = append(tikaOptions, parser.WithTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
		}
		return parser.NewTikaPDFExtractor(cfg.Tika.ServerURL, tikaOptions...), nil
	case parser.BackendLedongthuc:
		initLogger.Println("使用纯Go PDF解析器")
		return parser.NewLedongthucPDFExtractor(parser.WithLedongthucLogger(loggerProvider("[NativePDF] "))), nil
	case parser.BackendEino, "":
		initLogger.Println("使用Eino PDF解析器")
		return parser.NewEinoPDFTextExtractor(ctx,
			parser.WithEinoLogger(loggerProvider("[EinoPDF] ")),
			parser.WithEinoTimeout(config.GetDuration(cfg.Parser.ExtractTimeout, 0)),
		)
	default:
		return nil, fmt.Errorf("不支持的PDF后端: %s", cfg.Parser.Backend)
	}
}

// NewProcessorFromConfig 根据配置创建处理器，store 可以为nil
func NewProcessorFromConfig(ctx context.Context, cfg *config.Config, store ContentStore, loggerProvider func(prefix string) *log.Logger) (*ResumeProcessor, error) {
	extractor, err := BuildPDFExtractor(ctx, cfg, loggerProvider)
	if err != nil {
		return nil, err
	}

	var skillScope parser.SkillScope
	if cfg.Parser.SkillScope == "section" {
		skillScope = parser.ScopeSection
	}
	contentExtractor := parser.NewHeuristicExtractor(
		parser.WithSkillScope(skillScope),
		parser.WithHeuristicLogger(loggerProvider("[ResumeExtractor] ")),
	)

	compOpts := []ComponentOpt{
		WithcompPdfextractor(extractor),
		WithcompContentextractor(contentExtractor),
	}
	if store != nil {
		compOpts = append(compOpts, WithcompContentstore(store))
	}
	return CreateProcessor(compOpts, []SettingOpt{
		WithsetDebug(cfg.Parser.Debug),
		WithsetLogger(loggerProvider("[Processor] ")),
		WithsetExtracttimeout(config.GetDuration(cfg.Parser.ExtractTimeout, defaultExtractTimeout)),
		WithsetAtomicpersistence(cfg.Parser.AtomicPersistence),
	})
}
