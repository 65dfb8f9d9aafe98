// resumeparse 在本地对单个简历文件运行完整的分层解析，不依赖数据库和对象存储。
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"portfolio-go/internal/config"
	"portfolio-go/internal/export"
	"portfolio-go/internal/logger"
	"portfolio-go/internal/parser"
	"portfolio-go/internal/processor"
	"portfolio-go/internal/types"
)

var (
	inputFile  = pflag.StringP("file", "f", "", "简历文件路径 (必填)")
	configPath = pflag.StringP("config", "c", "", "配置文件路径，留空时使用默认配置")
	backend    = pflag.String("backend", "", "PDF后端: eino, tika, ledongthuc，覆盖配置文件")
	plainText  = pflag.Bool("text", false, "输入文件已经是纯文本，跳过PDF解析")
	xlsxOut    = pflag.String("xlsx", "", "把解析结果导出为XLSX文件")
	debug      = pflag.Bool("debug", false, "输出调试日志")
)

func main() {
	pflag.Parse()

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须提供简历文件路径 (-f)")
		pflag.Usage()
		os.Exit(1)
	}

	level := "warn"
	if *debug {
		level = "debug"
	}
	logger.InitWithWriter(logger.Config{Level: level, Format: "pretty", TimeFormat: "15:04:05"}, os.Stderr)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}
	if *backend != "" {
		cfg.Parser.Backend = *backend
	}
	cfg.Parser.Debug = cfg.Parser.Debug || *debug

	absPath, err := filepath.Abs(*inputFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("无法获取文件的绝对路径")
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", absPath).Msg("读取文件失败")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rp, err := newProcessor(ctx, cfg, *plainText)
	if err != nil {
		logger.Fatal().Err(err).Msg("创建简历处理器失败")
	}

	start := time.Now()
	tiered := rp.ParseResume(ctx, data, 0)
	logger.Info().
		Str("tier", tiered.Tier.String()).
		Bool("synthetic", tiered.IsSynthetic()).
		Dur("elapsed", time.Since(start)).
		Msg("解析完成")

	if err := printResult(tiered); err != nil {
		logger.Fatal().Err(err).Msg("输出结果失败")
	}

	if *xlsxOut != "" {
		if err := writeXLSX(*xlsxOut, tiered.Result); err != nil {
			logger.Fatal().Err(err).Str("file", *xlsxOut).Msg("导出XLSX失败")
		}
		fmt.Fprintf(os.Stderr, "已导出: %s\n", *xlsxOut)
	}
}

func newProcessor(ctx context.Context, cfg *config.Config, plain bool) (*processor.ResumeProcessor, error) {
	if plain {
		// 纯文本输入不需要外部服务
		cfg.Parser.Backend = parser.BackendLedongthuc
	}
	rp, err := processor.NewProcessorFromConfig(ctx, cfg, processor.NopContentStore{}, logger.NewStdLogger)
	if err != nil {
		return nil, err
	}
	if plain {
		rp.PDFExtractor = plainTextExtractor{}
	}
	return rp, nil
}

// cliOutput 在 TieredResult 之外补充层级名称和错误文本
type cliOutput struct {
	*types.TieredResult
	TierName  string `json:"tierName"`
	Synthetic bool   `json:"synthetic"`
	Error     string `json:"error,omitempty"`
}

func printResult(tiered *types.TieredResult) error {
	out := cliOutput{TieredResult: tiered, TierName: tiered.Tier.String(), Synthetic: tiered.IsSynthetic()}
	if tiered.Err != nil {
		out.Error = tiered.Err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeXLSX(path string, result *types.ParseResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
