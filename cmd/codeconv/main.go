package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	cfgpkg "codeconv/internal/config"
	"codeconv/internal/diag"
	"codeconv/internal/pipeline"
	"codeconv/pkg/contract"
)

var pipelineRun = pipeline.Run

// 退出码：
//
//	0  正常終了
//	2  パラメータ不正（参数文件/布局/字符集）
//	3  変換エラー（分帧/字符变换/记录种别）
//	99 予期せぬエラー（IO 等）
const (
	exitOK         = 0
	exitParamError = 2
	exitConvError  = 3
	exitUnexpected = 99
)

// 简化的 CLI：单一动作，位置参数为参数文件路径。
// 旗标（最小集）覆盖参数文件中的同名键。
func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	start := time.Now()
	corrID := genCorrID()
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	// 先占位默认 level，解析/合并配置后重建 logger 以使用最终 level
	logger := diag.NewLogger(corrID, "info")

	fs := flag.NewFlagSet("codeconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagInput     string
		flagOutput    string
		flagFileID    string
		flagSrcSingle string
		flagSrcDouble string
		flagDstSingle string
		flagDstDouble string
		flagLogLevel  string
	)
	fs.StringVar(&flagInput, "input", "", "入力ファイルパス（覆盖参数文件）")
	fs.StringVar(&flagOutput, "output", "", "出力ファイルパス（覆盖参数文件）")
	fs.StringVar(&flagFileID, "file-id", "", "ファイル種別 FILE_A..FILE_F（覆盖参数文件）")
	fs.StringVar(&flagSrcSingle, "src-single", "", "変換元シングルバイト文字集合（覆盖参数文件）")
	fs.StringVar(&flagSrcDouble, "src-double", "", "変換元ダブルバイト文字集合（覆盖参数文件）")
	fs.StringVar(&flagDstSingle, "dst-single", "", "変換先シングルバイト文字集合（覆盖参数文件）")
	fs.StringVar(&flagDstDouble, "dst-double", "", "変換先ダブルバイト文字集合（覆盖参数文件）")
	fs.StringVar(&flagLogLevel, "log-level", "", "日志级别 debug|info|warn|error（覆盖参数文件）")
	if err := fs.Parse(args); err != nil {
		return exitParamError
	}

	// 参数文件路径（位置参数；缺省读取 ENV: CODECONV_PARAMS）
	paramPath := ""
	if rest := fs.Args(); len(rest) > 0 {
		if len(rest) > 1 {
			fprintf(stderr, "引数が多すぎます: %v\n", rest[1:])
			return exitParamError
		}
		paramPath = rest[0]
	}
	if paramPath == "" {
		paramPath = os.Getenv("CODECONV_PARAMS")
	}

	cfg := cfgpkg.Defaults()
	if paramPath != "" {
		base, err := cfgpkg.LoadProperties(paramPath, nil)
		if err != nil {
			fprintf(stderr, "パラメータ解析失敗: %v\n", err)
			logger.Error("config", string(diag.Classify(err)), "load failed", &start)
			if errors.Is(err, contract.ErrConfigInvalid) {
				return exitParamError
			}
			return exitUnexpected
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	// ENV 覆盖（最小集合）
	cfg = cfgpkg.Merge(cfg, cfgpkg.EnvOverlay(os.Environ()))

	// CLI 覆盖
	cfg = cfgpkg.Merge(cfg, cfgpkg.Config{
		InputPath:  flagInput,
		OutputPath: flagOutput,
		FileID:     flagFileID,
		SrcSingle:  flagSrcSingle,
		SrcDouble:  flagSrcDouble,
		DstSingle:  flagDstSingle,
		DstDouble:  flagDstDouble,
		Logging:    cfgpkg.Logging{Level: flagLogLevel},
	})

	// 校验 & 强类型解析
	resolved, err := cfg.Validate()
	if err != nil {
		fprintf(stderr, "パラメータ検証失敗: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), "validate failed", &start)
		return exitParamError
	}

	// 使用最终配置中的日志级别重建 logger
	if strings.TrimSpace(cfg.Logging.Level) != "" {
		logger = diag.NewLogger(corrID, cfg.Logging.Level)
	}

	// 预检：输出目录可写性
	if err := preflightOutputDir(cfg.OutputPath); err != nil {
		fprintf(stderr, "出力先に書き込めません: %v\n", err)
		logger.Error("config", string(diag.CodeIO), "output dir not writable", &start)
		return exitUnexpected
	}

	comp, err := pipeline.Assemble(resolved.Layout, resolved.Conv)
	if err != nil {
		fprintf(stderr, "装配失败: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), "assemble failed", &start)
		return exitParamError
	}

	in, err := os.Open(cfg.InputPath)
	if err != nil {
		fprintf(stderr, "入力ファイルを開けません: %v\n", err)
		logger.Error("pipeline", string(diag.Classify(err)), "open input failed", &start)
		return exitUnexpected
	}
	defer in.Close()

	out, err := os.Create(cfg.OutputPath)
	if err != nil {
		fprintf(stderr, "出力ファイルを作成できません: %v\n", err)
		logger.Error("pipeline", string(diag.Classify(err)), "create output failed", &start)
		return exitUnexpected
	}

	logger.DebugStart("config", "effective", cfg.FileID, "", map[string]string{
		"input":      cfg.InputPath,
		"output":     cfg.OutputPath,
		"src_single": cfg.SrcSingle,
		"src_double": cfg.SrcDouble,
		"dst_single": cfg.DstSingle,
		"dst_double": cfg.DstDouble,
	})

	// 运行流水线
	res, runErr := pipelineRun(context.Background(), comp, pipeline.Settings{FileID: cfg.FileID},
		bufio.NewReader(in), out, logger)
	if cerr := out.Close(); runErr == nil && cerr != nil {
		runErr = cerr
	}
	if runErr != nil {
		code := string(diag.Classify(runErr))
		logger.ErrorWith("pipeline", code, "first error", &start, cfg.FileID,
			fmt.Sprintf("%d", res.FailedRecord))
		diag.IncOp("pipeline", "error", "error")
		fprintf(stderr, "変換失敗 (record %d): %v\n", res.FailedRecord, runErr)
		return exitCode(runErr)
	}
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	fprintf(stderr, "変換完了: %d records, %d -> %d bytes\n", res.Records, res.BytesIn, res.BytesOut)
	return exitOK
}

// exitCode 将运行期错误映射为进程退出码。
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, contract.ErrConfigInvalid):
		return exitParamError
	case errors.Is(err, contract.ErrFraming),
		errors.Is(err, contract.ErrCharConversion),
		errors.Is(err, contract.ErrInvalidRecordType),
		errors.Is(err, contract.ErrInvalidFieldSpan):
		return exitConvError
	default:
		return exitUnexpected
	}
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// preflightOutputDir: 启动前检查输出文件所在目录的可写性。
// 目录存在时尝试创建并删除临时文件；不存在时直接报错（不隐式建目录）。
func preflightOutputDir(path string) error {
	dir := filepath.Dir(path)
	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("パスはディレクトリではありません: %s", dir)
	}
	f, err := os.CreateTemp(dir, ".wcheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境。
// 规则：
// - 忽略不存在的文件；无法读取时返回错误（但调用处可忽略）。
// - 跳过空行与以 # 开头的行；支持可选的前缀 "export ".
// - 仅按首个 '=' 分割；不覆盖已存在的环境变量。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" {
			continue
		}
		if len(val) >= 2 {
			if (val[0] == '\'' && val[len(val)-1] == '\'') || (val[0] == '"' && val[len(val)-1] == '"') {
				val = val[1 : len(val)-1]
			}
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}
