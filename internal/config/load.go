package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"codeconv/pkg/contract"
)

// Defaults 返回带有安全默认值的 Config 雏形。
// 注意：路径与字符集不设默认（必须由参数文件/ENV/CLI 提供）。
func Defaults() Config {
	return Config{
		Logging: Logging{Level: "info"},
	}
}

// 参数文件键集合。未知键在解析期失败。
const (
	keyInputPath  = "input.file.path"
	keyOutputPath = "output.file.path"
	keyFileID     = "file.id"
	keySrcSingle  = "source.charset.single"
	keySrcDouble  = "source.charset.double"
	keyDstSingle  = "target.charset.single"
	keyDstDouble  = "target.charset.double"
	keyLogLevel   = "logging.level"
)

// LoadProperties 从文件路径或原始字节解析参数文件。
// 格式：每行 key=value；'#' 或 '!' 开头为注释；空行忽略；键值两侧空白剔除。
func LoadProperties(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, fmt.Errorf("%w: no parameter source provided", contract.ErrConfigInvalid)
	}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || text[0] == '!' {
			continue
		}
		eq := strings.IndexByte(text, '=')
		if eq <= 0 {
			return cfg, fmt.Errorf("%w: line %d: expected key=value", contract.ErrConfigInvalid, line)
		}
		key := strings.TrimSpace(text[:eq])
		val := strings.TrimSpace(text[eq+1:])
		if err := cfg.set(key, val); err != nil {
			return cfg, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) set(key, val string) error {
	switch key {
	case keyInputPath:
		c.InputPath = val
	case keyOutputPath:
		c.OutputPath = val
	case keyFileID:
		c.FileID = val
	case keySrcSingle:
		c.SrcSingle = val
	case keySrcDouble:
		c.SrcDouble = val
	case keyDstSingle:
		c.DstSingle = val
	case keyDstDouble:
		c.DstDouble = val
	case keyLogLevel:
		c.Logging.Level = strings.ToLower(val)
	default:
		return fmt.Errorf("%w: unknown key %q", contract.ErrConfigInvalid, key)
	}
	return nil
}

// Merge 按优先级合并（后者覆盖前者）。空值不覆盖。
func Merge(base, over Config) Config {
	out := base
	if over.InputPath != "" {
		out.InputPath = over.InputPath
	}
	if over.OutputPath != "" {
		out.OutputPath = over.OutputPath
	}
	if over.FileID != "" {
		out.FileID = over.FileID
	}
	if over.SrcSingle != "" {
		out.SrcSingle = over.SrcSingle
	}
	if over.SrcDouble != "" {
		out.SrcDouble = over.SrcDouble
	}
	if over.DstSingle != "" {
		out.DstSingle = over.DstSingle
	}
	if over.DstDouble != "" {
		out.DstDouble = over.DstDouble
	}
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 CODECONV_；集合之外的键忽略。
func EnvOverlay(environ []string) Config {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "CODECONV_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("CODECONV_") {
			continue
		}
		val := strings.TrimSpace(kv[eq+1:])
		switch strings.TrimPrefix(kv[:eq], "CODECONV_") {
		case "INPUT":
			over.InputPath = val
		case "OUTPUT":
			over.OutputPath = val
		case "FILE_ID":
			over.FileID = val
		case "SRC_SINGLE":
			over.SrcSingle = val
		case "SRC_DOUBLE":
			over.SrcDouble = val
		case "DST_SINGLE":
			over.DstSingle = val
		case "DST_DOUBLE":
			over.DstDouble = val
		case "LOG_LEVEL":
			over.Logging.Level = strings.ToLower(val)
		}
	}
	return over
}
