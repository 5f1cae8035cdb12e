package config

import (
	"fmt"
	"strings"

	"codeconv/internal/codec"
	"codeconv/pkg/contract"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// 参数文件使用 key=value 形式（properties），键为点分小写。
type Config struct {
	// 文件路径
	InputPath  string
	OutputPath string

	// 文件种类（FILE_A..FILE_F）
	FileID string

	// 字符集名（解析前的原文，便于错误提示）
	SrcSingle string
	SrcDouble string
	DstSingle string
	DstDouble string

	Logging Logging
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string
}

// Resolved: Validate 之后的强类型视图，供装配使用。
type Resolved struct {
	Layout contract.Layout
	Conv   codec.Converter
}

// Validate 校验并解析为强类型。失败统一归为 ErrConfigInvalid。
func (c Config) Validate() (Resolved, error) {
	var r Resolved
	if strings.TrimSpace(c.InputPath) == "" {
		return r, fmt.Errorf("%w: input.file.path is required", contract.ErrConfigInvalid)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return r, fmt.Errorf("%w: output.file.path is required", contract.ErrConfigInvalid)
	}
	layout, err := contract.ParseLayout(c.FileID)
	if err != nil {
		return r, err
	}
	r.Layout = layout
	if r.Conv.SrcSingle, err = codec.Parse(c.SrcSingle); err != nil {
		return r, fmt.Errorf("source.charset.single: %w", err)
	}
	if r.Conv.SrcDouble, err = codec.Parse(c.SrcDouble); err != nil {
		return r, fmt.Errorf("source.charset.double: %w", err)
	}
	if r.Conv.DstSingle, err = codec.Parse(c.DstSingle); err != nil {
		return r, fmt.Errorf("target.charset.single: %w", err)
	}
	if r.Conv.DstDouble, err = codec.Parse(c.DstDouble); err != nil {
		return r, fmt.Errorf("target.charset.double: %w", err)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return r, fmt.Errorf("%w: logging.level %q", contract.ErrConfigInvalid, c.Logging.Level)
	}
	return r, nil
}
