// Package record 实现三个布局家族的记录变换：整文件一括、定长混合的
// 字段选择拼接、变长块的头部重算。核心不变量：输入中的位置次序
// 等于输出中的片段次序（不重排、不增删片段）。
package record

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"codeconv/internal/codec"
	"codeconv/internal/fieldtable"
	"codeconv/internal/framer"
	"codeconv/pkg/contract"
)

// Whole: 整文件家族。无记录拆分，载荷整体走单字节变换。
type Whole struct {
	Conv codec.Converter
}

func (w Whole) Convert(rec []byte) ([]byte, error) {
	return w.Conv.Single(rec)
}

// TableFunc: 数据子类 → 字段区间表（可注入，便于测试）。
type TableFunc func(subtype byte) []contract.FieldSpan

// FixedMixed: 定长混合家族。首单元判定记录种别：
// '1' 头记录整体单字节变换；'2' 数据记录按区间表拼接；其余为致命错误。
type FixedMixed struct {
	Conv      codec.Converter
	RecordLen int
	// CharBased: 源单字节字符集为 UTF-8 时按字符定位与判定。
	CharBased bool
	Table     TableFunc
}

// NewFixedMixed 按布局与编码组构造定长混合变换器（使用静态区间表）。
func NewFixedMixed(layout contract.Layout, conv codec.Converter) *FixedMixed {
	charBased := conv.SrcSingle == codec.UTF8
	return &FixedMixed{
		Conv:      conv,
		RecordLen: layout.RecordLength(),
		CharBased: charBased,
		Table: func(subtype byte) []contract.FieldSpan {
			return fieldtable.Lookup(layout, subtype, charBased)
		},
	}
}

func (f *FixedMixed) Convert(rec []byte) ([]byte, error) {
	if f.CharBased {
		return f.convertChars(rec)
	}
	return f.convertBytes(rec)
}

func (f *FixedMixed) convertBytes(rec []byte) ([]byte, error) {
	if len(rec) != f.RecordLen {
		return nil, fmt.Errorf("%w: record length %d, want %d",
			contract.ErrFraming, len(rec), f.RecordLen)
	}
	switch rec[0] {
	case contract.RecordKindHeader:
		return f.Conv.Single(rec)
	case contract.RecordKindData:
		// 数据子类选区间表；未识别子类得空表，整条回退单字节。
		return f.stitch(rec, f.Table(rec[1]))
	}
	return nil, fmt.Errorf("%w: marker 0x%02X", contract.ErrInvalidRecordType, rec[0])
}

// stitch 左到右走查记录：区间外的空隙走单字节，区间内走双字节，
// 按走查次序拼接片段。
func (f *FixedMixed) stitch(rec []byte, spans []contract.FieldSpan) ([]byte, error) {
	var out bytes.Buffer
	cur := 0
	for _, sp := range spans {
		if cur < sp.Start {
			seg, err := f.Conv.Single(rec[cur:sp.Start])
			if err != nil {
				return nil, err
			}
			out.Write(seg)
		}
		seg, err := f.Conv.Double(rec[sp.Start : sp.End+1])
		if err != nil {
			return nil, err
		}
		out.Write(seg)
		cur = sp.End + 1
	}
	if cur < len(rec) {
		seg, err := f.Conv.Single(rec[cur:])
		if err != nil {
			return nil, err
		}
		out.Write(seg)
	}
	return out.Bytes(), nil
}

// convertChars 以字符定位处理 UTF-8 源记录。
// 注意：数据记录经 []rune 转换后畸形字节成为 U+FFFD 并原样传递，
// 不报 ErrCharConversion；头记录整体走 Single，对原始字节严格校验。
// 该不对称保持与既有输入的兼容。
func (f *FixedMixed) convertChars(rec []byte) ([]byte, error) {
	runes := []rune(string(rec))
	if len(runes) < 1 {
		return nil, fmt.Errorf("%w: empty record", contract.ErrFraming)
	}
	switch {
	case runes[0] == rune(contract.RecordKindHeader):
		return f.Conv.Single(rec)
	case runes[0] == rune(contract.RecordKindData):
		subtype := byte('1')
		if len(runes) >= 2 {
			subtype = byte(runes[1])
		}
		return f.stitchChars(runes, f.Table(subtype))
	}
	return nil, fmt.Errorf("%w: marker %q", contract.ErrInvalidRecordType, runes[0])
}

// stitchChars 与 stitch 相同的走查，但以字符位置定界；
// 区间终点越过记录尾时收拢到记录尾。
func (f *FixedMixed) stitchChars(runes []rune, spans []contract.FieldSpan) ([]byte, error) {
	var out bytes.Buffer
	cur := 0
	for _, sp := range spans {
		if cur < sp.Start {
			seg, err := f.Conv.Single([]byte(string(runes[cur:sp.Start])))
			if err != nil {
				return nil, err
			}
			out.Write(seg)
		}
		end := sp.Start + sp.Count
		if end > len(runes) {
			end = len(runes)
		}
		seg, err := f.Conv.Double([]byte(string(runes[sp.Start:end])))
		if err != nil {
			return nil, err
		}
		out.Write(seg)
		cur = end
	}
	if cur < len(runes) {
		seg, err := f.Conv.Single([]byte(string(runes[cur:])))
		if err != nil {
			return nil, err
		}
		out.Write(seg)
	}
	return out.Bytes(), nil
}

// VarBlock: 变长块家族。8 字节头（块长、记录长，均大端 u32）之后为载荷；
// 载荷走单字节变换（含控制字节替换），头部按变换后长度重算——
// 原头部的取值不向后传播（变换后长度通常与源不同）。
type VarBlock struct {
	Conv codec.Converter
}

func (v VarBlock) Convert(rec []byte) ([]byte, error) {
	if len(rec) < 8 {
		return nil, fmt.Errorf("%w: variable block must be at least 8 bytes, got %d",
			contract.ErrFraming, len(rec))
	}
	if declared := binary.BigEndian.Uint32(rec[0:4]); int(declared) != len(rec) {
		return nil, fmt.Errorf("%w: declared block length %d != physical %d",
			contract.ErrFraming, declared, len(rec))
	}
	payload, err := v.Conv.Single(rec[8:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 8+len(payload))
	out = append(out, framer.Uint32BE(uint32(8+len(payload)))...)
	out = append(out, framer.Uint32BE(uint32(4+len(payload)))...)
	out = append(out, payload...)
	return out, nil
}
