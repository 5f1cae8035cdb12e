// Package framer 实现三种分帧纪律：定长字节、定长字符（仅 UTF-8 源）、
// 长度前缀变长块；另提供整文件读取与大端 32 位长度字段的组装。
// 约定：恰在记录边界处的流尾返回 io.EOF；任何半截读取返回 ErrFraming。
package framer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"codeconv/pkg/contract"
)

// Fixed 按固定字节数分帧。
type Fixed struct {
	Length int
}

func (f Fixed) Next(r io.Reader) ([]byte, error) {
	rec := make([]byte, f.Length)
	n, err := io.ReadFull(r, rec)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: incomplete record: expected %d bytes, got %d",
			contract.ErrFraming, f.Length, n)
	}
	return rec, nil
}

// FixedChars 按固定字符数分帧（UTF-8 源）。每个字符的字节宽度由首字节
// 高位判定：0xxxxxxx→1、110xxxxx→2、1110xxxx→3、11110xxx→4；
// 其他首字节模式为致命编码错误；流尾处的半截多字节序列为分帧错误而非 EOF。
type FixedChars struct {
	Count int
}

func (f FixedChars) Next(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	one := make([]byte, 1)
	for read := 0; read < f.Count; read++ {
		if _, err := io.ReadFull(r, one); err != nil {
			if err == io.EOF && read == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: unexpected EOF: expected %d characters, got %d",
				contract.ErrFraming, f.Count, read)
		}
		width, err := utf8Width(one[0])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(one[0])
		for i := 1; i < width; i++ {
			if _, err := io.ReadFull(r, one); err != nil {
				return nil, fmt.Errorf("%w: incomplete UTF-8 character at position %d",
					contract.ErrFraming, read)
			}
			buf.WriteByte(one[0])
		}
	}
	return buf.Bytes(), nil
}

func utf8Width(lead byte) (int, error) {
	switch {
	case lead&0x80 == 0x00:
		return 1, nil
	case lead&0xE0 == 0xC0:
		return 2, nil
	case lead&0xF0 == 0xE0:
		return 3, nil
	case lead&0xF8 == 0xF0:
		return 4, nil
	}
	return 0, fmt.Errorf("%w: invalid UTF-8 lead byte 0x%02X", contract.ErrCharConversion, lead)
}

// Variable 按长度前缀变长块分帧。块结构（大端）：
// 0..3 块长（含自身）、4..7 记录长、8.. 载荷。返回完整块（含长度字段）。
type Variable struct{}

func (Variable) Next(r io.Reader) ([]byte, error) {
	head := make([]byte, 4)
	n, err := io.ReadFull(r, head)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: incomplete block length: expected 4 bytes, got %d",
			contract.ErrFraming, n)
	}
	blockLen := binary.BigEndian.Uint32(head)
	if blockLen < 8 {
		return nil, fmt.Errorf("%w: declared block length %d < 8", contract.ErrFraming, blockLen)
	}
	rest := make([]byte, blockLen-4)
	if n, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("%w: incomplete block: expected %d bytes, got %d",
			contract.ErrFraming, len(rest), n)
	}
	return append(head, rest...), nil
}

// Whole 将整个流作为单一记录读出（整文件家族）。第二次调用返回 io.EOF。
type Whole struct {
	done bool
}

func (w *Whole) Next(r io.Reader) ([]byte, error) {
	if w.done {
		return nil, io.EOF
	}
	w.done = true
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrFraming, err)
	}
	return b, nil
}

// Uint32BE 组装大端 32 位长度字段（变换后重算块长/记录长时使用）。
func Uint32BE(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
