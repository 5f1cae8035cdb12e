// Package codec 提供三个编码家族（UTF-8 / JIS 单字节+7bit 转义双字节 / EBCDIC
// 混合单双字节）之间的无状态严格变换。分帧与字段选择不在此层。
package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"codeconv/pkg/contract"
)

// Encoding: 受支持的字符编码（闭集）。每个编码恰属一个分类，
// 分类驱动两项横切行为：转义括弧（JIS 转义双字节）与控制字节替换（EBCDIC 参与时）。
type Encoding int

const (
	// UTF8: 可变宽 Unicode。
	UTF8 Encoding = iota
	// JISX0201: JIS 单字节（ASCII 变体：0x5C→¥、0x7E→‾；0xA1–0xDF 半角片假名）。
	JISX0201
	// ISO2022JP: JIS 转义双字节（7bit，ESC $ B / ESC ( B 切换）。
	ISO2022JP
	// Host930: EBCDIC 主机码（IBM-930 系），单双字节混合，SO/SI 切换。
	// 单字节与双字节角色均可使用。
	Host930
)

// Parse 解析编码标识（别名大小写不敏感）。
func Parse(name string) (Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "UTF-8", "UTF8":
		return UTF8, nil
	case "JIS_X0201", "JIS_X_0201", "JISX0201":
		return JISX0201, nil
	case "ISO-2022-JP", "ISO2022JP":
		return ISO2022JP, nil
	case "CP930", "IBM930", "IBM-930", "EBCDIC":
		return Host930, nil
	}
	return 0, fmt.Errorf("%w: unsupported charset %q", contract.ErrConfigInvalid, name)
}

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case JISX0201:
		return "JIS_X0201"
	case ISO2022JP:
		return "ISO-2022-JP"
	case Host930:
		return "CP930"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// IsEBCDIC 报告编码是否属 EBCDIC 分类（控制字节替换的触发条件）。
func (e Encoding) IsEBCDIC() bool { return e == Host930 }

// IsEscapedDouble 报告编码是否属 JIS 转义双字节分类（括弧处理的触发条件）。
func (e Encoding) IsEscapedDouble() bool { return e == ISO2022JP }

// 控制字节：EBCDIC 侧 0xB4 与 JIS/UTF-8 侧 0x74 在原始字节层互换，
// 与具体字符集解码无关。
const (
	controlEBCDIC = byte(0xB4)
	controlJIS    = byte(0x74)
)

// ISO-2022-JP 转义三元组。
var (
	escKanjiIn  = []byte{0x1B, 0x24, 0x42} // ESC $ B
	escKanjiOut = []byte{0x1B, 0x28, 0x42} // ESC ( B
)

// Converter: 一次运行所用的四个编码角色（构造后不可变）。
type Converter struct {
	SrcSingle, DstSingle Encoding
	SrcDouble, DstDouble Encoding
}

// Single 按单字节角色变换。
func (c Converter) Single(b []byte) ([]byte, error) {
	return ConvertSingle(b, c.SrcSingle, c.DstSingle)
}

// Double 按双字节角色变换。
func (c Converter) Double(b []byte) ([]byte, error) {
	return ConvertDouble(b, c.SrcDouble, c.DstDouble)
}

// ConvertSingle 单字节内容变换：
//  1. 恰有一侧为 EBCDIC 时，先在原始字节上做控制字节替换
//     （源 EBCDIC: 0xB4→0x74；目标 EBCDIC: 0x74→0xB4）；
//  2. 按源编码严格解码（畸形/不可映射即 ErrCharConversion）；
//  3. 按目标编码严格编码。
func ConvertSingle(src []byte, from, to Encoding) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	b := src
	if from.IsEBCDIC() != to.IsEBCDIC() {
		if from.IsEBCDIC() {
			b = substituteByte(b, controlEBCDIC, controlJIS)
		} else {
			b = substituteByte(b, controlJIS, controlEBCDIC)
		}
	}
	s, err := decode(b, from)
	if err != nil {
		return nil, err
	}
	return encode(s, to)
}

// ConvertDouble 双字节（漢字）内容变换：
//  1. 源为 JIS 转义双字节时，先补括弧（调用方输入不含括弧）；
//  2. 严格解码、严格编码；
//  3. 目标为 JIS 转义双字节时，剥去结果中的全部转义三元组。
//
// 双字节路径不做控制字节替换。
func ConvertDouble(src []byte, from, to Encoding) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	b := src
	if from.IsEscapedDouble() {
		b = bracketEscapes(b)
	}
	s, err := decode(b, from)
	if err != nil {
		return nil, err
	}
	out, err := encode(s, to)
	if err != nil {
		return nil, err
	}
	if to.IsEscapedDouble() {
		out = stripEscapes(out)
	}
	return out, nil
}

// decode 严格解码为 UTF-8 文本。任何畸形或未定义序列返回 ErrCharConversion。
func decode(b []byte, e Encoding) (string, error) {
	switch e {
	case UTF8:
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: malformed UTF-8 input", contract.ErrCharConversion)
		}
		return string(b), nil
	case JISX0201:
		out, err := JISX0201Encoding.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("%w: %v", contract.ErrCharConversion, err)
		}
		return string(out), nil
	case ISO2022JP:
		out, err := japanese.ISO2022JP.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("%w: %v", contract.ErrCharConversion, err)
		}
		// x/text 解码器以 U+FFFD 替换未定义码位而不报错；
		// 旧字符集无法合法产生 U+FFFD，故其出现即为严格解码失败。
		if strings.ContainsRune(string(out), utf8.RuneError) {
			return "", fmt.Errorf("%w: undefined ISO-2022-JP code point", contract.ErrCharConversion)
		}
		return string(out), nil
	case Host930:
		s, err := hostDecode(b)
		if err != nil {
			return "", fmt.Errorf("%w: %v", contract.ErrCharConversion, err)
		}
		return s, nil
	}
	return "", fmt.Errorf("%w: decode: unknown encoding %v", contract.ErrCharConversion, e)
}

// encode 从 UTF-8 文本严格编码。不可映射字符返回 ErrCharConversion。
func encode(s string, e Encoding) ([]byte, error) {
	switch e {
	case UTF8:
		return []byte(s), nil
	case JISX0201:
		out, err := JISX0201Encoding.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrCharConversion, err)
		}
		return out, nil
	case ISO2022JP:
		out, err := japanese.ISO2022JP.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrCharConversion, err)
		}
		return out, nil
	case Host930:
		out, err := hostEncode(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrCharConversion, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: encode: unknown encoding %v", contract.ErrCharConversion, e)
}

// substituteByte 无条件替换单一字节值（非字符集感知，运行于解码之前）。
func substituteByte(b []byte, from, to byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c == from {
			out[i] = to
		} else {
			out[i] = c
		}
	}
	return out
}

// bracketEscapes 为无括弧的漢字数据补上 ESC $ B … ESC ( B。
func bracketEscapes(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(escKanjiIn)+len(escKanjiOut))
	out = append(out, escKanjiIn...)
	out = append(out, b...)
	out = append(out, escKanjiOut...)
	return out
}

// stripEscapes 剥去全部 ESC $ B 与 ESC ( B 三元组，其余字节原样透传。
func stripEscapes(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		if b[i] == 0x1B && i+2 < len(b) &&
			(b[i+1] == 0x24 || b[i+1] == 0x28) && b[i+2] == 0x42 {
			i += 3
			continue
		}
		out = append(out, b[i])
		i++
	}
	return out
}
