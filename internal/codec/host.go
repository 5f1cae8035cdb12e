package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// 主机码（IBM-930 系 EBCDIC）编解码。
//
// 单字节面为片假名系 EBCDIC：CP037 骨架上，重音拉丁与小写字母槽位
// 让位给半角片假名（无小写字母，这是假名 EBCDIC 的常态）。
// 双字节面经 SO(0x0E)/SI(0x0F) 切换，码点为 JIS X 0208 两字节各 +0x80
// （JEF 兼容布局）；漢字字集委托 x/text 的 ISO-2022-JP 表完成映射。

const (
	hostShiftOut = byte(0x0E) // 进入双字节面
	hostShiftIn  = byte(0x0F) // 回到单字节面
)

var (
	errHostUndefined  = errors.New("codec: undefined host byte")
	errHostShift      = errors.New("codec: unterminated or odd DBCS run")
	errHostDBCSRange  = errors.New("codec: DBCS byte out of range")
	errHostRepertoire = errors.New("codec: rune not in host repertoire")
)

// hostE2U: 单字节面 → Unicode。0xFFFD 表示未定义槽位。
// 0x0E/0x0F 为 SO/SI，解码路径先于查表拦截。
var hostE2U = [256]rune{
	0x0000, 0x0001, 0x0002, 0x0003, 0x009C, 0x0009, 0x0086, 0x007F, // 0x00
	0x0097, 0x008D, 0x008E, 0x000B, 0x000C, 0x000D, 0x000E, 0x000F,
	0x0010, 0x0011, 0x0012, 0x0013, 0x009D, 0x0085, 0x0008, 0x0087, // 0x10
	0x0018, 0x0019, 0x0092, 0x008F, 0x001C, 0x001D, 0x001E, 0x001F,
	0x0080, 0x0081, 0x0082, 0x0083, 0x0084, 0x000A, 0x0017, 0x001B, // 0x20
	0x0088, 0x0089, 0x008A, 0x008B, 0x008C, 0x0005, 0x0006, 0x0007,
	0x0090, 0x0091, 0x0016, 0x0093, 0x0094, 0x0095, 0x0096, 0x0004, // 0x30
	0x0098, 0x0099, 0x009A, 0x009B, 0x0014, 0x0015, 0x009E, 0x001A,
	0x0020, 0xFF61, 0xFF62, 0xFF63, 0xFF64, 0xFF65, 0xFF66, 0xFF67, // 0x40
	0xFF68, 0xFF69, 0x00A2, 0x002E, 0x003C, 0x0028, 0x002B, 0x007C,
	0x0026, 0xFF6A, 0xFF6B, 0xFF6C, 0xFF6D, 0xFF6E, 0xFF6F, 0xFF70, // 0x50
	0xFF71, 0xFF72, 0x0021, 0x0024, 0x002A, 0x0029, 0x003B, 0x00AC,
	0x002D, 0x002F, 0xFF73, 0xFF74, 0xFF75, 0xFF76, 0xFF77, 0xFF78, // 0x60
	0xFF79, 0xFF7A, 0x00A6, 0x002C, 0x0025, 0x005F, 0x003E, 0x003F,
	0xFFFD, 0xFF7B, 0xFF7C, 0xFF7D, 0xFF7E, 0xFF7F, 0xFF80, 0xFF81, // 0x70
	0xFF82, 0xFF83, 0x003A, 0x0023, 0x0040, 0x0027, 0x003D, 0x0022,
	0xFFFD, 0xFF84, 0xFF85, 0xFF86, 0xFF87, 0xFF88, 0xFF89, 0xFF8A, // 0x80
	0xFF8B, 0xFF8C, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD,
	0xFFFD, 0xFF8D, 0xFF8E, 0xFF8F, 0xFF90, 0xFF91, 0xFF92, 0xFF93, // 0x90
	0xFF94, 0xFF95, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD,
	0xFFFD, 0x203E, 0xFF96, 0xFF97, 0xFF98, 0xFF99, 0xFF9A, 0xFF9B, // 0xA0
	0xFF9C, 0xFF9D, 0xFF9E, 0xFF9F, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD,
	0x005E, 0x00A3, 0x00A5, 0x00B7, 0x00A9, 0x00A7, 0x00B6, 0xFFFD, // 0xB0
	0xFFFD, 0xFFFD, 0x005B, 0x005D, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD,
	0x007B, 0x0041, 0x0042, 0x0043, 0x0044, 0x0045, 0x0046, 0x0047, // 0xC0
	0x0048, 0x0049, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD,
	0x007D, 0x004A, 0x004B, 0x004C, 0x004D, 0x004E, 0x004F, 0x0050, // 0xD0
	0x0051, 0x0052, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD,
	0x005C, 0xFFFD, 0x0053, 0x0054, 0x0055, 0x0056, 0x0057, 0x0058, // 0xE0
	0x0059, 0x005A, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD,
	0x0030, 0x0031, 0x0032, 0x0033, 0x0034, 0x0035, 0x0036, 0x0037, // 0xF0
	0x0038, 0x0039, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD, 0x009F,
}

// hostU2E: Unicode → 单字节面（由 hostE2U 反转；SO/SI 与未定义槽位除外）。
var hostU2E = func() map[rune]byte {
	m := make(map[rune]byte, 256)
	for i, r := range hostE2U {
		b := byte(i)
		if r == 0xFFFD || b == hostShiftOut || b == hostShiftIn {
			continue
		}
		m[r] = b
	}
	return m
}()

// hostDecode 解码混合单双字节的主机码字节序列。
func hostDecode(b []byte) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(b); {
		c := b[i]
		if c == hostShiftOut {
			j := i + 1
			for j < len(b) && b[j] != hostShiftIn {
				j++
			}
			if j >= len(b) {
				return "", errHostShift
			}
			run := b[i+1 : j]
			if len(run)%2 != 0 {
				return "", errHostShift
			}
			s, err := hostDecodeDBCS(run)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
			i = j + 1
			continue
		}
		r := hostE2U[c]
		if r == 0xFFFD {
			return "", fmt.Errorf("%w: 0x%02X at offset %d", errHostUndefined, c, i)
		}
		sb.WriteRune(r)
		i++
	}
	return sb.String(), nil
}

// hostDecodeDBCS 解码一段 DBCS（不含 SO/SI）：各字节 -0x80 还原为
// JIS X 0208 码，补括弧后交给 ISO-2022-JP 解码器。
func hostDecodeDBCS(run []byte) (string, error) {
	seg := make([]byte, len(run))
	for k, v := range run {
		if v < 0xA1 || v > 0xFE {
			return "", fmt.Errorf("%w: 0x%02X", errHostDBCSRange, v)
		}
		seg[k] = v - 0x80
	}
	out, err := japanese.ISO2022JP.NewDecoder().Bytes(bracketEscapes(seg))
	if err != nil {
		return "", err
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("%w: no JIS X 0208 mapping", errHostDBCSRange)
	}
	return string(out), nil
}

// hostEncode 编码为混合单双字节的主机码字节序列。
// 单字节面命中者查表直出；连续未命中的字符整段走 DBCS。
func hostEncode(s string) ([]byte, error) {
	var out bytes.Buffer
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if b, ok := hostU2E[runes[i]]; ok {
			out.WriteByte(b)
			i++
			continue
		}
		j := i + 1
		for j < len(runes) {
			if _, ok := hostU2E[runes[j]]; ok {
				break
			}
			j++
		}
		seg, err := hostEncodeDBCS(string(runes[i:j]))
		if err != nil {
			return nil, err
		}
		out.WriteByte(hostShiftOut)
		out.Write(seg)
		out.WriteByte(hostShiftIn)
		i = j
	}
	return out.Bytes(), nil
}

// hostEncodeDBCS 经 ISO-2022-JP 编码取得 JIS X 0208 码，再各字节 +0x80。
// 编码器若未进入漢字面（输出不以 ESC $ B 开头），说明字符不属双字节面。
func hostEncodeDBCS(s string) ([]byte, error) {
	enc, err := japanese.ISO2022JP.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(enc, escKanjiIn) {
		return nil, fmt.Errorf("%w: %q", errHostRepertoire, s)
	}
	body := stripEscapes(enc)
	if len(body)%2 != 0 {
		return nil, fmt.Errorf("%w: %q", errHostRepertoire, s)
	}
	seg := make([]byte, len(body))
	for k, v := range body {
		if v < 0x21 || v > 0x7E {
			return nil, fmt.Errorf("%w: %q", errHostRepertoire, s)
		}
		seg[k] = v + 0x80
	}
	return seg, nil
}
