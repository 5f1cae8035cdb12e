package codec

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// JISX0201Encoding 实现 JIS X 0201 单字节编码：
// 0x00–0x7F 为 ASCII 变体（0x5C→U+00A5 ¥、0x7E→U+203E ‾），
// 0xA1–0xDF 为半角片假名 U+FF61–U+FF9F，其余字节未定义。
// 与 x/text 其他编码不同，解码遇未定义字节直接报错（严格模式）。
var JISX0201Encoding encoding.Encoding = jisX0201{}

type jisX0201 struct{}

func (jisX0201) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: jisX0201Decoder{}}
}

func (jisX0201) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: jisX0201Encoder{}}
}

func (jisX0201) String() string { return "JIS X 0201" }

var (
	errInvalidJISX0201 = errors.New("codec: invalid JIS X 0201 byte")
	errJISX0201Repert  = errors.New("codec: rune not in JIS X 0201 repertoire")
	errInvalidUTF8     = errors.New("codec: invalid UTF-8")
)

type jisX0201Decoder struct{}

func (jisX0201Decoder) Reset() {}

func (jisX0201Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for ; nSrc < len(src); nSrc++ {
		var r rune
		switch c := src[nSrc]; {
		case c == 0x5C:
			r = '¥' // ¥
		case c == 0x7E:
			r = '‾' // ‾
		case c < 0x80:
			r = rune(c)
		case 0xA1 <= c && c <= 0xDF:
			r = rune(c) + (0xFF61 - 0xA1)
		default:
			return nDst, nSrc, errInvalidJISX0201
		}
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
	}
	return nDst, nSrc, nil
}

type jisX0201Encoder struct{}

func (jisX0201Encoder) Reset() {}

func (jisX0201Encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	r, size := rune(0), 0
	for ; nSrc < len(src); nSrc += size {
		r, size = rune(src[nSrc]), 1
		if r >= utf8.RuneSelf {
			r, size = utf8.DecodeRune(src[nSrc:])
			if size == 1 {
				if !atEOF && !utf8.FullRune(src[nSrc:]) {
					return nDst, nSrc, transform.ErrShortSrc
				}
				return nDst, nSrc, errInvalidUTF8
			}
		}
		var b byte
		switch {
		case r == '¥':
			b = 0x5C
		case r == '‾':
			b = 0x7E
		case r == '\\' || r == '~':
			// 0x5C/0x7E 槽位已被 ¥/‾ 占用，反斜线与波浪线不在字集内。
			return nDst, nSrc, errJISX0201Repert
		case r < 0x80:
			b = byte(r)
		case 0xFF61 <= r && r <= 0xFF9F:
			b = byte(r - (0xFF61 - 0xA1))
		default:
			return nDst, nSrc, errJISX0201Repert
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = b
		nDst++
	}
	return nDst, nSrc, nil
}
