package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"codeconv/internal/codec"
	"codeconv/pkg/contract"
)

func identityJIS() codec.Converter {
	return codec.Converter{
		SrcSingle: codec.JISX0201, DstSingle: codec.JISX0201,
		SrcDouble: codec.ISO2022JP, DstDouble: codec.ISO2022JP,
	}
}

func identityUTF8() codec.Converter {
	return codec.Converter{
		SrcSingle: codec.UTF8, DstSingle: codec.UTF8,
		SrcDouble: codec.UTF8, DstDouble: codec.UTF8,
	}
}

// TestWholeIdentity 整文件家族：UTF-8 恒等变换下输出与输入逐字节一致
func TestWholeIdentity(t *testing.T) {
	w := Whole{Conv: identityUTF8()}
	out, err := w.Convert([]byte("HELLO"))
	if err != nil || string(out) != "HELLO" {
		t.Fatalf("whole identity: %q, %v", out, err)
	}
}

// TestVarBlockRecompute 变长块：头部按变换后载荷长度重算
func TestVarBlockRecompute(t *testing.T) {
	v := VarBlock{Conv: identityUTF8()}
	in := append(append([]byte{0, 0, 0, 10}, 0, 0, 0, 99), []byte("AB")...)
	out, err := v.Convert(in)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := []byte{0, 0, 0, 0x0A, 0, 0, 0, 0x06, 'A', 'B'}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %x want %x", out, want)
	}
	// 原记录长字段（99）不向后传播
	if binary.BigEndian.Uint32(out[4:8]) != 6 {
		t.Fatalf("record length should be recomputed")
	}
}

// TestVarBlockErrors 块过短与声明长度不符
func TestVarBlockErrors(t *testing.T) {
	v := VarBlock{Conv: identityUTF8()}
	if _, err := v.Convert([]byte{0, 0, 0, 4}); !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("short block should be ErrFraming, got %v", err)
	}
	bad := append(append([]byte{0, 0, 0, 12}, 0, 0, 0, 6), []byte("AB")...)
	if _, err := v.Convert(bad); !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("declared/physical mismatch should be ErrFraming, got %v", err)
	}
}

// TestFixedMixedHeader 头记录（'1'）整体走单字节变换
func TestFixedMixedHeader(t *testing.T) {
	f := &FixedMixed{
		Conv: identityJIS(), RecordLen: 8,
		Table: func(byte) []contract.FieldSpan { t.Fatal("header must not consult table"); return nil },
	}
	in := []byte("10000000")
	out, err := f.Convert(in)
	if err != nil || !bytes.Equal(out, in) {
		t.Fatalf("header record: %q, %v", out, err)
	}
}

// TestFixedMixedDataSpan 数据记录：区间 [2,5] 走双字节，其余单字节，
// 恒等变换下输出与输入逐字节一致
func TestFixedMixedDataSpan(t *testing.T) {
	span, _ := contract.NewByteSpan(2, 5)
	f := &FixedMixed{
		Conv: identityJIS(), RecordLen: 10,
		Table: func(subtype byte) []contract.FieldSpan {
			if subtype != '1' {
				t.Fatalf("unexpected subtype %q", subtype)
			}
			return []contract.FieldSpan{span}
		},
	}
	// 位置 2..5 为两个 JIS X 0208 全角空白（0x2121）
	in := []byte{'2', '1', 0x21, 0x21, 0x21, 0x21, 'X', 'Y', 'Z', '0'}
	out, err := f.Convert(in)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("identity broken: %x", out)
	}
}

// TestFixedMixedOrdering 片段次序不变量：以可区分标记验证输出次序
func TestFixedMixedOrdering(t *testing.T) {
	s1, _ := contract.NewByteSpan(2, 3)
	s2, _ := contract.NewByteSpan(6, 7)
	f := &FixedMixed{
		Conv: identityJIS(), RecordLen: 10,
		Table: func(byte) []contract.FieldSpan { return []contract.FieldSpan{s1, s2} },
	}
	// 空隙 "21" / "45" / "89"，区间为全角字符（双字节面）
	in := []byte{'2', '1', 0x21, 0x21, '4', '5', 0x21, 0x22, '8', '9'}
	out, err := f.Convert(in)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("fragment order broken: %x", out)
	}
}

// TestFixedMixedUnknownSubtype 未识别子类：空表回退，整条单字节
func TestFixedMixedUnknownSubtype(t *testing.T) {
	f := &FixedMixed{
		Conv: identityJIS(), RecordLen: 6,
		Table: func(byte) []contract.FieldSpan { return nil },
	}
	in := []byte("29ABCD")
	out, err := f.Convert(in)
	if err != nil || !bytes.Equal(out, in) {
		t.Fatalf("fallback: %q, %v", out, err)
	}
}

// TestFixedMixedInvalidKind 记录种别标记非法
func TestFixedMixedInvalidKind(t *testing.T) {
	f := &FixedMixed{Conv: identityJIS(), RecordLen: 4, Table: func(byte) []contract.FieldSpan { return nil }}
	if _, err := f.Convert([]byte("3AAA")); !errors.Is(err, contract.ErrInvalidRecordType) {
		t.Fatalf("invalid kind should be ErrInvalidRecordType, got %v", err)
	}
}

// TestFixedMixedLengthCheck 字节记录长度与布局不符为分帧错误
func TestFixedMixedLengthCheck(t *testing.T) {
	f := &FixedMixed{Conv: identityJIS(), RecordLen: 8, Table: func(byte) []contract.FieldSpan { return nil }}
	if _, err := f.Convert([]byte("1AB")); !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("length mismatch should be ErrFraming, got %v", err)
	}
}

// TestFixedMixedChars UTF-8 源按字符定位：区间 (2,2) 含多字节字符
func TestFixedMixedChars(t *testing.T) {
	span, _ := contract.NewCharSpan(2, 2)
	f := &FixedMixed{
		Conv: identityUTF8(), CharBased: true,
		Table: func(subtype byte) []contract.FieldSpan {
			if subtype != '7' {
				t.Fatalf("subtype = %q", subtype)
			}
			return []contract.FieldSpan{span}
		},
	}
	in := []byte("27漢字AB")
	out, err := f.Convert(in)
	if err != nil || !bytes.Equal(out, in) {
		t.Fatalf("char-based identity: %q, %v", out, err)
	}
}

// TestFixedMixedCharsHeader UTF-8 源头记录
func TestFixedMixedCharsHeader(t *testing.T) {
	f := &FixedMixed{Conv: identityUTF8(), CharBased: true,
		Table: func(byte) []contract.FieldSpan { return nil }}
	in := []byte("1ヘッダ")
	out, err := f.Convert(in)
	if err != nil || !bytes.Equal(out, in) {
		t.Fatalf("char-based header: %q, %v", out, err)
	}
}

// TestNewFixedMixed 构造器按源编码选择定位方式
func TestNewFixedMixed(t *testing.T) {
	f := NewFixedMixed(contract.LayoutC, identityUTF8())
	if !f.CharBased || f.RecordLen != 380 {
		t.Fatalf("UTF-8 source should be char-based with len 380: %+v", f)
	}
	f = NewFixedMixed(contract.LayoutD, identityJIS())
	if f.CharBased {
		t.Fatalf("JIS source should be byte-based")
	}
}
