package framer

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"codeconv/pkg/contract"
)

// TestFixed 定长字节分帧：整帧、干净 EOF、半截记录
func TestFixed(t *testing.T) {
	f := Fixed{Length: 4}
	r := bytes.NewReader([]byte("ABCDEFGH"))
	rec, err := f.Next(r)
	if err != nil || !bytes.Equal(rec, []byte("ABCD")) {
		t.Fatalf("first record: %q, %v", rec, err)
	}
	rec, err = f.Next(r)
	if err != nil || !bytes.Equal(rec, []byte("EFGH")) {
		t.Fatalf("second record: %q, %v", rec, err)
	}
	if _, err = f.Next(r); err != io.EOF {
		t.Fatalf("clean boundary should be io.EOF, got %v", err)
	}

	r = bytes.NewReader([]byte("ABCDEF"))
	if _, err = f.Next(r); err != nil {
		t.Fatalf("full record: %v", err)
	}
	if _, err = f.Next(r); !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("short read should be ErrFraming, got %v", err)
	}
}

// TestFixedChars 定长字符分帧：多字节宽度判定与边界
func TestFixedChars(t *testing.T) {
	f := FixedChars{Count: 3}
	// 1+3+1 字节 = 3 字符
	in := []byte("A漢B" + "xyz")
	r := bytes.NewReader(in)
	rec, err := f.Next(r)
	if err != nil || string(rec) != "A漢B" {
		t.Fatalf("first record: %q, %v", rec, err)
	}
	rec, err = f.Next(r)
	if err != nil || string(rec) != "xyz" {
		t.Fatalf("second record: %q, %v", rec, err)
	}
	if _, err = f.Next(r); err != io.EOF {
		t.Fatalf("clean boundary should be io.EOF, got %v", err)
	}
}

// TestFixedCharsInvalidLead 非法首字节（10xxxxxx）为致命编码错误
func TestFixedCharsInvalidLead(t *testing.T) {
	f := FixedChars{Count: 1}
	_, err := f.Next(bytes.NewReader([]byte{0xBF}))
	if !errors.Is(err, contract.ErrCharConversion) {
		t.Fatalf("invalid lead byte should be ErrCharConversion, got %v", err)
	}
}

// TestFixedCharsTruncated 流尾的半截多字节序列是分帧错误而非 EOF
func TestFixedCharsTruncated(t *testing.T) {
	f := FixedChars{Count: 1}
	// 漢 的首字节后即截断
	_, err := f.Next(bytes.NewReader([]byte{0xE6, 0xBC}))
	if !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("truncated sequence should be ErrFraming, got %v", err)
	}
	// 字符数不足
	f = FixedChars{Count: 3}
	_, err = f.Next(bytes.NewReader([]byte("AB")))
	if !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("short record should be ErrFraming, got %v", err)
	}
}

// TestVariable 变长块分帧：整块返回（含长度字段）
func TestVariable(t *testing.T) {
	var f Variable
	block := append(Uint32BE(10), append(Uint32BE(6), []byte("AB")...)...)
	r := bytes.NewReader(block)
	rec, err := f.Next(r)
	if err != nil || !bytes.Equal(rec, block) {
		t.Fatalf("block: %x, %v", rec, err)
	}
	if _, err = f.Next(r); err != io.EOF {
		t.Fatalf("clean boundary should be io.EOF, got %v", err)
	}
}

// TestVariableErrors 块长声明非法与半截块
func TestVariableErrors(t *testing.T) {
	var f Variable
	if _, err := f.Next(bytes.NewReader(Uint32BE(7))); !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("block length < 8 should be ErrFraming, got %v", err)
	}
	if _, err := f.Next(bytes.NewReader([]byte{0x00, 0x00})); !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("incomplete length field should be ErrFraming, got %v", err)
	}
	short := append(Uint32BE(12), []byte("ABCD")...)
	if _, err := f.Next(bytes.NewReader(short)); !errors.Is(err, contract.ErrFraming) {
		t.Fatalf("incomplete block should be ErrFraming, got %v", err)
	}
}

// TestWhole 整文件分帧：一次读尽，再次调用即 EOF
func TestWhole(t *testing.T) {
	w := &Whole{}
	r := bytes.NewReader([]byte("HELLO"))
	rec, err := w.Next(r)
	if err != nil || string(rec) != "HELLO" {
		t.Fatalf("whole: %q, %v", rec, err)
	}
	if _, err = w.Next(r); err != io.EOF {
		t.Fatalf("second call should be io.EOF, got %v", err)
	}
}

// TestUint32BE 大端长度字段组装
func TestUint32BE(t *testing.T) {
	if got := Uint32BE(10); !bytes.Equal(got, []byte{0, 0, 0, 0x0A}) {
		t.Fatalf("got %x", got)
	}
}
