package contract

import (
	"errors"
	"testing"
)

// TestParseLayout 布局标识解析（含大小写与空白）
func TestParseLayout(t *testing.T) {
	cases := []struct {
		in   string
		want Layout
	}{
		{"FILE_A", LayoutA},
		{"file_b", LayoutB},
		{" FILE_C ", LayoutC},
		{"file_d", LayoutD},
		{"FILE_E", LayoutE},
		{"FILE_F", LayoutF},
	}
	for _, c := range cases {
		got, err := ParseLayout(c.in)
		if err != nil || got != c.want {
			t.Fatalf("ParseLayout(%q) = %v, %v", c.in, got, err)
		}
	}
	if _, err := ParseLayout("FILE_X"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expect ErrConfigInvalid, got %v", err)
	}
}

// TestLayoutFamily 家族归属与记录长度
func TestLayoutFamily(t *testing.T) {
	if LayoutA.Family() != FamilyWhole || LayoutB.Family() != FamilyWhole {
		t.Fatalf("A/B should be whole-file family")
	}
	if LayoutC.Family() != FamilyFixedMixed || LayoutD.Family() != FamilyFixedMixed {
		t.Fatalf("C/D should be fixed-mixed family")
	}
	if LayoutE.Family() != FamilyVariable || LayoutF.Family() != FamilyVariable {
		t.Fatalf("E/F should be variable family")
	}
	if LayoutC.RecordLength() != 380 || LayoutD.RecordLength() != 380 {
		t.Fatalf("C/D record length should be 380")
	}
	if LayoutA.RecordLength() != 0 || LayoutE.RecordLength() != 0 {
		t.Fatalf("A/E record length should be 0 (not applicable)")
	}
}

// TestByteSpan 字节区间构造与违例
func TestByteSpan(t *testing.T) {
	s, err := NewByteSpan(2, 5)
	if err != nil || s.Len() != 4 {
		t.Fatalf("byte span [2,5]: %+v, %v", s, err)
	}
	if _, err := NewByteSpan(-1, 3); !errors.Is(err, ErrInvalidFieldSpan) {
		t.Fatalf("negative start should fail")
	}
	if _, err := NewByteSpan(5, 4); !errors.Is(err, ErrInvalidFieldSpan) {
		t.Fatalf("end < start should fail")
	}
}

// TestCharSpan 字符区间构造与违例
func TestCharSpan(t *testing.T) {
	s, err := NewCharSpan(50, 25)
	if err != nil || s.Len() != 25 {
		t.Fatalf("char span (50,25): %+v, %v", s, err)
	}
	if _, err := NewCharSpan(0, 0); !errors.Is(err, ErrInvalidFieldSpan) {
		t.Fatalf("zero count should fail")
	}
}
