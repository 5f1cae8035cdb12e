package contract

import "fmt"

// SpanKind: 字段区间的定位方式。
type SpanKind int

const (
	// SpanByte: 字节区间 [Start,End]（含端点，0 起）。JIS/EBCDIC 源使用。
	SpanByte SpanKind = iota
	// SpanChar: 字符区间 (Start, Count)（0 起，Count>0）。
	// 仅当源单字节字符集为 UTF-8 且布局为定长混合家族时使用。
	SpanChar
)

// FieldSpan: 记录内需要双字节处理的子区间（标签联合）。
// 构造后不可变；区间之间的空隙隐式按单字节处理。
type FieldSpan struct {
	Kind  SpanKind
	Start int
	// End: 仅 SpanByte 有效（含端点）。
	End int
	// Count: 仅 SpanChar 有效（字符数）。
	Count int
}

// NewByteSpan 构造字节区间。违例返回 ErrInvalidFieldSpan。
// 约束：start>=0 且 end>=start；end < 记录长度由字段表装配时按布局校验。
func NewByteSpan(start, end int) (FieldSpan, error) {
	if start < 0 || end < start {
		return FieldSpan{}, fmt.Errorf("%w: byte span start=%d end=%d", ErrInvalidFieldSpan, start, end)
	}
	return FieldSpan{Kind: SpanByte, Start: start, End: end}, nil
}

// NewCharSpan 构造字符区间。违例返回 ErrInvalidFieldSpan。
func NewCharSpan(start, count int) (FieldSpan, error) {
	if start < 0 || count <= 0 {
		return FieldSpan{}, fmt.Errorf("%w: char span start=%d count=%d", ErrInvalidFieldSpan, start, count)
	}
	return FieldSpan{Kind: SpanChar, Start: start, Count: count}, nil
}

// Len 返回区间长度（字节区间为字节数，字符区间为字符数）。
func (s FieldSpan) Len() int {
	if s.Kind == SpanByte {
		return s.End - s.Start + 1
	}
	return s.Count
}
