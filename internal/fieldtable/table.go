// Package fieldtable 保存 (布局, 数据子类) → 双字节字段区间表的静态配置。
// 表一经装载不可变；区间按位置严格递增且互不重叠。
package fieldtable

import (
	"fmt"

	"codeconv/pkg/contract"
)

// Lookup 返回指定布局与数据子类的漢字字段区间表。
// charBased 为真时返回字符区间表（仅 UTF-8 源的定长混合布局使用）。
// 约定：
//   - FILE_C 的区间不随子类变化；
//   - FILE_D 仅识别子类 '1' 与 '2'；
//   - 未识别的子类返回空表，整条记录回退为单字节变换（与既有输入兼容）。
func Lookup(l contract.Layout, subtype byte, charBased bool) []contract.FieldSpan {
	if charBased {
		return charSpans[tableKey{l, normalize(l, subtype)}]
	}
	return byteSpans[tableKey{l, normalize(l, subtype)}]
}

type tableKey struct {
	layout  contract.Layout
	subtype byte
}

// normalize 将 FILE_C 的任意子类折叠为 '1'（其区间与子类无关）。
func normalize(l contract.Layout, subtype byte) byte {
	if l == contract.LayoutC {
		return '1'
	}
	return subtype
}

var byteSpans = map[tableKey][]contract.FieldSpan{
	{contract.LayoutC, '1'}: mustByteSpans([][2]int{{50, 99}, {150, 199}, {300, 349}}),
	{contract.LayoutD, '1'}: mustByteSpans([][2]int{{100, 149}, {200, 249}}),
	{contract.LayoutD, '2'}: mustByteSpans([][2]int{{120, 169}, {250, 299}}),
}

var charSpans = map[tableKey][]contract.FieldSpan{
	{contract.LayoutC, '1'}: mustCharSpans([][2]int{{50, 25}, {150, 25}, {300, 25}}),
	{contract.LayoutD, '1'}: mustCharSpans([][2]int{{100, 25}, {200, 25}}),
	{contract.LayoutD, '2'}: mustCharSpans([][2]int{{120, 25}, {250, 25}}),
}

func mustByteSpans(pairs [][2]int) []contract.FieldSpan {
	spans := make([]contract.FieldSpan, 0, len(pairs))
	for _, p := range pairs {
		s, err := contract.NewByteSpan(p[0], p[1])
		if err != nil {
			panic(err)
		}
		spans = append(spans, s)
	}
	if err := Validate(spans, contract.FixedRecordLength); err != nil {
		panic(err)
	}
	return spans
}

func mustCharSpans(pairs [][2]int) []contract.FieldSpan {
	spans := make([]contract.FieldSpan, 0, len(pairs))
	for _, p := range pairs {
		s, err := contract.NewCharSpan(p[0], p[1])
		if err != nil {
			panic(err)
		}
		spans = append(spans, s)
	}
	if err := Validate(spans, contract.FixedRecordLength); err != nil {
		panic(err)
	}
	return spans
}

// Validate 校验区间表不变量：按位置严格递增、互不重叠、不越过记录长度。
// 违例是配置期缺陷（ErrInvalidFieldSpan），不是运行期数据缺陷。
func Validate(spans []contract.FieldSpan, recordLen int) error {
	prevEnd := -1
	for i, s := range spans {
		start, end := s.Start, s.Start+s.Len()-1
		if start <= prevEnd {
			return fmt.Errorf("%w: span %d overlaps or regresses (start=%d prevEnd=%d)",
				contract.ErrInvalidFieldSpan, i, start, prevEnd)
		}
		if end >= recordLen {
			return fmt.Errorf("%w: span %d exceeds record length (end=%d len=%d)",
				contract.ErrInvalidFieldSpan, i, end, recordLen)
		}
		prevEnd = end
	}
	return nil
}
