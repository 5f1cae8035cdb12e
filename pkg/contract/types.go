package contract

import (
	"fmt"
	"strings"
)

// Layout: 文件布局（闭集，六种）。布局决定记录分帧纪律与字段选择行为，
// 家族归属运行期不可变。
type Layout int

const (
	// LayoutA / LayoutB: 整文件家族。无分帧，文件整体作为单一变换单元。
	LayoutA Layout = iota
	LayoutB
	// LayoutC / LayoutD: 定长混合家族。380 字节（UTF-8 源为 380 字符）定长，
	// 单字节与双字节字段混合。
	LayoutC
	LayoutD
	// LayoutE / LayoutF: 变长块家族。长度前缀块，内容仅单字节，
	// 但附带控制字节替换。
	LayoutE
	LayoutF
)

// Family: 布局家族。家族完全决定分帧纪律与字段选择行为。
type Family int

const (
	FamilyWhole Family = iota
	FamilyFixedMixed
	FamilyVariable
)

// FixedRecordLength: 定长混合家族的记录长度（字节；UTF-8 源为字符数）。
const FixedRecordLength = 380

// ParseLayout 解析布局标识（FILE_A..FILE_F，大小写不敏感）。
func ParseLayout(s string) (Layout, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FILE_A":
		return LayoutA, nil
	case "FILE_B":
		return LayoutB, nil
	case "FILE_C":
		return LayoutC, nil
	case "FILE_D":
		return LayoutD, nil
	case "FILE_E":
		return LayoutE, nil
	case "FILE_F":
		return LayoutF, nil
	}
	return 0, fmt.Errorf("%w: unknown layout %q (want FILE_A..FILE_F)", ErrConfigInvalid, s)
}

func (l Layout) String() string {
	switch l {
	case LayoutA:
		return "FILE_A"
	case LayoutB:
		return "FILE_B"
	case LayoutC:
		return "FILE_C"
	case LayoutD:
		return "FILE_D"
	case LayoutE:
		return "FILE_E"
	case LayoutF:
		return "FILE_F"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Family 返回布局所属家族。
func (l Layout) Family() Family {
	switch l {
	case LayoutC, LayoutD:
		return FamilyFixedMixed
	case LayoutE, LayoutF:
		return FamilyVariable
	default:
		return FamilyWhole
	}
}

// RecordLength 返回定长记录长度；非定长家族为 0（不适用）。
func (l Layout) RecordLength() int {
	if l.Family() == FamilyFixedMixed {
		return FixedRecordLength
	}
	return 0
}

// 定长混合记录的记录种别标记（首单元）与数据子类标记（第二单元）。
const (
	RecordKindHeader = byte('1')
	RecordKindData   = byte('2')
)
