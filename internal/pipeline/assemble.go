package pipeline

import (
	"fmt"

	"codeconv/internal/codec"
	"codeconv/internal/framer"
	"codeconv/internal/record"
	"codeconv/pkg/contract"
)

// Assemble 按布局家族装配 Framer 与 RecordConverter。
// 定长混在家族的分帧单位随源单字节编码切换：UTF-8 按字符计数，其余按字节。
func Assemble(layout contract.Layout, conv codec.Converter) (Components, error) {
	switch layout.Family() {
	case contract.FamilyWhole:
		return Components{
			Framer:    &framer.Whole{},
			Converter: record.Whole{Conv: conv},
		}, nil
	case contract.FamilyFixedMixed:
		var f contract.Framer
		if conv.SrcSingle == codec.UTF8 {
			f = framer.FixedChars{Count: layout.RecordLength()}
		} else {
			f = framer.Fixed{Length: layout.RecordLength()}
		}
		return Components{
			Framer:    f,
			Converter: record.NewFixedMixed(layout, conv),
		}, nil
	case contract.FamilyVariable:
		return Components{
			Framer:    framer.Variable{},
			Converter: record.VarBlock{Conv: conv},
		}, nil
	}
	return Components{}, fmt.Errorf("%w: layout %v", contract.ErrConfigInvalid, layout)
}
