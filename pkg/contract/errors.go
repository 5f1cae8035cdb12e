package contract

import "errors"

// 运行失败的最小错误分类。均为致命：任一错误立即中止当前文件的整个运行，
// 已写出的部分输出不回滚。
var (
	// ErrFraming: 分帧违例（半截读取、块长声明非法、流尾截断的多字节序列）。
	ErrFraming = errors.New("framing error")
	// ErrInvalidRecordType: 记录种别标记不可识别（既非 '1' 亦非 '2'）。
	ErrInvalidRecordType = errors.New("invalid record type")
	// ErrCharConversion: 解码/编码遇到畸形或不可映射序列（严格模式，无替换回退）。
	ErrCharConversion = errors.New("character conversion error")
	// ErrInvalidFieldSpan: 字段区间构造违例（配置期缺陷，非运行期数据缺陷）。
	ErrInvalidFieldSpan = errors.New("invalid field span")
	// ErrConfigInvalid: 参数缺失/取值非法（布局、字符集标识等）。
	ErrConfigInvalid = errors.New("config invalid")
)
