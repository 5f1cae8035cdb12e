package contract

import "io"

// Framer: 从字节流中读出下一条完整记录（分帧纪律由实现决定）。
// 约束：
//  1. 顺序读取，无回退/随机访问；
//  2. 恰在记录边界处遇到流尾时返回 io.EOF（干净结束）；
//  3. 任何半截读取（读到的字节数少于纪律要求）返回 ErrFraming；
//  4. 无内部并发、无跨记录状态。
type Framer interface {
	Next(r io.Reader) ([]byte, error)
}

// RecordConverter: 单条记录的整体变换（家族语义内聚于实现）。
// 约束：
//  1. 纯函数式：同一输入恒得同一输出；
//  2. 片段顺序不变量：输入中的位置次序等于输出中的片段次序；
//  3. 错误直接上抛（ErrCharConversion / ErrInvalidRecordType / ErrFraming），
//     不做局部恢复。
type RecordConverter interface {
	Convert(rec []byte) ([]byte, error)
}
