package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"codeconv/internal/diag"
	"codeconv/pkg/contract"
)

// - 顺序处理：记录按输入次序逐条分帧→变换→写出，无内部并发。
// - 首错中止：任一记录失败即停止；已写出的前缀保留，错误向上返回。
// - 输出次序 = 输入次序；不回读、不重排。

// 进度事件间隔（记录条数）
const progressEvery = 1000

// Components 聚合运行所需的原子组件。
type Components struct {
	Framer    contract.Framer
	Converter contract.RecordConverter
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// 日志相关标识（file.id 原文）
	FileID string
}

// Result 运行统计。失败时 Records 为成功写出的条数，
// FailedRecord 为出错记录的序号（1 起）。
// 首错即止策略下 Errors 只能为 0（完走）或 1（中止）。
type Result struct {
	Records      int64
	Errors       int64
	BytesIn      int64
	BytesOut     int64
	FailedRecord int64
}

// Run 执行完整流水线：Framer → RecordConverter → Writer。
// 约束：
// - 所有组件均为同步实现；
// - 错误发生时立即返回，不继续读取后续记录；
// - 每 progressEvery 条记录发出一次进度事件。
func Run(ctx context.Context, comp Components, set Settings, r io.Reader, w io.Writer, logger *diag.Logger) (Result, error) {
	var res Result
	if err := sanity(comp); err != nil {
		return res, fmt.Errorf("sanity: %w", err)
	}

	bw := bufio.NewWriter(w)
	ptimer := (*diag.Timer)(nil)
	if logger != nil {
		ptimer = logger.StartWith("pipeline", "convert", set.FileID)
	}

	// 中止时先冲刷缓冲：失败记录之前已变换的前缀必须落入下游。
	// 此处的冲刷错误不遮蔽首错。
	abort := func() {
		_ = bw.Flush()
	}

	for {
		if err := ctx.Err(); err != nil {
			res.Errors, res.FailedRecord = 1, res.Records+1
			abort()
			return res, err
		}
		rec, err := comp.Framer.Next(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors, res.FailedRecord = 1, res.Records+1
			fail(logger, "framer", err, set.FileID, res.FailedRecord)
			abort()
			return res, fmt.Errorf("framer next: %w", err)
		}
		res.BytesIn += int64(len(rec))

		out, err := comp.Converter.Convert(rec)
		if err != nil {
			res.Errors, res.FailedRecord = 1, res.Records+1
			fail(logger, "record", err, set.FileID, res.FailedRecord)
			abort()
			return res, fmt.Errorf("record %d: %w", res.FailedRecord, err)
		}

		if _, err := bw.Write(out); err != nil {
			res.Errors, res.FailedRecord = 1, res.Records+1
			fail(logger, "writer", err, set.FileID, res.FailedRecord)
			abort()
			return res, fmt.Errorf("write record %d: %w", res.FailedRecord, err)
		}
		res.BytesOut += int64(len(out))
		res.Records++
		if logger != nil && res.Records%progressEvery == 0 {
			logger.Progress("pipeline", set.FileID, res.Records)
		}
	}

	if err := bw.Flush(); err != nil {
		res.Errors = 1
		fail(logger, "writer", err, set.FileID, 0)
		return res, fmt.Errorf("flush: %w", err)
	}
	if ptimer != nil {
		ptimer.Finish("convert", res.Records)
		diag.IncOp("pipeline", "finish", "success")
	}
	return res, nil
}

func fail(logger *diag.Logger, comp string, err error, fileID string, record int64) {
	code := diag.Classify(err)
	if logger != nil {
		rid := ""
		if record > 0 {
			rid = fmt.Sprintf("%d", record)
		}
		logger.ErrorWith(comp, string(code), err.Error(), nil, fileID, rid)
	}
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

func sanity(c Components) error {
	if c.Framer == nil || c.Converter == nil {
		return errors.New("pipeline: missing components")
	}
	return nil
}
