package sink

import (
	"errors"

	"github.com/podhq/podLog/pkg/core/record"
)

var (
	// ErrClosed 对已关闭的 sink 调用 Emit
	ErrClosed = errors.New("sink: closed")

	// ErrNoFormatter sink 需要渲染器但未提供
	ErrNoFormatter = errors.New("sink: formatter is required")
)

// Sink 记录输出端
//
// Emit 是同步调用，返回 nil 表示记录已交付。实现必须自行保证
// 并发 Emit 的串行化（或天然无共享状态）。Close 之后的 Emit
// 返回 [ErrClosed]，重复 Close 幂等。
type Sink interface {
	// Emit 输出一条记录
	Emit(r *record.Record) error
	// Flush 冲刷缓冲的输出
	Flush() error
	// Close 冲刷并释放资源
	Close() error
}
