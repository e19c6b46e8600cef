package sink

import (
	"sync/atomic"

	"github.com/podhq/podLog/pkg/core/record"
)

// Null 丢弃一切记录的 sink，保留计数用于诊断
type Null struct {
	count atomic.Int64
}

// NewNull 创建 null sink
func NewNull() *Null { return &Null{} }

// Emit 实现 [Sink]，丢弃记录并计数
func (s *Null) Emit(_ *record.Record) error {
	s.count.Add(1)
	return nil
}

// Flush 实现 [Sink]
func (s *Null) Flush() error { return nil }

// Close 实现 [Sink]
func (s *Null) Close() error { return nil }

// Count 返回已丢弃的记录数
func (s *Null) Count() int64 { return s.count.Load() }
