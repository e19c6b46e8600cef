package sink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/podhq/podLog/pkg/core/record"
	"github.com/podhq/podLog/pkg/format"
)

// Writer 向任意 io.Writer 输出格式化记录的 sink
//
// 每条记录渲染为单行并追加换行。互斥锁串行化并发 Emit，
// 避免多 goroutine 写同一 writer 时行交错。
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	f      format.Formatter
	closed bool
}

// NewWriter 创建写入 w 的 sink
func NewWriter(w io.Writer, f format.Formatter) (*Writer, error) {
	if f == nil {
		return nil, ErrNoFormatter
	}
	return &Writer{w: w, f: f}, nil
}

// NewConsole 创建控制台 sink，stream 为 "stdout" 或 "stderr"（默认）
func NewConsole(stream string, f format.Formatter) (*Writer, error) {
	var w io.Writer
	switch stream {
	case "stdout":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	default:
		return nil, fmt.Errorf("sink: unknown console stream %q", stream)
	}
	return NewWriter(w, f)
}

// Emit 实现 [Sink]
func (s *Writer) Emit(r *record.Record) error {
	line, err := s.f.Format(r)
	if err != nil {
		return fmt.Errorf("sink: format record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("sink: write record: %w", err)
	}
	return nil
}

// Flush 实现 [Sink]；writer 无自有缓冲时是空操作
func (s *Writer) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if f, ok := s.w.(interface{ Sync() error }); ok {
		// 标准流的 Sync 在部分平台返回 EINVAL，忽略
		_ = f.Sync()
	}
	return nil
}

// Close 实现 [Sink]；不关闭底层 writer（stdout/stderr 归进程所有）
func (s *Writer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
