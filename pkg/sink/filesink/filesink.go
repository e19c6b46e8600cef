package filesink

import (
	"fmt"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/podhq/podLog/pkg/core/record"
	"github.com/podhq/podLog/pkg/format"
	"github.com/podhq/podLog/pkg/sink"
	"github.com/podhq/podLog/pkg/util/fsutil"
)

// Config 文件 sink 配置
type Config struct {
	// BaseDir 日志根目录
	BaseDir string
	// Filename 文件名（不含目录）
	Filename string
	// DateMode 日期分区布局，见 fsutil
	DateMode fsutil.DateMode
	// DateLayout 扁平布局的日期目录格式，空取默认
	DateLayout string
	// MaxSizeMB 单文件大小上限（MB），<=0 取 100
	MaxSizeMB int
	// MaxBackups 大小轮转保留的备份数，0 表示不限
	MaxBackups int
	// Retention 轮转备份的保留策略
	Retention RetentionPolicy
}

// File 日期分区 + 大小轮转的文件 sink
type File struct {
	mu         sync.Mutex
	f          format.Formatter
	cfg        Config
	lj         *lumberjack.Logger
	currentDir string
	closed     bool
}

// New 创建文件 sink
//
// 文件名在构造期净化，配置错误立即暴露；目录与文件的实际创建
// 推迟到首条记录写入。
func New(cfg Config, f format.Formatter) (*File, error) {
	if f == nil {
		return nil, sink.ErrNoFormatter
	}
	name, err := fsutil.SanitizePath(cfg.Filename)
	if err != nil {
		return nil, fmt.Errorf("filesink: bad filename: %w", err)
	}
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("filesink: filename must not contain directories: %w", fsutil.ErrInvalidPath)
	}
	cfg.Filename = name
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	return &File{f: f, cfg: cfg}, nil
}

// ensurePartition 已持锁调用：保证 lumberjack 指向 r 所属分区的文件
func (s *File) ensurePartition(r *record.Record) error {
	dir := fsutil.DatedDir(s.cfg.BaseDir, r.Time(), s.cfg.DateMode, s.cfg.DateLayout)
	if s.lj != nil && dir == s.currentDir {
		return nil
	}

	target := filepath.Join(dir, s.cfg.Filename)
	if err := fsutil.EnsureDir(target); err != nil {
		return fmt.Errorf("filesink: create partition dir: %w", err)
	}

	if s.lj != nil {
		// 跨分区：关旧文件，旧分区做最后一次清扫
		if err := s.lj.Close(); err != nil {
			return fmt.Errorf("filesink: close previous partition: %w", err)
		}
		s.cfg.Retention.Apply(s.currentDir, s.cfg.Filename)
	}

	s.lj = &lumberjack.Logger{
		Filename:   target,
		MaxSize:    s.cfg.MaxSizeMB,
		MaxBackups: s.cfg.MaxBackups,
	}
	s.currentDir = dir
	return nil
}

// Emit 实现 sink.Sink
func (s *File) Emit(r *record.Record) error {
	line, err := s.f.Format(r)
	if err != nil {
		return fmt.Errorf("filesink: format record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sink.ErrClosed
	}
	if err := s.ensurePartition(r); err != nil {
		return err
	}
	if _, err := s.lj.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("filesink: write record: %w", err)
	}
	return nil
}

// Rotate 手动触发大小轮转并清扫当前分区
func (s *File) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sink.ErrClosed
	}
	if s.lj == nil {
		return nil
	}
	if err := s.lj.Rotate(); err != nil {
		return fmt.Errorf("filesink: rotate: %w", err)
	}
	s.cfg.Retention.Apply(s.currentDir, s.cfg.Filename)
	return nil
}

// Flush 实现 sink.Sink；lumberjack 无自有缓冲，空操作
func (s *File) Flush() error { return nil }

// Close 实现 sink.Sink
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.lj == nil {
		return nil
	}
	err := s.lj.Close()
	s.cfg.Retention.Apply(s.currentDir, s.cfg.Filename)
	return err
}

// CurrentPath 返回当前写入的文件路径（测试与诊断用），尚未写入时为空
func (s *File) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lj == nil {
		return ""
	}
	return s.lj.Filename
}
