package sink

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v5"

	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
	"github.com/podhq/podLog/pkg/format"
)

// FacilityUser syslog USER facility
const FacilityUser = 1

const (
	defaultSyslogAddr  = "localhost:514"
	defaultDialRetries = 3
	defaultDialDelay   = 100 * time.Millisecond
	defaultDialTimeout = 3 * time.Second
)

// Syslog RFC 3164 风格的 syslog sink
//
// 连接惰性建立，拨号失败按固定间隔重试若干次后才向调用方报错；
// 写入失败会丢弃连接，下一次 Emit 重新拨号。
type Syslog struct {
	mu       sync.Mutex
	conn     net.Conn
	network  string
	addr     string
	facility int
	tag      string
	f        format.Formatter
	closed   bool
}

// SyslogOption Syslog 构造选项
type SyslogOption func(*Syslog)

// WithFacility 覆盖 facility（默认 USER）
func WithFacility(facility int) SyslogOption {
	return func(s *Syslog) { s.facility = facility }
}

// WithTag 设置消息 tag（默认 "podlog"）
func WithTag(tag string) SyslogOption {
	return func(s *Syslog) { s.tag = tag }
}

// ParseSyslogAddress 解析 syslog 地址
//
// 支持 "udp://host:port"、"tcp://host:port"、"unix:///path"；
// 无 scheme 的 "host:port" 视为 udp；空串取默认 udp://localhost:514。
func ParseSyslogAddress(address string) (network, addr string, err error) {
	switch {
	case address == "":
		return "udp", defaultSyslogAddr, nil
	case strings.HasPrefix(address, "unix://"):
		return "unixgram", strings.TrimPrefix(address, "unix://"), nil
	case strings.HasPrefix(address, "udp://"):
		return "udp", hostPortOrDefault(strings.TrimPrefix(address, "udp://")), nil
	case strings.HasPrefix(address, "tcp://"):
		return "tcp", hostPortOrDefault(strings.TrimPrefix(address, "tcp://")), nil
	case strings.Contains(address, "://"):
		return "", "", fmt.Errorf("sink: unsupported syslog scheme in %q", address)
	default:
		return "udp", hostPortOrDefault(address), nil
	}
}

// hostPortOrDefault 补全缺失的主机或端口
func hostPortOrDefault(hp string) string {
	host, port, found := strings.Cut(hp, ":")
	if host == "" {
		host = "localhost"
	}
	if !found || port == "" {
		port = "514"
	}
	return net.JoinHostPort(host, port)
}

// NewSyslog 创建 syslog sink，地址格式见 [ParseSyslogAddress]
func NewSyslog(address string, f format.Formatter, opts ...SyslogOption) (*Syslog, error) {
	if f == nil {
		return nil, ErrNoFormatter
	}
	network, addr, err := ParseSyslogAddress(address)
	if err != nil {
		return nil, err
	}
	s := &Syslog{
		network:  network,
		addr:     addr,
		facility: FacilityUser,
		tag:      "podlog",
		f:        f,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// severity 级别到 syslog severity 的映射
func severity(l level.Level) int {
	switch {
	case l >= level.Critical:
		return 2 // crit
	case l >= level.Error:
		return 3 // err
	case l >= level.Warn:
		return 4 // warning
	case l >= level.Info:
		return 6 // info
	default:
		return 7 // debug
	}
}

// ensureConn 已持锁调用：建立缺失的连接，拨号带重试
func (s *Syslog) ensureConn() error {
	if s.conn != nil {
		return nil
	}
	conn, err := retry.NewWithData[net.Conn](
		retry.Context(context.Background()),
		retry.Attempts(defaultDialRetries),
		retry.Delay(defaultDialDelay),
		retry.LastErrorOnly(true),
	).Do(func() (net.Conn, error) {
		return net.DialTimeout(s.network, s.addr, defaultDialTimeout)
	})
	if err != nil {
		return fmt.Errorf("sink: dial syslog %s://%s: %w", s.network, s.addr, err)
	}
	s.conn = conn
	return nil
}

// Emit 实现 [Sink]
func (s *Syslog) Emit(r *record.Record) error {
	line, err := s.f.Format(r)
	if err != nil {
		return fmt.Errorf("sink: format record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.ensureConn(); err != nil {
		return err
	}

	pri := s.facility*8 + severity(r.Level())
	msg := fmt.Sprintf("<%d>%s: %s", pri, s.tag, line)
	if _, err := s.conn.Write([]byte(msg)); err != nil {
		// 连接可能已失效，丢弃后下次重拨
		_ = s.conn.Close()
		s.conn = nil
		return fmt.Errorf("sink: write syslog: %w", err)
	}
	return nil
}

// Flush 实现 [Sink]；数据报无缓冲，空操作
func (s *Syslog) Flush() error { return nil }

// Close 实现 [Sink]
func (s *Syslog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}
