package sink

import (
	"fmt"
	"net"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/podhq/podLog/pkg/core/record"
)

// gelfVersion GELF 协议版本
const gelfVersion = "1.1"

// GELF 向 Graylog 发送 GELF 1.1 JSON 数据报的 UDP sink
//
// 固定键 version/host/short_message/timestamp/level 之外，
// 附件的全部键按 GELF 约定加 "_" 前缀作为附加字段（含 _context、_extra_kvs）。
// 不实现分片，超过 MTU 的数据报由网络层处理或丢弃。
type GELF struct {
	mu     sync.Mutex
	conn   net.Conn
	addr   string
	closed bool
}

// NewGELF 创建 GELF UDP sink，addr 形如 "host:port"（默认 localhost:12201）
func NewGELF(addr string) (*GELF, error) {
	if addr == "" {
		addr = "localhost:12201"
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("sink: dial gelf udp %s: %w", addr, err)
	}
	return &GELF{conn: conn, addr: addr}, nil
}

// payload 构造 GELF JSON 载荷
func (s *GELF) payload(r *record.Record) ([]byte, error) {
	m := map[string]any{
		"version":       gelfVersion,
		"host":          r.Logger(),
		"short_message": r.Message(),
		"timestamp":     float64(r.Time().UnixNano()) / 1e9,
		"level":         int(r.Level()),
	}
	if a := r.Attachment(); a != nil {
		a.Range(func(key string, value any) bool {
			m["_"+key] = value
			return true
		})
	}
	return json.Marshal(m)
}

// Emit 实现 [Sink]
func (s *GELF) Emit(r *record.Record) error {
	data, err := s.payload(r)
	if err != nil {
		return fmt.Errorf("sink: encode gelf payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("sink: write gelf datagram: %w", err)
	}
	return nil
}

// Flush 实现 [Sink]
func (s *GELF) Flush() error { return nil }

// Close 实现 [Sink]
func (s *GELF) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
