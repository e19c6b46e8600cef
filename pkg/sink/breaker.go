package sink

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/podhq/podLog/pkg/core/record"
)

// Breaker 熔断包装器：内层 sink 持续失败时打开断路，
// 打开期间的记录计为跳过并返回 nil——日志输出端故障不应该
// 把错误压力传导回业务发射路径。
type Breaker struct {
	inner   Sink
	cb      *gobreaker.CircuitBreaker[any]
	skipped atomic.Int64
}

// BreakerConfig 熔断参数
type BreakerConfig struct {
	// Name 断路器名（诊断用），空取 "sink"
	Name string
	// FailureThreshold 连续失败多少次后打开断路，<=0 取 5
	FailureThreshold uint32
	// OpenTimeout 断路打开后多久进入半开试探，<=0 取 30s
	OpenTimeout time.Duration
}

// NewBreaker 用熔断包装 inner
func NewBreaker(inner Sink, cfg BreakerConfig) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "sink"
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	st := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[any](st),
	}
}

// Emit 实现 [Sink]
func (s *Breaker) Emit(r *record.Record) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.Emit(r)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.skipped.Add(1)
		return nil
	}
	return err
}

// Flush 实现 [Sink]，透传内层
func (s *Breaker) Flush() error { return s.inner.Flush() }

// Close 实现 [Sink]，透传内层
func (s *Breaker) Close() error { return s.inner.Close() }

// Skipped 返回断路打开期间被跳过的记录数
func (s *Breaker) Skipped() int64 { return s.skipped.Load() }

// State 返回当前断路状态
func (s *Breaker) State() gobreaker.State { return s.cb.State() }
