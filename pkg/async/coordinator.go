package async

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/podhq/podLog/pkg/core/record"
	"github.com/podhq/podLog/pkg/sink"
)

var (
	// ErrShuttingDown 关停后继续 Enqueue
	ErrShuttingDown = errors.New("async: coordinator is shutting down")

	// ErrQueueFull 有界等待窗口内队列始终满
	ErrQueueFull = errors.New("async: queue full after bounded wait")
)

// 默认参数
const (
	DefaultFlushInterval   = 5 * time.Second
	DefaultEnqueueWait     = time.Second
	DefaultPerSinkTimeout  = 2 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// ErrorFunc 诊断回调，stage 为 "emit"/"flush"/"close"/"enqueue"
type ErrorFunc func(stage string, err error)

// Config 协调器参数
type Config struct {
	// QueueMaxSize 队列容量，0 表示无界
	QueueMaxSize int
	// FlushInterval 周期性冲刷间隔，<=0 取默认 5s
	FlushInterval time.Duration
	// EnqueueWait 满队列时的最长阻塞等待，<=0 取默认 1s
	EnqueueWait time.Duration
	// PerSinkTimeout 强制关闭/冲刷时单个 sink 的时限，<=0 取默认 2s
	PerSinkTimeout time.Duration
	// OnError 诊断回调，可为 nil
	OnError ErrorFunc
}

// Stats 协调器累计计数快照
type Stats struct {
	// Enqueued 成功入队数
	Enqueued int64
	// Dispatched 已出队分发数
	Dispatched int64
	// Dropped 背压等待超时丢弃数
	Dropped int64
	// Rejected 关停后拒绝数
	Rejected int64
	// SinkErrors sink 报错数（emit/flush/close 合计）
	SinkErrors int64
}

// Coordinator 异步分发协调器
type Coordinator struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*record.Record
	closing  bool
	flushReq bool

	sinks []sink.Sink
	cfg   Config

	done     chan struct{}
	stopTick chan struct{}
	shutOnce sync.Once

	inCallback atomic.Bool

	enqueued   atomic.Int64
	dispatched atomic.Int64
	dropped    atomic.Int64
	rejected   atomic.Int64
	sinkErrors atomic.Int64
}

// New 创建协调器并启动工作协程与冲刷定时器
//
// sinks 的所有权移交给协调器：此后不要再从其他路径调用这些 sink。
func New(sinks []sink.Sink, cfg Config) *Coordinator {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.EnqueueWait <= 0 {
		cfg.EnqueueWait = DefaultEnqueueWait
	}
	if cfg.PerSinkTimeout <= 0 {
		cfg.PerSinkTimeout = DefaultPerSinkTimeout
	}

	c := &Coordinator{
		sinks:    sinks,
		cfg:      cfg,
		done:     make(chan struct{}),
		stopTick: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	go c.run()
	go c.tick()
	return c
}

// Enqueue 记录入队
//
// 关停后返回 [ErrShuttingDown]；有界队列满时阻塞至多 EnqueueWait，
// 超时返回 [ErrQueueFull] 并计入丢弃。成功返回即保证记录最终会被
// 工作协程按 FIFO 分发（除非后续关停超时）。
func (c *Coordinator) Enqueue(r *record.Record) error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		c.rejected.Add(1)
		return ErrShuttingDown
	}

	if max := c.cfg.QueueMaxSize; max > 0 {
		deadline := time.Now().Add(c.cfg.EnqueueWait)
		for len(c.queue) >= max && !c.closing {
			if !c.waitUntil(deadline) {
				c.mu.Unlock()
				c.dropped.Add(1)
				c.report("enqueue", ErrQueueFull)
				return ErrQueueFull
			}
		}
		if c.closing {
			c.mu.Unlock()
			c.rejected.Add(1)
			return ErrShuttingDown
		}
	}

	c.queue = append(c.queue, r)
	c.enqueued.Add(1)
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}

// waitUntil 已持锁调用：在 cond 上等待，deadline 前醒来返回 true。
// sync.Cond 没有带超时的等待，用 AfterFunc 定时广播模拟；
// 被定时器唤醒后由调用方循环重查条件与期限。
func (c *Coordinator) waitUntil(deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}
	timer := time.AfterFunc(remaining, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	c.cond.Wait()
	timer.Stop()
	return true
}

// run 唯一的消费协程：FIFO 出队分发，兼做冲刷执行者
func (c *Coordinator) run() {
	defer close(c.done)
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closing && !c.flushReq {
			c.cond.Wait()
		}
		if c.flushReq {
			c.flushReq = false
			c.mu.Unlock()
			c.flushAll()
			continue
		}
		if len(c.queue) == 0 {
			// closing 且已排空
			c.mu.Unlock()
			return
		}
		r := c.queue[0]
		c.queue = c.queue[1:]
		c.cond.Broadcast()
		c.mu.Unlock()

		c.dispatch(r)
	}
}

// tick 周期性请求冲刷；冲刷本身由工作协程执行，保证 sink 单协程触达
func (c *Coordinator) tick() {
	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.flushReq = true
			c.cond.Broadcast()
			c.mu.Unlock()
		case <-c.stopTick:
			return
		}
	}
}

// dispatch 分发到每个 sink，单个 sink 失败隔离上报
func (c *Coordinator) dispatch(r *record.Record) {
	c.dispatched.Add(1)
	for _, s := range c.sinks {
		if err := c.safeEmit(s, r); err != nil {
			c.sinkErrors.Add(1)
			c.report("emit", err)
		}
	}
}

// safeEmit sink 的 panic 收敛为错误，日志路径不允许炸到调用方
func (c *Coordinator) safeEmit(s sink.Sink, r *record.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("async: sink emit panic: %v", p)
		}
	}()
	return s.Emit(r)
}

// flushAll 对全部 sink 做一轮时限冲刷
func (c *Coordinator) flushAll() {
	for _, s := range c.sinks {
		if err := c.bounded(c.cfg.PerSinkTimeout, s.Flush); err != nil {
			c.sinkErrors.Add(1)
			c.report("flush", err)
		}
	}
}

// bounded 在独立协程里执行 fn，超时返回错误而不是悬挂
func (c *Coordinator) bounded(timeout time.Duration, fn func() error) error {
	ch := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- fmt.Errorf("async: sink panic: %v", p)
			}
		}()
		ch <- fn()
	}()
	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("async: sink call exceeded %v", timeout)
	}
}

// Shutdown 优雅关停
//
// 置拒绝标志并等待存量排空至多 timeout（<=0 取默认 10s），随后并行
// 强制关闭全部 sink（每个有独立时限）。返回未排空的记录数；幂等，
// 重复调用返回 0。
func (c *Coordinator) Shutdown(timeout time.Duration) int {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	undrained := 0
	c.shutOnce.Do(func() {
		close(c.stopTick)

		c.mu.Lock()
		c.closing = true
		c.cond.Broadcast()
		c.mu.Unlock()

		select {
		case <-c.done:
		case <-time.After(timeout):
			// 排空超时：截留剩余队列并放工作协程退出
			c.mu.Lock()
			undrained = len(c.queue)
			c.queue = nil
			c.cond.Broadcast()
			c.mu.Unlock()
			// 工作协程可能卡在某个 sink 的 Emit 里，只再等一个
			// sink 时限，到点直接进入强制关闭，绝不无限悬挂
			select {
			case <-c.done:
			case <-time.After(c.cfg.PerSinkTimeout):
			}
			if undrained > 0 {
				c.report("close", fmt.Errorf("async: %d records undrained at shutdown", undrained))
			}
		}

		var g errgroup.Group
		for _, s := range c.sinks {
			g.Go(func() error {
				if err := c.bounded(c.cfg.PerSinkTimeout, s.Close); err != nil {
					c.sinkErrors.Add(1)
					c.report("close", err)
				}
				return nil
			})
		}
		_ = g.Wait()
	})
	return undrained
}

// Stats 返回累计计数快照
func (c *Coordinator) Stats() Stats {
	return Stats{
		Enqueued:   c.enqueued.Load(),
		Dispatched: c.dispatched.Load(),
		Dropped:    c.dropped.Load(),
		Rejected:   c.rejected.Load(),
		SinkErrors: c.sinkErrors.Load(),
	}
}

// report 诊断回调，CAS 护栏防止回调内再触发日志造成递归
func (c *Coordinator) report(stage string, err error) {
	if c.cfg.OnError == nil {
		return
	}
	if !c.inCallback.CompareAndSwap(false, true) {
		return
	}
	defer c.inCallback.Store(false)
	defer func() { _ = recover() }()
	c.cfg.OnError(stage, err)
}
