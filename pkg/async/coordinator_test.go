package async_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/podhq/podLog/pkg/async"
	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
	"github.com/podhq/podLog/pkg/sink"
)

// TestMain 在所有测试完成后检测 goroutine 泄漏。
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memSink 记录所有 Emit 的测试 sink，可注入阻塞与失败
type memSink struct {
	mu      sync.Mutex
	records []*record.Record
	flushes int
	closes  int
	emitErr error
	block   chan struct{} // 非 nil 时每次 Emit 阻塞到通道关闭
}

func (s *memSink) Emit(r *record.Record) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emitErr != nil {
		return s.emitErr
	}
	s.records = append(s.records, r)
	return nil
}

func (s *memSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *memSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *memSink) snapshot() []*record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*record.Record(nil), s.records...)
}

func rec(msg string) *record.Record {
	return record.New("test", level.Info, msg, nil, nil)
}

func TestDrainsAllRecordsInOrder(t *testing.T) {
	s1 := &memSink{}
	s2 := &memSink{}
	c := async.New([]sink.Sink{s1, s2}, async.Config{QueueMaxSize: 8})

	const n = 100
	for i := 0; i < n; i++ {
		require.NoError(t, c.Enqueue(rec(string(rune('A'+i%26)))))
	}
	undrained := c.Shutdown(10 * time.Second)
	assert.Zero(t, undrained)

	// 两个 sink 各收到全部 N 条，且顺序与提交一致
	for _, s := range []*memSink{s1, s2} {
		got := s.snapshot()
		require.Len(t, got, n)
		for i, r := range got {
			assert.Equal(t, string(rune('A'+i%26)), r.RawMessage())
		}
	}
	assert.Equal(t, 1, s1.closes)

	st := c.Stats()
	assert.Equal(t, int64(n), st.Enqueued)
	assert.Equal(t, int64(n), st.Dispatched)
	assert.Zero(t, st.Dropped)
}

func TestBackpressureBlocksInsteadOfDropping(t *testing.T) {
	release := make(chan struct{})
	s := &memSink{block: release}
	c := async.New([]sink.Sink{s}, async.Config{
		QueueMaxSize: 1,
		EnqueueWait:  5 * time.Second,
	})

	// 第一条被工作协程取走后卡在 Emit 上，第二条占住队列唯一槽位
	require.NoError(t, c.Enqueue(rec("first")))
	require.NoError(t, c.Enqueue(rec("second")))

	pending := make(chan error, 1)
	go func() { pending <- c.Enqueue(rec("third")) }()

	// 有界等待期内调用保持阻塞而不是丢弃
	select {
	case err := <-pending:
		t.Fatalf("enqueue should still be pending, returned %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-pending)

	undrained := c.Shutdown(5 * time.Second)
	assert.Zero(t, undrained)
	assert.Len(t, s.snapshot(), 3)
}

func TestBoundedWaitExpiresWithDrop(t *testing.T) {
	release := make(chan struct{})
	s := &memSink{block: release}
	var mu sync.Mutex
	var stages []string
	c := async.New([]sink.Sink{s}, async.Config{
		QueueMaxSize: 1,
		EnqueueWait:  100 * time.Millisecond,
		OnError: func(stage string, _ error) {
			mu.Lock()
			stages = append(stages, stage)
			mu.Unlock()
		},
	})

	require.NoError(t, c.Enqueue(rec("first")))
	require.NoError(t, c.Enqueue(rec("second")))
	err := c.Enqueue(rec("third"))
	assert.ErrorIs(t, err, async.ErrQueueFull)
	assert.Equal(t, int64(1), c.Stats().Dropped)

	mu.Lock()
	assert.Contains(t, stages, "enqueue")
	mu.Unlock()

	close(release)
	c.Shutdown(5 * time.Second)
}

func TestRejectsAfterShutdown(t *testing.T) {
	s := &memSink{}
	c := async.New([]sink.Sink{s}, async.Config{})

	require.NoError(t, c.Enqueue(rec("before")))
	c.Shutdown(5 * time.Second)

	err := c.Enqueue(rec("after"))
	assert.ErrorIs(t, err, async.ErrShuttingDown)
	assert.Equal(t, int64(1), c.Stats().Rejected)

	// 幂等：二次关停立即返回 0
	assert.Zero(t, c.Shutdown(time.Second))
}

func TestSinkFailureIsolated(t *testing.T) {
	bad := &memSink{emitErr: errors.New("disk gone")}
	good := &memSink{}
	var mu sync.Mutex
	var reported []error
	c := async.New([]sink.Sink{bad, good}, async.Config{
		OnError: func(_ string, err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		},
	})

	require.NoError(t, c.Enqueue(rec("m")))
	c.Shutdown(5 * time.Second)

	// 坏 sink 不影响好 sink 收到记录
	assert.Len(t, good.snapshot(), 1)
	assert.Equal(t, int64(1), c.Stats().SinkErrors)
	mu.Lock()
	assert.NotEmpty(t, reported)
	mu.Unlock()
}

func TestPeriodicFlush(t *testing.T) {
	s := &memSink{}
	c := async.New([]sink.Sink{s}, async.Config{
		FlushInterval: 20 * time.Millisecond,
	})

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.flushes >= 2
	}, 2*time.Second, 10*time.Millisecond)

	c.Shutdown(5 * time.Second)
}

func TestShutdownReportsUndrained(t *testing.T) {
	release := make(chan struct{})
	s := &memSink{block: release}
	c := async.New([]sink.Sink{s}, async.Config{
		QueueMaxSize:   10,
		PerSinkTimeout: 50 * time.Millisecond,
	})

	require.NoError(t, c.Enqueue(rec("stuck")))
	require.NoError(t, c.Enqueue(rec("queued-1")))
	require.NoError(t, c.Enqueue(rec("queued-2")))

	// 排空等不到：卡住的 sink 让工作协程停在第一条上
	undrained := c.Shutdown(100 * time.Millisecond)
	assert.Equal(t, 2, undrained)

	// 放开 sink，让后台协程收尾，避免泄漏
	close(release)
	assert.Eventually(t, func() bool {
		return len(s.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
