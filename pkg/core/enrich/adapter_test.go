package enrich_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhq/podLog/pkg/core/enrich"
	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
)

// capture 收集 dispatch 到的记录
type capture struct {
	recs []*record.Record
}

func (c *capture) dispatch(r *record.Record) { c.recs = append(c.recs, r) }

func (c *capture) last(t *testing.T) *record.Record {
	t.Helper()
	require.NotEmpty(t, c.recs)
	return c.recs[len(c.recs)-1]
}

func fieldString(t *testing.T, r *record.Record, name string) string {
	t.Helper()
	v, ok := r.Field(name)
	require.True(t, ok, "field %q not reachable", name)
	s, ok := v.(string)
	require.True(t, ok, "field %q not a string", name)
	return s
}

func TestSetContextParsing(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"字符串解析", "user=alice req=42", "req=42 user=alice"},
		{"部分可解析丢弃裸token", "deploy user=alice", "user=alice"},
		{"整串不可解析入哨兵键", "just a note", "_ctx=just a note"},
		{"映射输入", map[string]any{"b": 2, "a": 1}, "a=1 b=2"},
		{"字符串映射", map[string]string{"env": "prod"}, "env=prod"},
		{"nil清空", nil, "-"},
		{"非字符串非映射入哨兵键", 12345, "_ctx=12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cap := &capture{}
			a := enrich.NewAdapter("svc", cap.dispatch)
			a.SetContext(tt.in)
			a.Info("hello")
			assert.Equal(t, tt.want, fieldString(t, cap.last(t), "context"))
		})
	}
}

func TestContextRenderingDeterministic(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	// 插入顺序与渲染顺序无关：始终按键排序
	a.AddContext(enrich.KV{Key: "zebra", Value: 1})
	a.AddContext(enrich.KV{Key: "alpha", Value: 2})
	a.Info("m")
	assert.Equal(t, "alpha=2 zebra=1", fieldString(t, cap.last(t), "context"))

	// add_context 合并 last-write-wins，set_context 整体替换
	a.AddContext(enrich.KV{Key: "alpha", Value: 9})
	a.Info("m")
	assert.Equal(t, "alpha=9 zebra=1", fieldString(t, cap.last(t), "context"))

	a.SetContext("only=left")
	a.Info("m")
	assert.Equal(t, "only=left", fieldString(t, cap.last(t), "context"))
}

func TestAllowedKeysFilter(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch,
		enrich.WithAllowedKeys("user"))
	a.SetContext("user=alice secret=xyz")
	a.Info("m")
	assert.Equal(t, "user=alice", fieldString(t, cap.last(t), "context"))
}

func TestAddExtraValuesSyntheticNames(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	a.AddExtraValues(5, 5)
	a.Info("m")
	r := cap.last(t)

	v1, ok := r.Field("var1")
	require.True(t, ok)
	v2, ok := r.Field("var2")
	require.True(t, ok)
	assert.Equal(t, 5, v1)
	assert.Equal(t, 5, v2)
}

func TestAddExtraValuesAvoidsCollision(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	a.AddExtra(enrich.KV{Key: "var1", Value: "taken"})
	a.AddExtraValues("fresh")
	a.Info("m")
	r := cap.last(t)

	v, ok := r.Field("var1")
	require.True(t, ok)
	assert.Equal(t, "taken", v)
	v, ok = r.Field("var2")
	require.True(t, ok)
	assert.Equal(t, "fresh", v)
}

func TestBufferSurvivesEmitUntilCleared(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	a.AddExtra(enrich.KV{Key: "x", Value: 10}, enrich.KV{Key: "y", Value: 20})
	a.Info("first")
	a.Info("second")

	// 发射不隐式清空缓冲
	for _, r := range cap.recs {
		_, ok := r.Field("x")
		assert.True(t, ok)
	}

	a.ClearExtra()
	a.Emit(level.Info, "third", nil, enrich.KV{Key: "site", Value: 1})
	r := cap.last(t)
	_, ok := r.Field("x")
	assert.False(t, ok, "cleared buffer key should be gone")
	v, ok := r.Field("site")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCallSiteExtrasOverrideBuffer(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	a.AddExtra(enrich.KV{Key: "k", Value: "buffered"})
	a.Emit(level.Info, "m", nil, enrich.KV{Key: "k", Value: "call-site"})

	v, ok := cap.last(t).Field("k")
	require.True(t, ok)
	assert.Equal(t, "call-site", v)
}

func TestReservedKeysOverwritten(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)
	a.SetContext("user=alice")

	// 调用方试图占用保留键：被适配器渲染值覆盖
	a.Emit(level.Info, "m", nil, enrich.KV{Key: "context", Value: "hijack"})
	r := cap.last(t)
	assert.Equal(t, "user=alice", fieldString(t, r, "context"))
	assert.NotContains(t, fieldString(t, r, "extra_kvs"), "hijack")
}

func TestExtraKVsRendering(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	a.AddExtra(
		enrich.KV{Key: "count", Value: 3},
		enrich.KV{Key: "tags", Value: []string{"a", "b"}},
	)
	a.Info("m")
	got := fieldString(t, cap.last(t), "extra_kvs")

	// 标量直接渲染，非标量 JSON 编码，插入顺序保持
	assert.Equal(t, `count=3 tags=["a","b"]`, got)
}

func TestExtraKVsUnencodableFallback(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	ch := make(chan int)
	defer close(ch)
	a.AddExtra(
		enrich.KV{Key: "bad", Value: ch},
		enrich.KV{Key: "good", Value: "still-here"},
	)

	// 单个值渲染失败不阻塞整条记录
	assert.NotPanics(t, func() { a.Info("m") })
	got := fieldString(t, cap.last(t), "extra_kvs")
	assert.True(t, strings.Contains(got, "good=still-here"), "got %q", got)
	assert.True(t, strings.Contains(got, "bad="), "got %q", got)
}

// poisonJSON 的 MarshalJSON 总是 panic
type poisonJSON struct{}

func (poisonJSON) MarshalJSON() ([]byte, error) { panic("poisoned marshal") }

func TestExtraKVsMarshalPanicFallback(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	a.AddExtra(
		enrich.KV{Key: "bad", Value: poisonJSON{}},
		enrich.KV{Key: "good", Value: "still-here"},
	)

	// 用户类型 MarshalJSON panic 不穿透日志调用，收敛后退化为通用表示
	assert.NotPanics(t, func() { a.Info("m") })
	got := fieldString(t, cap.last(t), "extra_kvs")
	assert.True(t, strings.Contains(got, "good=still-here"), "got %q", got)
	assert.True(t, strings.Contains(got, "bad="), "got %q", got)
}

func TestLevelGate(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch,
		enrich.WithLevelGate(func(l level.Level) bool { return l >= level.Warn }))

	a.Info("dropped")
	a.Warn("kept")
	require.Len(t, cap.recs, 1)
	assert.Equal(t, level.Warn, cap.recs[0].Level())
}

func TestTraceGate(t *testing.T) {
	cap := &capture{}
	on := false
	a := enrich.NewAdapter("svc", cap.dispatch,
		enrich.WithTraceGate(func() bool { return on }))

	a.Trace("dropped")
	assert.Empty(t, cap.recs)

	on = true
	a.Trace("kept")
	require.Len(t, cap.recs, 1)
	assert.Equal(t, level.Trace, cap.recs[0].Level())
}

func TestNilDispatchIsNoop(t *testing.T) {
	a := enrich.NewAdapter("svc", nil)
	assert.NotPanics(t, func() {
		a.SetContext("k=v")
		a.Info("nowhere")
	})

	// Rewire 后状态仍在
	cap := &capture{}
	a.Rewire(cap.dispatch)
	a.Info("now")
	assert.Equal(t, "k=v", fieldString(t, cap.last(t), "context"))
}

func TestMessageFormatting(t *testing.T) {
	cap := &capture{}
	a := enrich.NewAdapter("svc", cap.dispatch)

	a.Error("failed after %d retries: %s", 3, "timeout")
	assert.Equal(t, "failed after 3 retries: timeout", cap.last(t).Message())
}
