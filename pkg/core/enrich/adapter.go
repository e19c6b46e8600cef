package enrich

import (
	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
)

// Dispatch 接收构造完成的 Record 的下游回调。
// 同步路径直接写 sink，异步路径入队协调器；富化层不关心哪一种。
type Dispatch func(r *record.Record)

// Adapter 上下文富化适配器，即一个命名 logger 句柄。
//
// 持有本句柄的富化状态，在每次发射时把持久上下文与附加数据合并为
// 附件后构造 Record 并交给下游。状态修改方法非并发安全，见包文档。
type Adapter struct {
	name     string
	dispatch Dispatch
	gate     func(level.Level) bool
	traceOK  func() bool
	allowed  map[string]struct{}
	skip     int
	state    *ContextState
}

// Option Adapter 构造选项
type Option func(*Adapter)

// WithLevelGate 设置级别门控，返回 false 的级别直接丢弃（零开销早退）
func WithLevelGate(fn func(level.Level) bool) Option {
	return func(a *Adapter) { a.gate = fn }
}

// WithTraceGate 设置 TRACE 发射的额外门控（配置开关 + 注册状态）
func WithTraceGate(fn func() bool) Option {
	return func(a *Adapter) { a.traceOK = fn }
}

// WithAllowedKeys 限制渲染进 context 字符串的上下文键集合，空表示不限制
func WithAllowedKeys(keys ...string) Option {
	return func(a *Adapter) {
		if len(keys) == 0 {
			a.allowed = nil
			return
		}
		a.allowed = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			a.allowed[k] = struct{}{}
		}
	}
}

// WithCallerSkip 叠加源码位置捕获要跳过的封装层数
func WithCallerSkip(n int) Option {
	return func(a *Adapter) { a.skip += n }
}

// NewAdapter 创建命名的富化适配器
//
// dispatch 为 nil 时发射是空操作（适配器仍可累积状态），
// manager 重配置时用这一点把句柄先建出来再接线。
func NewAdapter(name string, dispatch Dispatch, opts ...Option) *Adapter {
	a := &Adapter{
		name:     name,
		dispatch: dispatch,
		state:    NewContextState(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name 返回句柄名
func (a *Adapter) Name() string { return a.name }

// Rewire 原地替换下游回调，已有富化状态保持不变。
// manager 重配置时对存活句柄调用，调用方负责与发射方的外部同步。
func (a *Adapter) Rewire(dispatch Dispatch, opts ...Option) {
	a.dispatch = dispatch
	for _, opt := range opts {
		opt(a)
	}
}

// AddCallerSkip 叠加源码位置捕获要跳过的封装层数
// 供在句柄外再包一层的便利入口使用，应在句柄发布前调用。
func (a *Adapter) AddCallerSkip(n int) { a.skip += n }

// SetContext 整体替换持久上下文，见 [ContextState.SetContext]
func (a *Adapter) SetContext(v any) { a.state.SetContext(v) }

// AddContext 增量合并持久上下文，last-write-wins
func (a *Adapter) AddContext(kvs ...KV) { a.state.AddContext(kvs...) }

// AddExtra 把命名数据对合并进附加缓冲
func (a *Adapter) AddExtra(kvs ...KV) { a.state.AddExtra(kvs...) }

// AddExtraValues 为未命名值分配 varN 合成名后入缓冲
func (a *Adapter) AddExtraValues(vals ...any) { a.state.AddExtraValues(vals...) }

// ClearExtra 清空附加缓冲，持久上下文不受影响
func (a *Adapter) ClearExtra() { a.state.ClearExtra() }

// State 返回底层状态（测试与诊断用）
func (a *Adapter) State() *ContextState { return a.state }

// Emit 按给定级别发射一条记录
//
// 合并顺序：缓冲 extras → 调用点 extras 覆盖 → 注入 context 与
// extra_kvs 保留键。富化过程从不 panic 到调用方。
func (a *Adapter) Emit(lvl level.Level, msg string, args []any, extras ...KV) {
	a.emit(lvl, msg, args, extras)
}

func (a *Adapter) emit(lvl level.Level, msg string, args []any, extras []KV) {
	if a.dispatch == nil {
		return
	}
	if a.gate != nil && !a.gate(lvl) {
		return
	}
	if lvl == level.Trace && a.traceOK != nil && !a.traceOK() {
		return
	}

	merged := a.state.Extras()
	for _, kv := range extras {
		merged.Set(kv.Key, kv.Value)
	}
	// 保留键最后注入：调用方同名数据被适配器渲染值覆盖
	merged.Set(KeyContext, RenderContext(a.state.context, a.allowed))
	merged.Set(KeyExtraKVs, RenderExtraKVs(merged))

	// emit(1) → 级别方法/Emit(2) → 调用方(3)
	r := record.New(a.name, lvl, msg, args, merged,
		record.WithCallerSkip(2+a.skip))
	a.dispatch(r)
}

// Trace 发射 TRACE 记录，受配置开关与注册状态双重门控
func (a *Adapter) Trace(msg string, args ...any) { a.emit(level.Trace, msg, args, nil) }

// Debug 发射 DEBUG 记录
func (a *Adapter) Debug(msg string, args ...any) { a.emit(level.Debug, msg, args, nil) }

// Info 发射 INFO 记录
func (a *Adapter) Info(msg string, args ...any) { a.emit(level.Info, msg, args, nil) }

// Warn 发射 WARNING 记录
func (a *Adapter) Warn(msg string, args ...any) { a.emit(level.Warn, msg, args, nil) }

// Error 发射 ERROR 记录
func (a *Adapter) Error(msg string, args ...any) { a.emit(level.Error, msg, args, nil) }

// Critical 发射 CRITICAL 记录
func (a *Adapter) Critical(msg string, args ...any) { a.emit(level.Critical, msg, args, nil) }
