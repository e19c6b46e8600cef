package manager

import (
	"fmt"
	"strings"
	"sync"

	"github.com/podhq/podLog/pkg/async"
	"github.com/podhq/podLog/pkg/config"
	"github.com/podhq/podLog/pkg/core/enrich"
	"github.com/podhq/podLog/pkg/core/filter"
	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
	"github.com/podhq/podLog/pkg/format"
	"github.com/podhq/podLog/pkg/sink"
)

// target 一个启用处理器的存活管线
type target struct {
	name   string
	snk    sink.Sink
	min    level.Level
	hasMin bool
	pred   filter.Predicate
	coord  *async.Coordinator // nil 表示同步直写
}

// deliver 把记录送入本处理器，级别与过滤器门控在此生效
func (t *target) deliver(r *record.Record, onError async.ErrorFunc) {
	if t.hasMin && r.Level() < t.min {
		return
	}
	if t.pred != nil && !t.pred(r) {
		return
	}
	if t.coord != nil {
		// 入队失败已由协调器计数并回调，这里不重复上报
		_ = t.coord.Enqueue(r)
		return
	}
	if err := guarded(func() error { return t.snk.Emit(r) }); err != nil && onError != nil {
		onError("emit", err)
	}
}

// guarded 同步直写路径把 sink 调用的 panic 收敛为错误
// 异步路径由协调器自行收敛，这里覆盖 use_queue_listener 关闭的场景。
func guarded(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("manager: sink panic: %v", p)
		}
	}()
	return fn()
}

// namedAdapter 记住上下文句柄创建时的名字，重配置按名解析路由
type namedAdapter struct {
	name string
	ad   *enrich.Adapter
}

// Manager 日志管线管理器
type Manager struct {
	mu      sync.Mutex
	cfg     *config.Config
	targets map[string]*target
	order   []string
	loggers map[string]*enrich.Adapter
	seeded  []namedAdapter
	onError async.ErrorFunc
}

// ManagerOption Manager 构造选项
type ManagerOption func(*Manager)

// WithDiagnostic 设置诊断回调
// 接收管线内部错误（sink 失败、队列丢弃、关停未排空等），不设置则静默。
func WithDiagnostic(fn async.ErrorFunc) ManagerOption {
	return func(m *Manager) { m.onError = fn }
}

// New 创建未配置的管理器
// 此时获取的 logger 句柄发射为空操作，Configure 后自动接线。
func New(opts ...ManagerOption) *Manager {
	m := &Manager{
		targets: make(map[string]*target),
		loggers: make(map[string]*enrich.Adapter),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configure 校验并应用配置
//
// 新管线整体构建成功后才拆除旧管线；任何一步失败时现役管线不受
// 影响，错误原样返回。存活句柄在切换后原地重接线，指针保持有效。
func (m *Manager) Configure(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", config.ErrLoadFailed)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	formatters := make(map[string]format.Formatter, len(cfg.Formatters))
	for name, spec := range cfg.Formatters {
		f, err := buildFormatter(spec)
		if err != nil {
			return err
		}
		formatters[name] = f
	}

	filters := make(map[string]filter.Predicate, len(cfg.Filters))
	for name, spec := range cfg.Filters {
		pred, err := buildFilter(spec)
		if err != nil {
			return err
		}
		filters[name] = pred
	}

	newTargets := make(map[string]*target, len(cfg.Handlers.Enabled))
	newOrder := make([]string, 0, len(cfg.Handlers.Enabled))
	for _, spec := range cfg.EnabledSpecs() {
		t, err := buildTarget(spec, formatters[spec.Formatter], filters, cfg.Paths)
		if err != nil {
			closeTargets(newTargets, newOrder)
			return err
		}
		newTargets[spec.Name] = t
		newOrder = append(newOrder, spec.Name)
	}

	if cfg.Async.UseQueueListener {
		for _, t := range newTargets {
			t.coord = async.New([]sink.Sink{t.snk}, async.Config{
				QueueMaxSize:  cfg.Async.QueueMaxSize,
				FlushInterval: cfg.Async.FlushInterval(),
				OnError:       m.onError,
			})
		}
	}

	if cfg.Levels.EnableTrace {
		level.RegisterTrace()
	}

	m.teardownLocked()
	m.cfg = cfg
	m.targets = newTargets
	m.order = newOrder
	m.rewireAllLocked()
	return nil
}

// GetLogger 返回命名 logger 句柄，同名调用返回同一指针
func (m *Manager) GetLogger(name string) *enrich.Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ad, ok := m.loggers[name]; ok {
		return ad
	}
	ad := enrich.NewAdapter(name, nil)
	m.loggers[name] = ad
	m.rewireLocked(name, ad)
	return ad
}

// GetContextLogger 返回带种子上下文的独立句柄
//
// 与 GetLogger 不同，每次调用返回新句柄，各自持有独立的富化状态。
// context.enabled 关闭时种子上下文被丢弃，句柄本身仍然可用。
func (m *Manager) GetContextLogger(name string, kvs ...enrich.KV) *enrich.Adapter {
	m.mu.Lock()
	ad := enrich.NewAdapter(name, nil)
	m.seeded = append(m.seeded, namedAdapter{name: name, ad: ad})
	m.rewireLocked(name, ad)
	enabled := m.cfg == nil || m.cfg.Context.Enabled
	m.mu.Unlock()

	if enabled && len(kvs) > 0 {
		ad.AddContext(kvs...)
	}
	return ad
}

// Shutdown 拆除全部管线
//
// 协调器按配置的排空时限关停，未排空的记录数走诊断回调。句柄保持
// 有效但发射变为空操作，再次 Configure 可恢复。
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardownLocked()
	m.cfg = nil
	m.rewireAllLocked()
}

// Stats 返回各启用处理器的协调器计数快照，同步模式返回空表
func (m *Manager) Stats() map[string]async.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]async.Stats)
	for name, t := range m.targets {
		if t.coord != nil {
			out[name] = t.coord.Stats()
		}
	}
	return out
}

// Config 返回当前生效的配置，未配置时为 nil
func (m *Manager) Config() *config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// =============================================================================
// 内部
// =============================================================================

func buildTarget(spec config.HandlerSpec, f format.Formatter, filters map[string]filter.Predicate, paths config.Paths) (*target, error) {
	snk, err := buildSink(spec, f, paths)
	if err != nil {
		return nil, err
	}

	t := &target{name: spec.Name, snk: snk}
	if spec.Level != nil {
		lvl, err := level.Normalize(spec.Level)
		if err != nil {
			_ = snk.Close()
			return nil, fmt.Errorf("%w: handler %q: %w", config.ErrBadLevel, spec.Name, err)
		}
		t.min, t.hasMin = lvl, true
	}
	if len(spec.Filters) > 0 {
		preds := make([]filter.Predicate, 0, len(spec.Filters))
		for _, name := range spec.Filters {
			preds = append(preds, filters[name])
		}
		t.pred = filter.All(preds...)
	}
	return t, nil
}

func closeTargets(targets map[string]*target, order []string) {
	for _, name := range order {
		if t, ok := targets[name]; ok {
			_ = guarded(t.snk.Close)
		}
	}
}

// teardownLocked 拆除现役管线：协调器排空关停（内部会冲刷并关闭
// sink），同步 sink 直接冲刷后关闭。
func (m *Manager) teardownLocked() {
	timeout := async.DefaultShutdownTimeout
	if m.cfg != nil {
		if d := m.cfg.Async.ShutdownTimeout(); d > 0 {
			timeout = d
		}
	}

	for _, name := range m.order {
		t := m.targets[name]
		if t == nil {
			continue
		}
		if t.coord != nil {
			t.coord.Shutdown(timeout)
			continue
		}
		if err := guarded(t.snk.Flush); err != nil && m.onError != nil {
			m.onError("flush", err)
		}
		if err := guarded(t.snk.Close); err != nil && m.onError != nil {
			m.onError("close", err)
		}
	}
	m.targets = make(map[string]*target)
	m.order = nil
}

func (m *Manager) rewireAllLocked() {
	for name, ad := range m.loggers {
		m.rewireLocked(name, ad)
	}
	for _, na := range m.seeded {
		m.rewireLocked(na.name, na.ad)
	}
}

// rewireLocked 按当前配置为句柄接线
func (m *Manager) rewireLocked(name string, ad *enrich.Adapter) {
	cfg := m.cfg
	if cfg == nil {
		ad.Rewire(nil)
		return
	}

	route, named := cfg.Logging.Loggers[name]
	if cfg.Logging.DisableExistingLoggers && !named && name != "" {
		ad.Rewire(nil)
		return
	}
	if !named {
		route = cfg.Logging.Root
	}

	eff := m.effectiveLevelLocked(name, route)
	targets := m.routeTargetsLocked(route)
	enableTrace := cfg.Levels.EnableTrace
	onError := m.onError

	dispatch := func(r *record.Record) {
		for _, t := range targets {
			t.deliver(r, onError)
		}
	}
	ad.Rewire(dispatch,
		enrich.WithLevelGate(func(l level.Level) bool { return l >= eff }),
		enrich.WithTraceGate(func() bool { return level.TraceEnabled(enableTrace) }),
		enrich.WithAllowedKeys(cfg.Context.AllowedKeys...),
	)
}

// routeTargetsLocked 解析路由的目标管线，空路由回退到根路由目标
func (m *Manager) routeTargetsLocked(route config.Route) []*target {
	names := route.Handlers
	if len(names) == 0 {
		names = m.cfg.RootHandlers()
	}
	out := make([]*target, 0, len(names))
	for _, name := range names {
		if t, ok := m.targets[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// effectiveLevelLocked 解析句柄的有效级别
//
// 优先级：路由自身级别 > levels.overrides 的最长点号前缀匹配 >
// levels.root。配置已通过校验，归一化失败回退 Info。
func (m *Manager) effectiveLevelLocked(name string, route config.Route) level.Level {
	if route.Level != "" {
		if lvl, err := level.Parse(route.Level); err == nil {
			return lvl
		}
	}

	for probe := name; probe != ""; {
		if raw, ok := m.cfg.Levels.Overrides[probe]; ok {
			if lvl, err := level.Parse(raw); err == nil {
				return lvl
			}
		}
		idx := strings.LastIndexByte(probe, '.')
		if idx < 0 {
			break
		}
		probe = probe[:idx]
	}

	if m.cfg.Levels.Root != "" {
		if lvl, err := level.Parse(m.cfg.Levels.Root); err == nil {
			return lvl
		}
	}
	return level.Info
}
