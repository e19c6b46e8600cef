package podlog

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/podhq/podLog/pkg/async"
	"github.com/podhq/podLog/pkg/config"
	"github.com/podhq/podLog/pkg/core/enrich"
	"github.com/podhq/podLog/pkg/core/manager"
)

// =============================================================================
// 全局管理器
//
// 定位：脚手架/单二进制服务等简单场景。
// 多组件场景推荐依赖注入（显式持有 *manager.Manager）。
// =============================================================================

// globalManager 全局管理器实例（并发安全）
var globalManager atomic.Pointer[manager.Manager]

// globalMu 保护 globalOnce 及其 Do 执行（也用于 ResetForTest）
var globalMu sync.Mutex

// globalOnce 确保默认管理器只初始化一次
var globalOnce sync.Once

// convenience 包级便利函数共用的根句柄
var convenience atomic.Pointer[enrich.Adapter]

// diagnostic 当前诊断回调；管理器构造时固定转发函数，
// 回调本身可随时替换。
var diagnostic atomic.Pointer[async.ErrorFunc]

// SetDiagnostic 设置全局诊断回调
// 接收管线内部错误（sink 失败、队列丢弃、关停未排空等）。传 nil 关闭。
func SetDiagnostic(fn async.ErrorFunc) {
	if fn == nil {
		diagnostic.Store(nil)
		return
	}
	diagnostic.Store(&fn)
}

func forwardDiagnostic(stage string, err error) {
	if fn := diagnostic.Load(); fn != nil {
		(*fn)(stage, err)
	}
}

// defaultManager 创建默认管理器（惰性初始化）
//
// 设计决策: 在持锁状态下执行 once.Do，确保 ResetForTest（重置 globalOnce）
// 与 once.Do 之间不会发生并发竞争（覆盖 sync.Once 内部状态会导致 fatal）。
// 初始化后 Default() 走 atomic.Load 快速路径，不进入此函数。
func defaultManager() *manager.Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalOnce.Do(func() {
		m := manager.New(manager.WithDiagnostic(forwardDiagnostic))
		// 惰性默认配置：内置默认值 + 工作目录配置文件 + 环境变量。
		// 失败时保持未配置状态（发射为空操作），不让库代码终止宿主进程。
		if cfg, err := config.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "podlog: failed to load default config: %v\n", err)
		} else if err := m.Configure(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "podlog: failed to apply default config: %v\n", err)
		}
		globalManager.Store(m)
	})
	return globalManager.Load()
}

// Default 返回全局管理器
//
// 懒初始化：首次调用时创建管理器并应用默认配置
// （console 处理器、text 格式、INFO 级别）。
func Default() *manager.Manager {
	if m := globalManager.Load(); m != nil {
		return m
	}
	return defaultManager()
}

// SetDefault 替换全局管理器
//
// 用于测试或自定义构造场景。传入 nil 被忽略；
// 要重置为未初始化状态，请使用 ResetForTest()。
func SetDefault(m *manager.Manager) {
	if m == nil {
		return
	}
	globalManager.Store(m)
	convenience.Store(nil)
}

// ResetForTest 重置全局状态为未初始化（仅用于测试）
//
// 当前管理器（若有）先被关停。下次 Default() 会重新初始化。
func ResetForTest() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if m := globalManager.Load(); m != nil {
		m.Shutdown()
	}
	globalManager.Store(nil)
	convenience.Store(nil)
	globalOnce = sync.Once{}
}

// root 返回便利函数共用的根句柄
//
// 句柄注册在管理器上，重配置时随其他句柄一起重接线；
// 额外叠加一层 callerSkip 抵消包级函数的封装。
func root() *Logger {
	if ad := convenience.Load(); ad != nil {
		return ad
	}

	// 先完成惰性初始化再拿锁，defaultManager 内部也要 globalMu
	m := Default()

	globalMu.Lock()
	defer globalMu.Unlock()
	if ad := convenience.Load(); ad != nil {
		return ad
	}
	ad := m.GetContextLogger("")
	ad.AddCallerSkip(1)
	convenience.Store(ad)
	return ad
}
