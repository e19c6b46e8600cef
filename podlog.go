// Package podlog 是配置驱动的结构化日志工具箱的公共入口。
//
// 典型用法：
//
//	if err := podlog.Configure(); err != nil {
//	    // 处理配置错误
//	}
//	defer podlog.Shutdown()
//
//	log := podlog.GetLogger("svc.worker")
//	log.Info("started %d workers", n)
//
//	ctxLog := podlog.GetContextLogger("svc.http",
//	    podlog.KV{Key: "req_id", Value: reqID})
//	ctxLog.Warn("slow request")
//
// Configure 不带选项时按默认顺序加载：内置默认值 → 工作目录下的
// podlog.yaml|yml|json → PODLOG__ 前缀环境变量。需要指定文件或
// 注入覆盖时传 config 包的加载选项。
//
// 全局入口定位于脚手架和单二进制服务；多组件场景推荐显式持有
// *manager.Manager 做依赖注入。
package podlog

import (
	"github.com/podhq/podLog/pkg/config"
	"github.com/podhq/podLog/pkg/core/enrich"
)

// Logger 命名日志句柄，见 enrich 包
type Logger = enrich.Adapter

// KV 上下文与附加数据的键值对
type KV = enrich.KV

// Configure 加载配置并应用到全局管理器
//
// 加载失败或校验失败时返回错误，现役管线（若有）不受影响。
func Configure(opts ...config.Option) error {
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	return Default().Configure(cfg)
}

// ConfigureWith 直接应用一份已构造的配置
func ConfigureWith(cfg *config.Config) error {
	return Default().Configure(cfg)
}

// GetLogger 返回全局管理器上的命名句柄，同名调用返回同一指针
func GetLogger(name string) *Logger {
	return Default().GetLogger(name)
}

// GetContextLogger 返回带种子上下文的独立句柄
func GetContextLogger(name string, kvs ...KV) *Logger {
	return Default().GetContextLogger(name, kvs...)
}

// Shutdown 排空并拆除全局管线
//
// 句柄保持有效但发射变为空操作，再次 Configure 可恢复。
func Shutdown() {
	Default().Shutdown()
}

// WatchConfig 监视配置文件并把变更应用到全局管理器
//
// 重载出错（解析或校验失败）时保持现役配置并通过 onEvent 上报；
// 应用成功时 onEvent 收到 nil。onEvent 可为 nil。
// 返回的 Watcher 已异步启动，调用方负责 Stop。
func WatchConfig(path string, onEvent func(err error), opts ...config.WatchOption) (*config.Watcher, error) {
	w, err := config.Watch(path, func(cfg *config.Config, err error) {
		if err == nil {
			err = Default().Configure(cfg)
		}
		if onEvent != nil {
			onEvent(err)
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	w.StartAsync()
	return w, nil
}

// 便利函数：走全局管理器的根句柄。
// 全局函数比实例方法多一层封装，句柄在 global.go 里创建时已叠加
// callerSkip 补偿，源码位置仍指向业务调用方。

// Trace 使用根句柄记录 TRACE 日志
func Trace(msg string, args ...any) { root().Trace(msg, args...) }

// Debug 使用根句柄记录 DEBUG 日志
func Debug(msg string, args ...any) { root().Debug(msg, args...) }

// Info 使用根句柄记录 INFO 日志
func Info(msg string, args ...any) { root().Info(msg, args...) }

// Warn 使用根句柄记录 WARN 日志
func Warn(msg string, args ...any) { root().Warn(msg, args...) }

// Error 使用根句柄记录 ERROR 日志
func Error(msg string, args ...any) { root().Error(msg, args...) }

// Critical 使用根句柄记录 CRITICAL 日志
func Critical(msg string, args ...any) { root().Critical(msg, args...) }
