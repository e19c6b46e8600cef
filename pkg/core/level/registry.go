package level

import "sync/atomic"

// traceRegistered TRACE 级别的进程级注册标记
//
// 设计决策: 注册只是翻转一个布尔标记，名称表本身是编译期常量（见 String），
// 因此用单个 atomic.Bool 即可保证"单一赢家"语义，无需互斥锁。
// CAS 失败的调用方观察到已注册状态后直接返回，不报错、不重复注册。
var traceRegistered atomic.Bool

// RegisterTrace 注册 TRACE 级别（进程级，幂等）
//
// 并发安全：多个 goroutine 同时首次调用时只有一个真正完成注册，
// 其余调用无副作用地返回。重复调用是安全的空操作。
//
// 返回本次调用是否为实际执行注册的赢家（通常仅测试关心）。
func RegisterTrace() bool {
	return traceRegistered.CompareAndSwap(false, true)
}

// TraceRegistered 返回 TRACE 级别是否已注册
func TraceRegistered() bool {
	return traceRegistered.Load()
}

// ResetTraceForTest 重置 TRACE 注册状态（仅用于测试）
func ResetTraceForTest() {
	traceRegistered.Store(false)
}

// TraceEnabled 报告给定配置开关下 TRACE 是否可用
//
// TRACE 可路由需要两个条件同时满足：配置开启 enable_trace，且进程级注册已完成。
// 管理器在应用配置时完成注册，此函数供发射路径做快速判断。
func TraceEnabled(configEnabled bool) bool {
	return configEnabled && traceRegistered.Load()
}
