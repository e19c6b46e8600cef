// Package level 定义 podLog 的日志级别体系。
//
// # 级别数值
//
// TRACE(5) < DEBUG(10) < INFO(20) < WARN(30) < ERROR(40) < CRITICAL(50)。
// TRACE 低于最低标准级别，默认不注册，需通过 [RegisterTrace] 显式开启。
//
// # TRACE 注册
//
// [RegisterTrace] 为进程级一次性操作：并发调用时只有一个赢家真正修改
// 名字表，其余调用观察到已注册状态后直接返回，不会报错。
// [TraceRegistered] 查询当前注册状态。
//
// # 解析
//
// [Parse] 支持级别名（大小写不敏感，warning 是 warn 的别名）和数字字符串。
// 未知名称返回错误（fail fast），不做静默回退——配置错误应在流量到来前暴露。
package level
