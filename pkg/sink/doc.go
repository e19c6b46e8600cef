// Package sink 定义记录输出端接口与基础实现。
//
// [Sink] 是同步契约：Emit 返回即表示记录已交付（或已确定失败），
// 异步化由 pkg/async 的协调器在外层完成，sink 本身不开 goroutine。
//
// 内置实现：
//
//   - [Writer] / [NewConsole]：带互斥锁的 io.Writer 输出，追加换行
//   - [Null]：丢弃一切，Emit 仍计数（诊断用）
//   - [Syslog]：RFC 3164 风格的 syslog 输出，拨号带重试
//   - [GELF]：GELF 1.1 UDP 数据报
//   - [Breaker]：熔断包装器，断路打开期间记录计为跳过而不是报错
//
// 文件输出在子包 filesink，OTLP 导出在子包 otlpsink。
package sink
