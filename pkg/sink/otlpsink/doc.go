// Package otlpsink 通过 OTLP/gRPC 把记录导出到 OpenTelemetry collector。
//
// 底层组合 otel 官方栈：otlploggrpc 导出器 + sdk/log 的批处理
// LoggerProvider。批量、重试与背压全部由 SDK 的 BatchProcessor 承担，
// 本包只做记录到 OTel log.Record 的映射：
//
//   - 严重级别映射到 OTel Severity（TRACE→Trace … CRITICAL→Fatal），
//     原级别名保留在 SeverityText
//   - 附件全部键（含 context、extra_kvs）映射为日志属性
//   - logger 名、源码位置、进程号映射为约定属性
package otlpsink
