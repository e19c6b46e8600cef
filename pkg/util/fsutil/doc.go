// Package fsutil 提供日志文件路径的净化、目录创建与按日期分区的路径合成。
//
// # 路径净化
//
// [SanitizePath] 做格式净化：拒绝空路径、空字节、尾随分隔符和相对路径穿越。
// 它不做沙箱隔离——日志路径来自可信配置，格式校验足以在配置阶段暴露拼接错误。
//
// # 日期分区
//
// [DatedPath] 把基准目录、日期与文件名合成为实际写入路径，支持两种布局：
//
//   - 扁平布局：base/<日期>/file.log，日期目录名由 layout 格式化（默认 2006-01-02）
//   - 嵌套布局：base/YYYY/MM/DD/file.log，年月日各占一级目录
//
// 合成是纯函数，目录的实际创建由调用方通过 [EnsureDir] 完成。
package fsutil
