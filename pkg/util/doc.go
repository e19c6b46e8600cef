// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - fsutil: 文件系统工具，路径净化与日期分区目录合成
//
// 设计原则：
//   - 纯函数优先，不持有状态
//   - 安全处理路径遍历等非法输入
//   - 跨平台兼容
package util
