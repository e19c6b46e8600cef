// Package manager 把展开后的配置变为存活的日志管线，并管理其生命周期。
//
// Configure 的应用顺序：
//  1. 校验配置（引用完整性、级别归一化）
//  2. 构建新管线（格式化器 → 过滤器 → sink → 可选的异步协调器）
//  3. 构建全部成功后才拆除现役管线并整体切换
//  4. 对所有存活的 logger 句柄原地重接线（Rewire）
//
// 句柄在重配置之间保持有效：GetLogger 返回的指针不随 Configure 失效，
// 变的只是其下游管线。构建失败时现役管线不受任何影响。
//
// 设计决策：
//   - 每个启用的处理器独享一个异步协调器，单个 sink 阻塞不拖累其他
//     处理器的队列。
//   - sink 错误不回传发射方，统一走诊断回调（WithDiagnostic）。
//   - TRACE 注册是进程级单向开关，重配置关闭 enable_trace 只影响
//     门控判断，不反注册。
package manager
