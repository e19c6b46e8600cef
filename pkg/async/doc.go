// Package async 提供有界队列 + 单工作协程的异步分发协调器。
//
// 协调器把一组 sink 包装成单个逻辑出口：生产方 Enqueue 后立即返回，
// 唯一的后台工作协程按 FIFO 出队并依次分发到每个 sink，sink 自始至终
// 只被这一个协程触达，不会出现对同一文件/套接字的交错写。
//
// # 背压策略
//
// 队列容量大于 0 时满队列的 Enqueue 最多阻塞一个有界等待窗口，
// 等待超时才丢弃并计数——宁可短暂阻塞生产方也不静默丢日志。
// 容量 0 表示无界队列，Enqueue 永不拒绝（只受内存约束）。
//
// # 关停语义
//
// Shutdown 幂等：置拒绝标志、通知工作协程排空存量、等待至多
// timeout，随后无论排空与否强制关闭全部 sink（每个 sink 的关闭
// 有独立时限，单个 sink 卡死不会让 Shutdown 悬挂）。未排空的
// 记录数作为返回值报告，不作为错误抛出。
//
// # 诊断通道
//
// sink 的 emit/flush/close 失败从不向日志调用方传播，统一经
// OnError 回调上报；回调自身再触发日志也不会递归（CAS 护栏）。
package async
