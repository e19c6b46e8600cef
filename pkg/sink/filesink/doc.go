// Package filesink 提供按日期分区、按大小轮转、带保留策略的文件 sink。
//
// 分层职责：
//
//   - 日期分区：每条记录按其时间戳落到 fsutil 合成的分区目录，
//     跨分区边界时自动在新目录重新打开文件
//   - 大小轮转：单分区内由 lumberjack 按 MaxSizeMB/MaxBackups 轮转
//   - 保留策略：轮转与换分区后清扫当前目录——超出 MaxFiles 的最旧
//     备份删除、超过 MaxAgeDays 的备份删除、未压缩备份按需 gzip
//
// 保留清扫只作用于当前活跃分区目录，历史分区目录整体交给外部
// 清理作业（cron/logrotate），这与按日期分目录的部署习惯一致。
package filesink
