// Package format 提供四种记录渲染器：text、jsonl、logfmt、csv。
//
// 渲染器只读取 Record 上按名可达的字段（含富化层注入的 context 与
// extra_kvs），不感知记录的产生路径。所有渲染器输出单行（不含换行符），
// 换行由 sink 负责追加。
//
// 时间戳布局按渲染器各有默认值：text 用本地易读格式，其余用 ISO 8601
// 带时区偏移；均可通过选项覆盖。
package format
