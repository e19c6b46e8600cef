// Package enrich 提供上下文富化适配器：把持久上下文与缓冲附加数据
// 合并进每条日志记录，且只通过 Record 的唯一附件通道注入。
//
// # 两类状态
//
//   - 持久上下文（context）：跨调用存活的 key/value 映射，由 [Adapter.SetContext]
//     整体替换、[Adapter.AddContext] 增量合并；发射时渲染为按键排序的
//     "k=v k=v" 字符串（空时为 "-"）。
//   - 附加缓冲（extras）：显式缓冲的 key/value 序列，保持插入顺序；
//     只由 [Adapter.ClearExtra] 清空，发射不会隐式清空——调用方可以跨多个
//     计算步骤累积数据后再发射。
//
// # 发射时的合并规则
//
// 每次发射时：缓冲 extras 先进入合并映射，调用点 extras 按 key 覆盖
// （last-write-wins）；随后把渲染好的 context 字符串与 extra_kvs 文本作为
// 两个保留键注入同一映射。context 与 extra_kvs 是保留键：调用方同名数据
// 会被适配器渲染值覆盖，不会报错。合并结果整体经 Record 的附件通道挂载，
// 因此 context、extra_kvs 与所有 extra 键都能像内建字段一样按名访问。
//
// # 失败模式
//
// SetContext / AddExtra 对畸形输入从不报错，降级为尽力捕获：无法解析的
// 上下文字符串整体存入 _ctx 哨兵键。发射路径上单个值的渲染失败只影响
// 该键的文本形式，不阻塞整条记录。
//
// # 并发契约
//
// 同一 Adapter 不支持多 goroutine 并发修改状态（SetContext/AddExtra 等），
// 每个命名的 logger 句柄应由一个逻辑调用方独占使用；这是文档化契约，
// 不在内部加锁。发射下游的串行化由 sink 或异步协调器负责。
package enrich
