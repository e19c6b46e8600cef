// Package record 定义流经日志管道的数据单元。
//
// # 两段式构造契约
//
// Record 的字段分为两类：固定内建字段（时间、级别、logger 名、消息、
// 源码位置、进程号）与唯一的结构化附件通道 [Attachment]。富化数据只能
// 通过附件通道进入 Record，不存在"顶层自定义参数"——这从构造 API 层面
// 消除了自定义键与内建字段冲突的可能。
//
// # 字段访问
//
// [Record.Field] 以统一的按名访问机制同时覆盖内建字段和附件键：
// 内建名（见 Field* 常量）优先解析，其余名称落到附件。因此富化层写入
// 附件的 context、extra_kvs 等键对格式化器而言与内建字段无任何区别。
//
// # 不可变性
//
// Record 构造后只读。构造函数会拷贝传入的附件，构造方随后对原附件的
// 修改不影响已构造的 Record。
package record
